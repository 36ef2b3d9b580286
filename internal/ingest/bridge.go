package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// Input identifies the file handed to the isolated ingestion unit. It is
// passed as startup arguments; there is no further communication into the
// unit once it is running.
type Input struct {
	FilePath     string
	OriginalName string
}

// Bridge launches one isolated ingestion unit per call and interprets its
// completion message and exit status. The caller keeps ownership of the
// temporary input file; the bridge never deletes it.
//
// There is no timeout on the unit: a hung worker stalls the call until
// the caller's context is cancelled.
type Bridge struct {
	workerPath string
	logger     *slog.Logger
}

// NewBridge creates a Bridge that runs the worker binary at workerPath.
func NewBridge(workerPath string, logger *slog.Logger) *Bridge {
	return &Bridge{
		workerPath: workerPath,
		logger:     logger,
	}
}

// Run executes the ingestion unit for the given input and blocks until it
// terminates. On success it returns the number of rows the unit
// processed. A non-zero exit status or an explicit error message from the
// unit is returned as an error carrying the unit's detail.
func (b *Bridge) Run(ctx context.Context, in Input) (int, error) {
	cmd := exec.CommandContext(ctx, b.workerPath,
		"-file", in.FilePath,
		"-name", in.OriginalName,
	)
	// The unit logs to stderr; pass it straight through so worker logs
	// land in the same stream as ours.
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to open worker stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start ingestion worker: %w", err)
	}

	b.logger.Info("ingestion worker started",
		"pid", cmd.Process.Pid,
		"file", in.OriginalName)

	// Exactly one Result message is expected on stdout. A unit that dies
	// before writing it leaves gotResult false and we fall back to the
	// exit status alone.
	var res Result
	gotResult := false
	if err := json.NewDecoder(stdout).Decode(&res); err == nil {
		gotResult = true
	}
	_, _ = io.Copy(io.Discard, stdout)

	waitErr := cmd.Wait()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			if gotResult && res.ErrorMessage != "" {
				return 0, fmt.Errorf("ingestion worker failed: %s", res.ErrorMessage)
			}
			return 0, fmt.Errorf("ingestion worker exited with status %d", exitErr.ExitCode())
		}
		return 0, fmt.Errorf("ingestion worker failed: %w", waitErr)
	}

	if gotResult && res.Status == StatusError {
		// An error Result normally pairs with a non-zero exit; trust the
		// message either way.
		return 0, fmt.Errorf("ingestion worker failed: %s", res.ErrorMessage)
	}
	if !gotResult {
		return 0, errors.New("ingestion worker exited without reporting a result")
	}

	b.logger.Info("ingestion worker finished",
		"pid", cmd.Process.Pid,
		"rows_processed", res.RowsProcessed)

	return res.RowsProcessed, nil
}
