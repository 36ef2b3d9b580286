// Command ingest-worker is the isolated ingestion unit. The server runs
// one instance per uploaded file; the worker parses the file, upserts
// its rows, writes a single JSON result to stdout and exits. A crash
// here takes down one import, never the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pmorchard/polis-api/internal/config"
	"github.com/pmorchard/polis-api/internal/ingest"
	"github.com/pmorchard/polis-api/internal/platform/logger"
	"github.com/pmorchard/polis-api/internal/platform/postgres"
	"github.com/pmorchard/polis-api/internal/store"
)

func main() {
	filePath := flag.String("file", "", "path to the spooled input file")
	originalName := flag.String("name", "", "original name of the uploaded file")
	flag.Parse()

	rows, err := run(*filePath, *originalName)
	if err != nil {
		emit(ingest.Result{
			Status:       ingest.StatusError,
			ErrorMessage: err.Error(),
		})
		os.Exit(1)
	}

	emit(ingest.Result{
		Status:        ingest.StatusDone,
		RowsProcessed: rows,
	})
}

// emit writes the one-shot completion message. Stdout carries only this
// message; all logging goes to stderr.
func emit(res ingest.Result) {
	if err := json.NewEncoder(os.Stdout).Encode(res); err != nil {
		fmt.Fprintf(os.Stderr, "ingest-worker: failed to write result: %v\n", err)
	}
}

func run(filePath, originalName string) (int, error) {
	if filePath == "" || originalName == "" {
		return 0, fmt.Errorf("both -file and -name are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.SetupWithWriter(os.Stderr, cfg.Server.LogLevel)
	log.Info("ingestion worker started", "pid", os.Getpid(), "file", originalName)

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	pipeline := ingest.NewPipeline(store.EntityStores{
		Agents:   postgres.NewAgentStore(db),
		Users:    postgres.NewUserStore(db),
		Accounts: postgres.NewAccountStore(db),
		Lobs:     postgres.NewLobStore(db),
		Carriers: postgres.NewCarrierStore(db),
		Policies: postgres.NewPolicyStore(db),
	}, log)

	return pipeline.Run(ctx, filePath, originalName)
}
