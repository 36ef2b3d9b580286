package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// WorkerProcess abstracts a forked worker so the supervision loop can be
// tested without real processes.
type WorkerProcess interface {
	// PID returns the operating-system process ID.
	PID() int

	// Kill sends a termination signal to the process.
	Kill() error

	// Wait blocks until the process exits. It returns a non-nil error for
	// non-zero exits, matching os/exec semantics.
	Wait() error
}

// Launcher starts a new worker process.
type Launcher func(ctx context.Context) (WorkerProcess, error)

// SampleFunc reports a process's CPU utilization as a percentage of one
// core.
type SampleFunc func(ctx context.Context, pid int) (float64, error)

// Config holds the supervision policy. Zero values are replaced with the
// observed production constants: 70% threshold, 3s sampling, 1s backoff.
type Config struct {
	CPUThresholdPercent float64
	SampleInterval      time.Duration
	RestartBackoff      time.Duration
}

func (c Config) withDefaults() Config {
	if c.CPUThresholdPercent <= 0 {
		c.CPUThresholdPercent = 70
	}
	if c.SampleInterval <= 0 {
		c.SampleInterval = 3 * time.Second
	}
	if c.RestartBackoff <= 0 {
		c.RestartBackoff = time.Second
	}
	return c
}

// WorkerHandle is the supervisor's record of the one active worker. It is
// owned exclusively by the supervisor and discarded when the worker exits.
type WorkerHandle struct {
	PID            int
	LastCPUPercent float64

	proc WorkerProcess
}

// Supervisor forks and monitors a single worker process. Construct one
// per process entry point; there is no global instance.
type Supervisor struct {
	cfg    Config
	launch Launcher
	sample SampleFunc
	logger *slog.Logger

	mu      sync.Mutex
	current *WorkerHandle
}

// New creates a Supervisor with the given launcher and sampler.
func New(cfg Config, launch Launcher, sample SampleFunc, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		cfg:    cfg.withDefaults(),
		launch: launch,
		sample: sample,
		logger: logger,
	}
}

// Current returns a snapshot of the active worker handle, or nil when no
// worker is running.
func (s *Supervisor) Current() *WorkerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	snapshot := *s.current
	return &snapshot
}

// Run forks the first worker and supervises until the context is
// cancelled. Every worker exit, expected or not, is followed by a refork
// after the restart backoff. Run only returns the context's error; no
// worker failure terminates the supervisor.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		proc, err := s.launch(ctx)
		if err != nil {
			s.logger.Error("failed to fork worker", "error", err)
			if err := s.sleep(ctx, s.cfg.RestartBackoff); err != nil {
				return err
			}
			continue
		}

		s.logger.Info("forked worker", "pid", proc.PID())
		s.setCurrent(&WorkerHandle{PID: proc.PID(), proc: proc})

		exited := s.superviseWorker(ctx, proc)
		s.setCurrent(nil)

		if !exited {
			// Context cancelled: we killed the worker ourselves.
			return ctx.Err()
		}

		if err := s.sleep(ctx, s.cfg.RestartBackoff); err != nil {
			return err
		}
	}
}

// superviseWorker samples one worker until it exits. It reports true when
// the worker exited (and a refork is due) and false when the context was
// cancelled and the worker was torn down.
func (s *Supervisor) superviseWorker(ctx context.Context, proc WorkerProcess) bool {
	exitCh := make(chan error, 1)
	go func() {
		exitCh <- proc.Wait()
	}()

	ticker := time.NewTicker(s.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := proc.Kill(); err != nil {
				s.logger.Warn("failed to kill worker on shutdown", "pid", proc.PID(), "error", err)
			}
			<-exitCh
			return false

		case err := <-exitCh:
			s.logger.Warn("worker exited",
				"pid", proc.PID(),
				"error", err,
				"restart_in", s.cfg.RestartBackoff)
			return true

		case <-ticker.C:
			cpu, err := s.sample(ctx, proc.PID())
			if err != nil {
				// Sampling failures (process already gone, procfs hiccup)
				// are swallowed; the exit path handles a dead worker.
				continue
			}

			s.recordSample(cpu)

			if cpu > s.cfg.CPUThresholdPercent {
				s.logger.Warn("worker over CPU threshold, restarting",
					"pid", proc.PID(),
					"cpu_percent", cpu,
					"threshold_percent", s.cfg.CPUThresholdPercent)
				if err := proc.Kill(); err != nil {
					s.logger.Warn("failed to kill overloaded worker", "pid", proc.PID(), "error", err)
				}
			}
		}
	}
}

func (s *Supervisor) setCurrent(h *WorkerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = h
}

func (s *Supervisor) recordSample(cpu float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.LastCPUPercent = cpu
	}
}

func (s *Supervisor) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ErrNoProcess is returned by samplers when the target process is gone.
var ErrNoProcess = errors.New("process not found")
