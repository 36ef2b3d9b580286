// Command supervisor forks the server binary as a worker, samples its
// CPU utilization, and replaces any worker that exceeds the threshold
// or dies.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pmorchard/polis-api/internal/config"
	"github.com/pmorchard/polis-api/internal/platform/logger"
	"github.com/pmorchard/polis-api/internal/supervisor"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "supervisor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("starting supervisor",
		"pid", os.Getpid(),
		"worker", cfg.Supervisor.WorkerPath,
		"cpu_threshold_percent", cfg.Supervisor.CPUThresholdPercent)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := supervisor.New(
		supervisor.Config{
			CPUThresholdPercent: cfg.Supervisor.CPUThresholdPercent,
			SampleInterval:      cfg.Supervisor.SampleInterval,
			RestartBackoff:      cfg.Supervisor.RestartBackoff,
		},
		supervisor.NewExecLauncher(cfg.Supervisor.WorkerPath),
		supervisor.NewCPUSampler(),
		log,
	)

	return sup.Run(ctx)
}
