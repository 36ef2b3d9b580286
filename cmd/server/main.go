// Command server runs the policy API: HTTP endpoints, the schedule
// engine and the hand-off to the isolated ingestion unit. In production
// it runs as a worker under cmd/supervisor.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pmorchard/polis-api/internal/api"
	"github.com/pmorchard/polis-api/internal/config"
	"github.com/pmorchard/polis-api/internal/ingest"
	"github.com/pmorchard/polis-api/internal/platform/logger"
	"github.com/pmorchard/polis-api/internal/platform/postgres"
	"github.com/pmorchard/polis-api/internal/schedule"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("starting server", "pid", os.Getpid(), "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	engine := schedule.NewEngine(
		postgres.NewScheduleStore(db),
		postgres.NewMessageStore(db),
		log,
	)
	// Pick the timers back up for jobs that were pending when the
	// previous worker died.
	if err := engine.ReloadPending(ctx); err != nil {
		return err
	}
	defer engine.Stop()

	bridge := ingest.NewBridge(cfg.Ingest.WorkerPath, log)

	router := api.NewRouter(log, api.Handlers{
		Upload:   api.NewUploadHandler(bridge, cfg.Ingest.UploadDir),
		Schedule: api.NewScheduleHandler(engine),
		Policy:   api.NewPolicyHandler(postgres.NewPolicyReader(db)),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
