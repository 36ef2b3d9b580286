package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

// Engine persists scheduled messages and arms in-process timers for their
// execution. One Engine instance runs per worker process.
type Engine struct {
	jobs     store.ScheduleStore
	messages store.MessageStore
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	timers  map[uuid.UUID]*time.Timer
	firing  map[uuid.UUID]struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewEngine creates an Engine backed by the given stores.
func NewEngine(jobs store.ScheduleStore, messages store.MessageStore, logger *slog.Logger) *Engine {
	return &Engine{
		jobs:     jobs,
		messages: messages,
		logger:   logger,
		now:      time.Now,
		timers:   make(map[uuid.UUID]*time.Timer),
		firing:   make(map[uuid.UUID]struct{}),
	}
}

// Schedule persists a new job record and arms it for execution. The
// returned job is the persisted record; validation failures and store
// faults leave nothing armed.
func (e *Engine) Schedule(ctx context.Context, message string, runAt time.Time) (*domain.ScheduledMessage, error) {
	job, err := domain.NewScheduledMessage(message, runAt)
	if err != nil {
		return nil, err
	}

	if err := e.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist scheduled message: %w", err)
	}

	e.Arm(job)

	return job, nil
}

// Arm registers the job for execution. A job whose run time is at or
// before now fires immediately on its own goroutine, without blocking the
// caller. Otherwise a timer is armed, keyed by the job's ID: arming the
// same job again replaces the previous timer rather than duplicating it,
// and a job whose firing is already in flight is not fired a second time.
func (e *Engine) Arm(job *domain.ScheduledMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}

	if prev, ok := e.timers[job.ID]; ok {
		prev.Stop()
		delete(e.timers, job.ID)
	}

	delay := job.RunAt.Sub(e.now())
	if delay <= 0 {
		e.startFireLocked(job.ID)
		return
	}

	id := job.ID
	e.timers[id] = time.AfterFunc(delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.timers, id)
		if e.stopped {
			return
		}
		e.startFireLocked(id)
	})
}

// startFireLocked launches a tracked firing goroutine for the job. The
// caller must hold e.mu. A job already mid-firing is not fired again, and
// every firing registers with the WaitGroup before the lock is released
// so Stop observes it.
func (e *Engine) startFireLocked(id uuid.UUID) {
	if _, inFlight := e.firing[id]; inFlight {
		return
	}
	e.firing[id] = struct{}{}
	e.wg.Add(1)

	go func() {
		defer func() {
			e.mu.Lock()
			delete(e.firing, id)
			e.mu.Unlock()
			e.wg.Done()
		}()
		e.fire(id)
	}()
}

// ReloadPending re-arms every job still marked pending in the store.
// Called once at process startup, this is what carries in-memory timers
// across restarts.
func (e *Engine) ReloadPending(ctx context.Context) error {
	pending, err := e.jobs.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending scheduled messages: %w", err)
	}

	e.logger.Info("re-arming pending scheduled messages", "count", len(pending))

	for _, job := range pending {
		e.Arm(job)
	}

	return nil
}

// Stop disarms all timers and waits for in-flight firings to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.mu.Unlock()

	e.wg.Wait()
}

// fire executes one job: skip if already done, create the derived Message
// record, then flip done. The two writes are separate store calls, so a
// crash between them leaves the job pending and it will fire again after
// the next reload.
func (e *Engine) fire(id uuid.UUID) {
	ctx := context.Background()
	log := e.logger.With("job_id", id)

	job, err := e.jobs.GetByID(ctx, id)
	if err != nil {
		log.Error("failed to load scheduled message", "error", err)
		return
	}
	if job.Done {
		log.Debug("scheduled message already done, skipping")
		return
	}

	msg := domain.NewMessage(job.Message)
	if err := e.messages.Create(ctx, msg); err != nil {
		log.Error("failed to create message for scheduled job", "error", err)
		return
	}

	changed, err := e.jobs.MarkDone(ctx, id)
	if err != nil {
		log.Error("failed to mark scheduled message done", "error", err)
		return
	}
	if !changed {
		// Another firer got there first; the duplicate Message write has
		// already happened at this point.
		log.Warn("scheduled message was already marked done")
		return
	}

	log.Info("scheduled message fired", "message_id", msg.ID)
}
