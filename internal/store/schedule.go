package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/pmorchard/polis-api/internal/domain"
)

// ScheduleStore persists scheduled message jobs.
type ScheduleStore interface {
	// Create inserts a new pending job record.
	Create(ctx context.Context, job *domain.ScheduledMessage) error

	// GetByID returns the job with the given ID, or ErrJobNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledMessage, error)

	// ListPending returns all jobs with done=false, oldest first. Called
	// once at process startup to reconcile durable state with in-memory
	// timers.
	ListPending(ctx context.Context) ([]*domain.ScheduledMessage, error)

	// MarkDone flips done to true for the given job. It reports whether
	// the update changed a row: false means the job was already done (or
	// gone), which callers treat as "another firer won".
	MarkDone(ctx context.Context, id uuid.UUID) (bool, error)
}

// MessageStore persists the output records produced by fired jobs.
type MessageStore interface {
	Create(ctx context.Context, msg *domain.Message) error
}
