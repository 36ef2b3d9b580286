package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

// ScheduleStore implements store.ScheduleStore.
type ScheduleStore struct {
	db store.DBTX
}

// NewScheduleStore creates a ScheduleStore on the given connection.
func NewScheduleStore(db store.DBTX) *ScheduleStore {
	return &ScheduleStore{db: db}
}

var _ store.ScheduleStore = (*ScheduleStore)(nil)

// Create implements store.ScheduleStore.Create.
func (s *ScheduleStore) Create(ctx context.Context, job *domain.ScheduledMessage) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	const query = `
		INSERT INTO scheduled_messages (id, message, run_at, done, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID, job.Message, job.RunAt, job.Done, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scheduled message: %w", err)
	}

	return nil
}

// GetByID implements store.ScheduleStore.GetByID.
func (s *ScheduleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledMessage, error) {
	const query = `
		SELECT id, message, run_at, done, created_at
		FROM scheduled_messages
		WHERE id = $1
	`

	var job domain.ScheduledMessage
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&job.ID, &job.Message, &job.RunAt, &job.Done, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get scheduled message: %w", err)
	}

	return &job, nil
}

// ListPending implements store.ScheduleStore.ListPending.
func (s *ScheduleStore) ListPending(ctx context.Context) ([]*domain.ScheduledMessage, error) {
	const query = `
		SELECT id, message, run_at, done, created_at
		FROM scheduled_messages
		WHERE done = false
		ORDER BY run_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending scheduled messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pending []*domain.ScheduledMessage
	for rows.Next() {
		var job domain.ScheduledMessage
		if err := rows.Scan(&job.ID, &job.Message, &job.RunAt, &job.Done, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled message: %w", err)
		}
		pending = append(pending, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scheduled messages: %w", err)
	}

	return pending, nil
}

// MarkDone implements store.ScheduleStore.MarkDone. The done=false guard
// makes the flip a compare-and-swap: only one caller observes a changed
// row when several race on the same job.
func (s *ScheduleStore) MarkDone(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE scheduled_messages
		SET done = true
		WHERE id = $1 AND done = false
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark scheduled message done: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// MessageStore implements store.MessageStore.
type MessageStore struct {
	db store.DBTX
}

// NewMessageStore creates a MessageStore on the given connection.
func NewMessageStore(db store.DBTX) *MessageStore {
	return &MessageStore{db: db}
}

var _ store.MessageStore = (*MessageStore)(nil)

// Create implements store.MessageStore.Create.
func (s *MessageStore) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
		INSERT INTO messages (id, message, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.db.ExecContext(ctx, query, msg.ID, msg.Body, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}
