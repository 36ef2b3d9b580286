package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scheduling validation errors
var (
	ErrEmptyMessage = errors.New("message cannot be empty")
	ErrZeroRunTime  = errors.New("run time cannot be zero")
)

// ScheduledMessage is a durable job record: a message to be turned into a
// Message record at RunAt. Once Done flips to true the job is never
// executed again by the same process; pending (done=false) jobs are
// re-armed after a restart.
type ScheduledMessage struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	RunAt     time.Time `json:"run_at"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// NewScheduledMessage creates a pending job with a fresh ID and creation
// timestamp. Returns an error if validation fails.
func NewScheduledMessage(message string, runAt time.Time) (*ScheduledMessage, error) {
	job := &ScheduledMessage{
		ID:        uuid.New(),
		Message:   message,
		RunAt:     runAt.UTC(),
		Done:      false,
		CreatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the ScheduledMessage has valid data.
func (m *ScheduledMessage) Validate() error {
	if strings.TrimSpace(m.Message) == "" {
		return ErrEmptyMessage
	}
	if m.RunAt.IsZero() {
		return ErrZeroRunTime
	}
	return nil
}

// Message is the output record produced when a ScheduledMessage fires.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates the derived output record for a fired job.
func NewMessage(body string) *Message {
	return &Message{
		ID:        uuid.New(),
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}
