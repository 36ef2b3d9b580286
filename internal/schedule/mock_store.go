package schedule

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

// MockScheduleStore implements store.ScheduleStore for testing.
type MockScheduleStore struct {
	mutex sync.RWMutex
	jobs  map[uuid.UUID]*domain.ScheduledMessage

	CreateFn   func(ctx context.Context, job *domain.ScheduledMessage) error
	MarkDoneFn func(ctx context.Context, id uuid.UUID) (bool, error)
}

// NewMockScheduleStore creates a MockScheduleStore with default in-memory
// behavior. Tests override the Fn fields to inject failures.
func NewMockScheduleStore() *MockScheduleStore {
	s := &MockScheduleStore{
		jobs: make(map[uuid.UUID]*domain.ScheduledMessage),
	}

	s.CreateFn = func(ctx context.Context, job *domain.ScheduledMessage) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		copied := *job
		s.jobs[job.ID] = &copied
		return nil
	}

	s.MarkDoneFn = func(ctx context.Context, id uuid.UUID) (bool, error) {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		job, ok := s.jobs[id]
		if !ok || job.Done {
			return false, nil
		}
		job.Done = true
		return true, nil
	}

	return s
}

// Seed inserts a job directly, bypassing CreateFn, for recovery tests.
func (s *MockScheduleStore) Seed(job *domain.ScheduledMessage) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
}

// Get returns the stored job, or nil.
func (s *MockScheduleStore) Get(id uuid.UUID) *domain.ScheduledMessage {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if job, ok := s.jobs[id]; ok {
		copied := *job
		return &copied
	}
	return nil
}

func (s *MockScheduleStore) Create(ctx context.Context, job *domain.ScheduledMessage) error {
	return s.CreateFn(ctx, job)
}

func (s *MockScheduleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledMessage, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *MockScheduleStore) ListPending(ctx context.Context) ([]*domain.ScheduledMessage, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var pending []*domain.ScheduledMessage
	for _, job := range s.jobs {
		if !job.Done {
			copied := *job
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (s *MockScheduleStore) MarkDone(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.MarkDoneFn(ctx, id)
}

// MockMessageStore implements store.MessageStore for testing.
type MockMessageStore struct {
	mutex    sync.RWMutex
	messages []*domain.Message

	CreateFn func(ctx context.Context, msg *domain.Message) error
}

// NewMockMessageStore creates a MockMessageStore with default in-memory
// behavior.
func NewMockMessageStore() *MockMessageStore {
	s := &MockMessageStore{}

	s.CreateFn = func(ctx context.Context, msg *domain.Message) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		copied := *msg
		s.messages = append(s.messages, &copied)
		return nil
	}

	return s
}

func (s *MockMessageStore) Create(ctx context.Context, msg *domain.Message) error {
	return s.CreateFn(ctx, msg)
}

// Messages returns a snapshot of everything created so far.
func (s *MockMessageStore) Messages() []*domain.Message {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]*domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
