package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pmorchard/polis-api/internal/domain"
	"github.com/pmorchard/polis-api/internal/store"
)

var errInjected = errors.New("injected store failure")

// memStores is an in-memory stand-in for the postgres stores, keyed
// exactly like the real schema: agents/lobs/carriers/accounts by name,
// users by email, policies by policy number.
type memStores struct {
	agents   map[string]*domain.Agent
	users    map[string]*domain.User
	accounts map[string]*domain.Account
	lobs     map[string]*domain.Lob
	carriers map[string]*domain.Carrier
	policies map[string]*domain.Policy

	// failAgent makes the agent upsert fail for one name, to exercise
	// row-level fault isolation.
	failAgent string
}

func newMemStores() *memStores {
	return &memStores{
		agents:   make(map[string]*domain.Agent),
		users:    make(map[string]*domain.User),
		accounts: make(map[string]*domain.Account),
		lobs:     make(map[string]*domain.Lob),
		carriers: make(map[string]*domain.Carrier),
		policies: make(map[string]*domain.Policy),
	}
}

func (m *memStores) entityStores() store.EntityStores {
	return store.EntityStores{
		Agents:   agentStore{m},
		Users:    userStore{m},
		Accounts: accountStore{m},
		Lobs:     lobStore{m},
		Carriers: carrierStore{m},
		Policies: policyStore{m},
	}
}

type agentStore struct{ m *memStores }

func (s agentStore) UpsertByName(_ context.Context, name string) (*domain.Agent, error) {
	if name == s.m.failAgent {
		return nil, errInjected
	}
	if a, ok := s.m.agents[name]; ok {
		return a, nil
	}
	a := &domain.Agent{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	s.m.agents[name] = a
	return a, nil
}

type userStore struct{ m *memStores }

func (s userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := s.m.users[email]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func (s userStore) Create(_ context.Context, user *domain.User) error {
	s.m.users[user.Email] = user
	return nil
}

type accountStore struct{ m *memStores }

func (s accountStore) UpsertByName(_ context.Context, name string, userID uuid.NullUUID) (*domain.Account, error) {
	if a, ok := s.m.accounts[name]; ok {
		a.UserID = userID
		return a, nil
	}
	a := &domain.Account{ID: uuid.New(), Name: name, UserID: userID, CreatedAt: time.Now().UTC()}
	s.m.accounts[name] = a
	return a, nil
}

type lobStore struct{ m *memStores }

func (s lobStore) UpsertByName(_ context.Context, name string) (*domain.Lob, error) {
	if l, ok := s.m.lobs[name]; ok {
		return l, nil
	}
	l := &domain.Lob{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	s.m.lobs[name] = l
	return l, nil
}

type carrierStore struct{ m *memStores }

func (s carrierStore) UpsertByName(_ context.Context, name string) (*domain.Carrier, error) {
	if c, ok := s.m.carriers[name]; ok {
		return c, nil
	}
	c := &domain.Carrier{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	s.m.carriers[name] = c
	return c, nil
}

type policyStore struct{ m *memStores }

func (s policyStore) UpsertByNumber(_ context.Context, policy *domain.Policy) (*domain.Policy, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if existing, ok := s.m.policies[policy.Number]; ok {
		policy.ID = existing.ID
	}
	s.m.policies[policy.Number] = policy
	return policy, nil
}
