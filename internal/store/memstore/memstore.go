// Package memstore is an in-memory store.Repository for tests and local runs.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Simplici0/logicalc/internal/history"
	"github.com/Simplici0/logicalc/internal/model"
	"github.com/Simplici0/logicalc/internal/store"
)

type user struct {
	model.User
	hash string
}

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	branches map[string]model.Branch
	carriers []model.Carrier
	config   *model.SystemConfig
	users    map[string]user
	history  []history.Entry

	// FailAppend, when set, is returned by Append.
	FailAppend error
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		branches: make(map[string]model.Branch),
		users:    make(map[string]user),
	}
}

func (s *Store) ListBranches(_ context.Context, query string) ([]model.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Branch, 0, len(s.branches))
	for _, b := range s.branches {
		if b.MatchesQuery(query) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetBranch(_ context.Context, id string) (model.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.branches[id]
	if !ok {
		return model.Branch{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) CreateBranch(_ context.Context, b model.Branch) (model.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, ok := s.branches[b.ID]; ok {
		return model.Branch{}, store.ErrDuplicate
	}
	s.branches[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBranch(_ context.Context, b model.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.branches[b.ID]; !ok {
		return store.ErrNotFound
	}
	s.branches[b.ID] = b
	return nil
}

func (s *Store) DeleteBranch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.branches[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.branches, id)
	return nil
}

// ListCarriers returns matches in insertion order.
func (s *Store) ListCarriers(_ context.Context, query string) ([]model.Carrier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Carrier, 0, len(s.carriers))
	for _, c := range s.carriers {
		if c.MatchesQuery(query) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) carrierIndex(id string) int {
	for i, c := range s.carriers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) GetCarrier(_ context.Context, id string) (model.Carrier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.carrierIndex(id)
	if i < 0 {
		return model.Carrier{}, store.ErrNotFound
	}
	return s.carriers[i], nil
}

func (s *Store) CreateCarrier(_ context.Context, c model.Carrier) (model.Carrier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if s.carrierIndex(c.ID) >= 0 {
		return model.Carrier{}, store.ErrDuplicate
	}
	if c.Regions == nil {
		c.Regions = []string{}
	}
	s.carriers = append(s.carriers, c)
	return c, nil
}

func (s *Store) UpdateCarrier(_ context.Context, c model.Carrier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.carrierIndex(c.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	s.carriers[i] = c
	return nil
}

func (s *Store) DeleteCarrier(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.carrierIndex(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.carriers = append(s.carriers[:i:i], s.carriers[i+1:]...)
	return nil
}

func (s *Store) GetConfig(_ context.Context) (model.SystemConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return model.DefaultSystemConfig(), nil
	}
	return *s.config, nil
}

func (s *Store) SaveConfig(_ context.Context, cfg model.SystemConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = &cfg
	return nil
}

func (s *Store) CreateUser(_ context.Context, u model.User, password string) error {
	hash, err := store.HashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return store.ErrDuplicate
	}
	s.users[u.Username] = user{User: u, hash: hash}
	return nil
}

func (s *Store) Authenticate(_ context.Context, username, password string) (model.User, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()

	if !ok || !store.CheckPassword(u.hash, password) {
		return model.User{}, store.ErrInvalidLogin
	}
	return u.User, nil
}

func (s *Store) Load(_ context.Context) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]history.Entry, len(s.history))
	copy(out, s.history)
	return out, nil
}

func (s *Store) Append(_ context.Context, e history.Entry) ([]history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAppend != nil {
		return nil, s.FailAppend
	}
	s.history = history.Prepend(s.history, e)

	out := make([]history.Entry, len(s.history))
	copy(out, s.history)
	return out, nil
}
