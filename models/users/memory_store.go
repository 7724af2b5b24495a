package users

import (
	"context"
	"gorm.io/datatypes"
	"sync"
	"time"
)

// MemoryStore keeps users in process memory. It backs the unit tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

// Insert checks and inserts under one lock.
func (s *MemoryStore) Insert(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return ErrDuplicateIdentity
	}
	if _, ok := s.byID[user.ID]; ok {
		return ErrDuplicateIdentity
	}
	s.byID[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return s.update(id, func(u *User) { u.LastLogin = &at })
}

func (s *MemoryStore) UpdatePassword(_ context.Context, id string, hash string) error {
	return s.update(id, func(u *User) { u.PasswordHash = &hash })
}

func (s *MemoryStore) RecordProgress(_ context.Context, id string, update ProgressUpdate) (Progress, error) {
	var next Progress
	var applyErr error
	err := s.update(id, func(u *User) {
		next, applyErr = u.Progress.Apply(update)
		if applyErr == nil {
			u.Progress = next
		}
	})
	if err != nil {
		return Progress{}, err
	}
	if applyErr != nil {
		return Progress{}, applyErr
	}
	next.CompletedModules = append(datatypes.JSONSlice[string]{}, next.CompletedModules...)
	return next, nil
}

func (s *MemoryStore) SetActive(_ context.Context, id string, active bool) error {
	return s.update(id, func(u *User) { u.IsActive = active })
}

func (s *MemoryStore) update(id string, fn func(u *User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	fn(u)
	return nil
}
