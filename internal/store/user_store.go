// Package store owns the live in-memory user collection. All access is
// mediated through UserStore; callers never see store-internal state.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/livedesk/user-service/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// UserStore holds users in insertion order behind a single lock, so every
// operation, including check-then-mutate ones like Create and Update, is
// atomic with respect to the collection.
type UserStore struct {
	mu    sync.RWMutex
	users []models.User
}

func NewUserStore() *UserStore {
	return &UserStore{}
}

// NewSeededUserStore returns a store pre-populated with the three
// demonstration users the service ships with on every start.
func NewSeededUserStore() *UserStore {
	now := time.Now().UTC()
	return &UserStore{
		users: []models.User{
			{ID: "1", Name: "John Doe", Email: "john@example.com", CreatedAt: now, UpdatedAt: now},
			{ID: "2", Name: "Jane Smith", Email: "jane@example.com", CreatedAt: now, UpdatedAt: now},
			{ID: "3", Name: "Bob Johnson", Email: "bob@example.com", CreatedAt: now, UpdatedAt: now},
		},
	}
}

// FindAll returns a copy of every live user in insertion order.
func (s *UserStore) FindAll() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, len(s.users))
	copy(users, s.users)
	return users
}

func (s *UserStore) FindByID(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.users[i], nil
	}
	return models.User{}, ErrUserNotFound
}

// FindByEmail matches on exact, case-sensitive email equality.
func (s *UserStore) FindByEmail(email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// Create appends a new user with a fresh id and both timestamps set to now.
// It fails with ErrEmailExists if the email belongs to a live user. The
// uniqueness check and the append happen under one lock, so two concurrent
// Create calls with the same email cannot both succeed.
func (s *UserStore) Create(name, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return models.User{}, ErrEmailExists
		}
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users = append(s.users, user)
	return user, nil
}

// Update merges only the provided patch fields into the record and refreshes
// UpdatedAt. A patch email that belongs to a different live user fails with
// ErrEmailExists; updating a user to its own current email is not a conflict.
func (s *UserStore) Update(id string, patch models.UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.User{}, ErrUserNotFound
	}

	if patch.Email != "" {
		for _, u := range s.users {
			if u.Email == patch.Email && u.ID != id {
				return models.User{}, ErrEmailExists
			}
		}
		s.users[i].Email = patch.Email
	}
	if patch.Name != "" {
		s.users[i].Name = patch.Name
	}
	s.users[i].UpdatedAt = time.Now().UTC()
	return s.users[i], nil
}

// Delete removes the record and returns the snapshot as it existed
// immediately before removal. Ids are never reused.
func (s *UserStore) Delete(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.User{}, ErrUserNotFound
	}

	removed := s.users[i]
	s.users = append(s.users[:i], s.users[i+1:]...)
	return removed, nil
}

func (s *UserStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// FindPaginated returns at most limit users starting at offset, in insertion
// order. Indices beyond the end of the collection yield an empty result.
func (s *UserStore) FindPaginated(offset, limit int) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(s.users) {
		return []models.User{}
	}

	end := offset + limit
	if end > len(s.users) {
		end = len(s.users)
	}

	users := make([]models.User, end-offset)
	copy(users, s.users[offset:end])
	return users
}

// indexOf must be called with at least a read lock held.
func (s *UserStore) indexOf(id string) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
