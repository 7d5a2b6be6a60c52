package memstore

import (
	"context"
	"sync"

	"taskhub/internal/app/user"
)

// UserStore implements user.Store.
type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[user.ID]user.User
}

var _ user.Store = (*UserStore)(nil)

// NewUserStore returns an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{byID: make(map[user.ID]user.User)}
}

// Create implements user.Store.
func (s *UserStore) Create(ctx context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return user.User{}, user.ErrAlreadyExists
		}
	}

	s.nextID++
	u.ID = user.ID(s.nextID)
	s.byID[u.ID] = u

	return u, nil
}

// GetByID implements user.Store.
func (s *UserStore) GetByID(ctx context.Context, id user.ID) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// GetByUsername implements user.Store.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}
