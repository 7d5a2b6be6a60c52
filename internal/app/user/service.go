package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Store persists accounts.
type Store interface {
	// Create inserts u and returns it with its assigned ID.
	// Duplicate usernames or emails yield ErrAlreadyExists.
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id ID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
}

// Service implements registration, login and profile lookup.
type Service struct {
	store Store
	cost  int
}

// NewService returns a Service backed by store, hashing with bcrypt.DefaultCost.
func NewService(store Store) *Service {
	return &Service{store: store, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

// Register creates an account with a hashed password.
func (s *Service) Register(ctx context.Context, username, email, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.Create(ctx, User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return User{}, err
	}

	return created, nil
}

// Authenticate returns the account matching username and password,
// or ErrInvalidCredentials without revealing which part was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id ID) (User, error) {
	return s.store.GetByID(ctx, id)
}

// Exists reports whether an account with id is still present.
func (s *Service) Exists(ctx context.Context, id ID) (bool, error) {
	_, err := s.store.GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
