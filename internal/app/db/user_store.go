package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"taskhub/internal/app/user"
)

const userColumns = `id, username, email, password_hash`

// UserStore is the PostgreSQL user.Store.
type UserStore struct {
	db DBTX
}

var _ user.Store = (*UserStore)(nil)

// NewUserStore returns a UserStore over db.
func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u  user.User
		id int64
	)
	if err := row.Scan(&id, &u.Username, &u.Email, &u.PasswordHash); err != nil {
		return user.User{}, err
	}
	u.ID = user.ID(id)
	return u, nil
}

// Create implements user.Store.
func (s *UserStore) Create(ctx context.Context, u user.User) (user.User, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING `+userColumns,
		u.Username, u.Email, u.PasswordHash,
	)

	created, err := scanUser(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrAlreadyExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// GetByID implements user.Store.
func (s *UserStore) GetByID(ctx context.Context, id user.ID) (user.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, int64(id))
}

// GetByUsername implements user.Store.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (user.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, query, arg))
	if IsNoRows(err) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
