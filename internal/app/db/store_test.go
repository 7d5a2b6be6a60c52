package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/app/task"
	"taskhub/internal/app/user"
)

// testPool connects to TEST_DATABASE_URL, skipping the test when it is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL store tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func createUser(t *testing.T, users *UserStore) user.User {
	t.Helper()

	name := fmt.Sprintf("user_%d", time.Now().UnixNano())
	u, err := users.Create(context.Background(), user.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = users.db.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, int64(u.ID))
	})
	return u
}

func TestUserStore_Postgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserStore(pool)

	u := createUser(t, users)
	assert.NotZero(t, u.ID)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, byID)

	byName, err := users.GetByUsername(ctx, u.Username)
	require.NoError(t, err)
	assert.Equal(t, u, byName)

	_, err = users.Create(ctx, user.User{Username: u.Username, Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, user.ErrAlreadyExists)

	_, err = users.GetByID(ctx, -1)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestTaskStore_Postgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	owner := createUser(t, NewUserStore(pool))
	tasks := NewTaskStore(pool)

	page, err := tasks.Page(ctx, owner.ID, 1, 4)
	require.NoError(t, err)
	assert.Empty(t, page)

	_, err = tasks.Page(ctx, owner.ID, 2, 4)
	assert.ErrorIs(t, err, task.ErrNotFound)

	var ids []int64
	for i := 0; i < 5; i++ {
		created, err := tasks.Insert(ctx, task.Task{
			Title:       fmt.Sprintf("task %d", i),
			Description: "description text",
			UserID:      owner.ID,
		})
		require.NoError(t, err)
		assert.False(t, created.DateCreated.IsZero())
		ids = append(ids, created.ID)
	}

	page, err = tasks.Page(ctx, owner.ID, 1, 4)
	require.NoError(t, err)
	require.Len(t, page, 4)
	assert.Equal(t, ids[0], page[0].ID)

	page, err = tasks.Page(ctx, owner.ID, 2, 4)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	got, err := tasks.Get(ctx, owner.ID, ids[0])
	require.NoError(t, err)
	got.Title = "renamed"
	updated, err := tasks.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	_, err = tasks.Get(ctx, owner.ID+1000000, ids[0])
	assert.ErrorIs(t, err, task.ErrNotFound)

	require.NoError(t, tasks.Delete(ctx, updated))
	assert.ErrorIs(t, tasks.Delete(ctx, updated), task.ErrNotFound)
}
