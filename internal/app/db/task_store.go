package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"taskhub/internal/app/task"
	"taskhub/internal/app/user"
)

const taskColumns = `id, title, description, user_id, date_created, date_modified`

// TaskStore is the PostgreSQL task.Directory.
type TaskStore struct {
	db DBTX
}

var _ task.Directory = (*TaskStore)(nil)

// NewTaskStore returns a TaskStore over db.
func NewTaskStore(db DBTX) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(row pgx.Row) (task.Task, error) {
	var (
		t     task.Task
		owner int64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &owner, &t.DateCreated, &t.DateModified); err != nil {
		return task.Task{}, err
	}
	t.UserID = user.ID(owner)
	return t, nil
}

// Page implements task.Directory.
func (s *TaskStore) Page(ctx context.Context, owner user.ID, page, size int) ([]task.Task, error) {
	if page < 1 || size < 1 {
		return nil, task.ErrNotFound
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		int64(owner), size, (page-1)*size,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks page: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (task.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan tasks page: %w", err)
	}

	if len(tasks) == 0 && page > 1 {
		return nil, task.ErrNotFound
	}

	return tasks, nil
}

// Get implements task.Directory.
func (s *TaskStore) Get(ctx context.Context, owner user.ID, id int64) (task.Task, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		id, int64(owner),
	)

	t, err := scanTask(row)
	if IsNoRows(err) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Insert implements task.Directory.
func (s *TaskStore) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, user_id) VALUES ($1, $2, $3) RETURNING `+taskColumns,
		t.Title, t.Description, int64(t.UserID),
	)

	created, err := scanTask(row)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return task.Task{}, fmt.Errorf("insert task: %w", user.ErrNotFound)
		}
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

// Update implements task.Directory.
func (s *TaskStore) Update(ctx context.Context, t task.Task) (task.Task, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE tasks SET title = $1, description = $2, date_modified = NOW()
		 WHERE id = $3 AND user_id = $4 RETURNING `+taskColumns,
		t.Title, t.Description, t.ID, int64(t.UserID),
	)

	updated, err := scanTask(row)
	if IsNoRows(err) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return updated, nil
}

// Delete implements task.Directory.
func (s *TaskStore) Delete(ctx context.Context, t task.Task) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, t.ID, int64(t.UserID))
	if err != nil {
		return fmt.Errorf("delete task %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}
