/*
Package memstore keeps users and tasks in process memory. It backs the
"memory" storage driver and isolates tests from Postgres.
*/
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskhub/internal/app/task"
	"taskhub/internal/app/user"
)

// TaskStore implements task.Directory.
type TaskStore struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]task.Task

	// now is swapped in tests for deterministic timestamps.
	now func() time.Time
}

var _ task.Directory = (*TaskStore)(nil)

// NewTaskStore returns an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[int64]task.Task),
		now:   time.Now,
	}
}

// Page implements task.Directory.
func (s *TaskStore) Page(ctx context.Context, owner user.ID, page, size int) ([]task.Task, error) {
	if page < 1 || size < 1 {
		return nil, task.ErrNotFound
	}

	s.mu.RLock()
	owned := make([]task.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == owner {
			owned = append(owned, t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })

	start := (page - 1) * size
	if start >= len(owned) {
		if page > 1 {
			return nil, task.ErrNotFound
		}
		return []task.Task{}, nil
	}

	end := min(start+size, len(owned))

	return owned[start:end], nil
}

// Get implements task.Directory.
func (s *TaskStore) Get(ctx context.Context, owner user.ID, id int64) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != owner {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

// Insert implements task.Directory.
func (s *TaskStore) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now()

	t.ID = s.nextID
	t.DateCreated = now
	t.DateModified = now
	s.tasks[t.ID] = t

	return t, nil
}

// Update implements task.Directory.
func (s *TaskStore) Update(ctx context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return task.Task{}, task.ErrNotFound
	}

	existing.Title = t.Title
	existing.Description = t.Description
	existing.DateModified = s.now()
	s.tasks[t.ID] = existing

	return existing, nil
}

// Delete implements task.Directory.
func (s *TaskStore) Delete(ctx context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return task.ErrNotFound
	}

	delete(s.tasks, t.ID)
	return nil
}
