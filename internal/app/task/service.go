package task

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"taskhub/internal/app/user"
	"taskhub/internal/pkg/logx"
)

// EventKind names a task mutation as announced to live connections.
type EventKind string

const (
	EventCreated EventKind = "task_created"
	EventUpdated EventKind = "task_updated"
	EventRemoved EventKind = "task_removed"
)

// Notifier announces a committed mutation. Implementations are best-effort and
// must not block for long; nothing they do can fail the mutation.
type Notifier interface {
	Emit(ctx context.Context, kind EventKind, t Task)
}

// NopNotifier drops every event.
type NopNotifier struct{}

// Emit implements Notifier.
func (NopNotifier) Emit(context.Context, EventKind, Task) {}

// Service is the mutation path for tasks: persist first, then notify.
type Service struct {
	dir      Directory
	notifier Notifier
	logger   zerolog.Logger
}

// NewService returns a Service over dir. A nil notifier disables notifications.
func NewService(dir Directory, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Service{
		dir:      dir,
		notifier: notifier,
		logger:   logx.Component("TaskService"),
	}
}

// Create stores a new task for owner and emits EventCreated.
func (s *Service) Create(ctx context.Context, owner user.ID, title, description string) (Task, error) {
	created, err := s.dir.Insert(ctx, Task{
		Title:       title,
		Description: description,
		UserID:      owner,
	})
	if err != nil {
		return Task{}, err
	}

	s.logger.Debug().Int64("task_id", created.ID).Str("user_id", owner.String()).Msg("Task created.")
	s.notifier.Emit(ctx, EventCreated, created)

	return created, nil
}

// Update replaces title and description of owner's task id and emits EventUpdated.
func (s *Service) Update(ctx context.Context, owner user.ID, id int64, title, description string) (Task, error) {
	existing, err := s.dir.Get(ctx, owner, id)
	if err != nil {
		return Task{}, err
	}

	existing.Title = title
	existing.Description = description

	updated, err := s.dir.Update(ctx, existing)
	if err != nil {
		return Task{}, err
	}

	s.notifier.Emit(ctx, EventUpdated, updated)

	return updated, nil
}

// Delete removes owner's task id and emits EventRemoved carrying the deleted task.
func (s *Service) Delete(ctx context.Context, owner user.ID, id int64) error {
	existing, err := s.dir.Get(ctx, owner, id)
	if err != nil {
		return err
	}

	if err := s.dir.Delete(ctx, existing); err != nil {
		return err
	}

	s.notifier.Emit(ctx, EventRemoved, existing)

	return nil
}

// Get returns owner's task id.
func (s *Service) Get(ctx context.Context, owner user.ID, id int64) (Task, error) {
	return s.dir.Get(ctx, owner, id)
}

// List returns one page of owner's tasks. perPage is clamped to [1, RESTPageSize]
// and a page past the end yields an empty slice.
func (s *Service) List(ctx context.Context, owner user.ID, page, perPage int) ([]Task, error) {
	if perPage <= 0 || perPage > RESTPageSize {
		perPage = RESTPageSize
	}

	tasks, err := s.dir.Page(ctx, owner, page, perPage)
	if errors.Is(err, ErrNotFound) {
		return []Task{}, nil
	}
	if err != nil {
		return nil, err
	}

	return tasks, nil
}
