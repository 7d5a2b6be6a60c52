package task

import (
	"context"
	"errors"

	"taskhub/internal/app/user"
)

const (
	// RESTPageSize caps a page of the REST task listing.
	RESTPageSize = 10

	// RealtimePageSize is the page size answered to "get_tasks" over the realtime channel.
	RealtimePageSize = 4
)

// ErrNotFound reports a missing task, or a page past the end of a user's list.
var ErrNotFound = errors.New("task not found")

// Directory persists tasks. Every lookup is scoped to the owning user.
type Directory interface {
	// Page returns page number page (1-based) of owner's tasks ordered by id.
	// Page 1 of an empty list is an empty slice; a page past the end is ErrNotFound.
	Page(ctx context.Context, owner user.ID, page, size int) ([]Task, error)

	// Get returns owner's task id, or ErrNotFound.
	Get(ctx context.Context, owner user.ID, id int64) (Task, error)

	// Insert stores t and returns it with ID and timestamps assigned.
	Insert(ctx context.Context, t Task) (Task, error)

	// Update rewrites title and description of t, bumping DateModified.
	Update(ctx context.Context, t Task) (Task, error)

	// Delete removes t. Deleting a missing task is ErrNotFound.
	Delete(ctx context.Context, t Task) error
}
