/*
Package task holds the task model, the Directory that persists tasks and the
Service that mutates them and announces every change to a Notifier.
*/
package task

import (
	"time"

	"taskhub/internal/app/user"
)

// timestampLayout renders timestamps as "2006-01-02 15:04:05" with a six-digit
// fraction appended only when the time has sub-second precision.
const (
	timestampLayout         = "2006-01-02 15:04:05"
	timestampLayoutFraction = "2006-01-02 15:04:05.000000"
)

// Task is one entry in a user's task list.
type Task struct {
	ID           int64
	Title        string
	Description  string
	UserID       user.ID
	DateCreated  time.Time
	DateModified time.Time
}

// Serialized is the wire form of a Task shared by the REST API and the realtime channel.
type Serialized struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	UserID       user.ID `json:"user_id"`
	DateCreated  string  `json:"date_created"`
	DateModified string  `json:"date_modified"`
}

// Serialize returns the stable wire representation of t.
func (t Task) Serialize() Serialized {
	return Serialized{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		UserID:       t.UserID,
		DateCreated:  formatTimestamp(t.DateCreated),
		DateModified: formatTimestamp(t.DateModified),
	}
}

// SerializeAll serializes tasks in order. The result is never nil.
func SerializeAll(tasks []Task) []Serialized {
	out := make([]Serialized, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Serialize())
	}
	return out
}

func formatTimestamp(ts time.Time) string {
	if ts.Nanosecond()/int(time.Microsecond) == 0 {
		return ts.Format(timestampLayout)
	}
	return ts.Format(timestampLayoutFraction)
}
