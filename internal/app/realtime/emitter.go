package realtime

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"taskhub/internal/app/task"
	"taskhub/internal/pkg/logx"
)

// Emitter publishes task mutations to the owner's room. It implements task.Notifier.
type Emitter struct {
	rooms  *RoomChannel
	logger zerolog.Logger
}

// NewEmitter returns an Emitter publishing into rooms.
func NewEmitter(rooms *RoomChannel) *Emitter {
	return &Emitter{
		rooms:  rooms,
		logger: logx.Component("Emitter"),
	}
}

var _ task.Notifier = (*Emitter)(nil)

// Emit sends kind with the serialized task to room t.UserID. Nothing is
// returned and a panic during delivery is recovered, so the mutation that
// triggered the event is never affected.
func (e *Emitter) Emit(_ context.Context, kind task.EventKind, t task.Task) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Err(fmt.Errorf("panic: %v", r)).
				Str("event", string(kind)).
				Int64("task_id", t.ID).
				Msg("Recovered from panic while emitting task event.")
		}
	}()

	roomID := RoomID(t.UserID)
	delivered := e.rooms.Publish(roomID, string(kind), t.Serialize())

	e.logger.Debug().
		Str("event", string(kind)).
		Int64("task_id", t.ID).
		Str("room", roomID).
		Int("delivered", delivered).
		Msg("Task event emitted.")
}
