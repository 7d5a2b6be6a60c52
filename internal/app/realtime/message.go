/*
Package realtime pushes task changes to the live connections of their owner.

Every authenticated connection joins the room named after its user id. The
Registry records which connections belong to which user, the RoomChannel fans a
frame out to the members of one room, the Emitter turns task mutations into
frames, and the Handler drives each connection through
Connecting -> Authenticated -> Closed.
*/
package realtime

import (
	"encoding/json"
	"fmt"
)

// Inbound events.
const (
	EventGetTasks = "get_tasks"
)

// Outbound events. Task mutation events reuse task.EventKind values.
const (
	EventUnauthorized = "unauthorized"
	EventTasks        = "tasks"
)

// InvalidTokenMessage is the only auth failure text shown to clients.
const InvalidTokenMessage = "Invalid token"

// Frame is one message on the wire, in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`

	// Token optionally re-authenticates an inbound frame.
	Token string `json:"token,omitempty"`
}

// NoticePayload is the body of an "unauthorized" frame.
type NoticePayload struct {
	Message string `json:"message"`
}

// EncodeFrame marshals an outbound frame.
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}

	return json.Marshal(Frame{Event: event, Data: raw})
}

// DecodeFrame parses an inbound frame.
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Frame{}, err
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("frame has no event name")
	}
	return f, nil
}
