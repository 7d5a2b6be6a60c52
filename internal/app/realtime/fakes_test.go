package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskhub/internal/app/task"
	"taskhub/internal/app/user"
	"taskhub/internal/pkg/auth/jwt"
)

const testSecret = "realtime-test-secret-with-enough-bytes"

// fakeConn records delivered frames in memory.
type fakeConn struct {
	id string

	mu      sync.Mutex
	frames  [][]byte
	closed  int
	failing bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Deliver(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failing {
		return errors.New("broken pipe")
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed++
	return nil
}

func (c *fakeConn) Frames(t *testing.T) []Frame {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Frame, 0, len(c.frames))
	for _, raw := range c.frames {
		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		out = append(out, f)
	}
	return out
}

func (c *fakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed > 0
}

// panicConn panics on delivery.
type panicConn struct{ fakeConn }

func (c *panicConn) Deliver([]byte) error { panic("delivery exploded") }

// stubPager serves fixed tasks or a fixed error.
type stubPager struct {
	tasks []task.Task
	err   error

	mu    sync.Mutex
	calls []pageCall
}

type pageCall struct {
	owner      user.ID
	page, size int
}

func (p *stubPager) Page(_ context.Context, owner user.ID, page, size int) ([]task.Task, error) {
	p.mu.Lock()
	p.calls = append(p.calls, pageCall{owner: owner, page: page, size: size})
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	if len(p.tasks) > size {
		return p.tasks[:size], nil
	}
	return p.tasks, nil
}

// knownUsers reports existence from a fixed set.
type knownUsers map[user.ID]bool

func (k knownUsers) Exists(_ context.Context, id user.ID) (bool, error) {
	return k[id], nil
}

func token(t *testing.T, uid int64) string {
	t.Helper()

	tok, err := jwt.GenerateToken(&jwt.Payload{UserID: uid}, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func expiredToken(t *testing.T, uid int64) string {
	t.Helper()

	tok, err := jwt.GenerateToken(&jwt.Payload{UserID: uid}, testSecret, -time.Minute)
	require.NoError(t, err)
	return tok
}

func sampleTask(id int64, owner user.ID) task.Task {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return task.Task{
		ID:           id,
		Title:        "task title",
		Description:  "a description long enough",
		UserID:       owner,
		DateCreated:  ts,
		DateModified: ts,
	}
}
