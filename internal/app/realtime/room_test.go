package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomID(t *testing.T) {
	assert.Equal(t, "42", RoomID(42))
}

func TestRoomChannel_PublishToMembersOnly(t *testing.T) {
	c := NewRoomChannel()
	a1, a2, b := newFakeConn("a1"), newFakeConn("a2"), newFakeConn("b")

	c.Join(a1, "1")
	c.Join(a2, "1")
	c.Join(b, "2")

	n := c.Publish("1", "ping", map[string]int{"n": 1})
	assert.Equal(t, 2, n)

	for _, conn := range []*fakeConn{a1, a2} {
		frames := conn.Frames(t)
		require.Len(t, frames, 1)
		assert.Equal(t, "ping", frames[0].Event)
		assert.JSONEq(t, `{"n":1}`, string(frames[0].Data))
	}
	assert.Empty(t, b.Frames(t))
}

func TestRoomChannel_PublishToEmptyRoom(t *testing.T) {
	c := NewRoomChannel()
	assert.Zero(t, c.Publish("nobody", "ping", nil))
}

func TestRoomChannel_FailingPeerIsSkipped(t *testing.T) {
	c := NewRoomChannel()
	bad, good := newFakeConn("bad"), newFakeConn("good")
	bad.failing = true

	c.Join(bad, "1")
	c.Join(good, "1")

	assert.Equal(t, 1, c.Publish("1", "ping", "x"))
	assert.Len(t, good.Frames(t), 1)
}

func TestRoomChannel_JoinMovesBetweenRooms(t *testing.T) {
	c := NewRoomChannel()
	p := newFakeConn("p")

	c.Join(p, "1")
	c.Join(p, "2")

	roomID, ok := c.RoomOf("p")
	require.True(t, ok)
	assert.Equal(t, "2", roomID)
	assert.Empty(t, c.Members("1"))
	assert.Equal(t, []string{"p"}, c.Members("2"))
	assert.Equal(t, 1, c.Rooms(), "the abandoned room is removed")
}

func TestRoomChannel_Leave(t *testing.T) {
	c := NewRoomChannel()
	p := newFakeConn("p")
	c.Join(p, "1")

	c.Leave("p", "2")
	assert.Equal(t, []string{"p"}, c.Members("1"), "leaving a room the peer is not in is a no-op")

	c.Leave("p", "1")
	c.Leave("p", "1")
	assert.Empty(t, c.Members("1"))
	assert.Zero(t, c.Rooms())

	_, ok := c.RoomOf("p")
	assert.False(t, ok)
}

func TestRoomChannel_CloseAll(t *testing.T) {
	c := NewRoomChannel()
	c.Join(newFakeConn("a"), "1")
	c.Join(newFakeConn("b"), "2")

	peers := c.CloseAll()
	assert.Len(t, peers, 2)
	assert.Zero(t, c.Rooms())
}

func TestRoomChannel_PreservesOrderWithinRoom(t *testing.T) {
	c := NewRoomChannel()
	p := newFakeConn("p")
	c.Join(p, "1")

	for i := 0; i < 20; i++ {
		c.Publish("1", "seq", i)
	}

	frames := p.Frames(t)
	require.Len(t, frames, 20)
	for i, f := range frames {
		var got int
		require.NoError(t, json.Unmarshal(f.Data, &got))
		assert.Equal(t, i, got)
	}
}

func TestRoomChannel_ConcurrentJoinPublishLeave(t *testing.T) {
	c := NewRoomChannel()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			roomID := fmt.Sprintf("%d", i%4)
			p := newFakeConn(fmt.Sprintf("p%d", i))
			c.Join(p, roomID)
			c.Publish(roomID, "ping", i)
			c.Leave(p.ID(), roomID)
		}(i)
	}
	wg.Wait()

	assert.Zero(t, c.Rooms())
}

// stalledPeer blocks in Deliver until release is closed.
type stalledPeer struct {
	id      string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newStalledPeer(id string) *stalledPeer {
	return &stalledPeer{id: id, entered: make(chan struct{}), release: make(chan struct{})}
}

func (p *stalledPeer) ID() string { return p.id }

func (p *stalledPeer) Deliver([]byte) error {
	p.once.Do(func() { close(p.entered) })
	<-p.release
	return nil
}

func TestRoomChannel_SlowRoomDoesNotStallOthers(t *testing.T) {
	c := NewRoomChannel()
	slow := newStalledPeer("slow")
	other := newFakeConn("other")
	c.Join(slow, "A")
	c.Join(other, "B")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.Publish("A", "ping", 1)
	}()
	<-slow.entered
	go func() {
		defer wg.Done()
		c.Publish("A", "ping", 2)
	}()

	done := make(chan int, 1)
	go func() {
		c.Join(newFakeConn("late"), "C")
		c.Join(newFakeConn("late-a"), "A")
		done <- c.Publish("B", "ping", 3)
	}()

	select {
	case n := <-done:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		close(slow.release)
		t.Fatal("publish to B waited on the stalled delivery in A")
	}

	assert.Len(t, other.Frames(t), 1)
	assert.Equal(t, []string{"late-a", "slow"}, c.Members("A"))

	close(slow.release)
	wg.Wait()
}

func TestRoomChannel_PublishAfterRoomRemovedWhileWaiting(t *testing.T) {
	c := NewRoomChannel()
	slow := newStalledPeer("slow")
	c.Join(slow, "A")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Publish("A", "ping", 1)
	}()
	<-slow.entered

	result := make(chan int, 1)
	go func() { result <- c.Publish("A", "ping", 2) }()

	c.Leave("slow", "A")
	late := newFakeConn("late")
	c.Join(late, "A")
	close(slow.release)
	wg.Wait()

	select {
	case n := <-result:
		assert.LessOrEqual(t, n, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("second publish never returned")
	}
}
