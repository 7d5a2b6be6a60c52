package realtime

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"taskhub/internal/app/user"
	"taskhub/internal/pkg/logx"
)

// Peer is a room member able to receive encoded frames. Deliver should
// return quickly; a slow Deliver delays later frames of its own room only.
type Peer interface {
	ID() string
	Deliver(frame []byte) error
}

// RoomID names the private room of uid.
func RoomID(uid user.ID) string {
	return uid.String()
}

// room is one named group of peers. members is guarded by RoomChannel.mu;
// deliver is held for the whole of a publish so frames reach every member in
// publish order.
type room struct {
	id      string
	deliver sync.Mutex
	members map[string]Peer
}

// RoomChannel groups peers into named rooms and delivers frames to them.
//
// mu guards the rooms map and every room's member set and is never held
// while a frame is delivered. Publish takes the delivery lock of its room
// first and then mu briefly to snapshot the members, so Join, Leave and
// publishes to other rooms never wait on a slow delivery.
type RoomChannel struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	roomOf map[string]string

	logger zerolog.Logger
}

// NewRoomChannel returns a RoomChannel with no rooms.
func NewRoomChannel() *RoomChannel {
	return &RoomChannel{
		rooms:  make(map[string]*room),
		roomOf: make(map[string]string),
		logger: logx.Component("RoomChannel"),
	}
}

// Join adds p to roomID, leaving any room p was in before.
func (c *RoomChannel) Join(p Peer, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	connID := p.ID()
	if prev, ok := c.roomOf[connID]; ok {
		if prev == roomID {
			return
		}
		c.leaveLocked(connID, prev)
	}

	r, ok := c.rooms[roomID]
	if !ok {
		r = &room{id: roomID, members: make(map[string]Peer)}
		c.rooms[roomID] = r
	}

	r.members[connID] = p
	c.roomOf[connID] = roomID

	c.logger.Debug().Str("conn_id", connID).Str("room", roomID).Msg("Peer joined room.")
}

// Leave removes connID from roomID. It is a no-op when connID is not a member.
func (c *RoomChannel) Leave(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.roomOf[connID] != roomID {
		return
	}
	c.leaveLocked(connID, roomID)
}

// LeaveAll removes connID from whatever room it is in.
func (c *RoomChannel) LeaveAll(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if roomID, ok := c.roomOf[connID]; ok {
		c.leaveLocked(connID, roomID)
	}
}

// leaveLocked requires c.mu held for writing.
func (c *RoomChannel) leaveLocked(connID, roomID string) {
	delete(c.roomOf, connID)

	r, ok := c.rooms[roomID]
	if !ok {
		return
	}

	delete(r.members, connID)
	if len(r.members) == 0 {
		delete(c.rooms, roomID)
	}

	c.logger.Debug().Str("conn_id", connID).Str("room", roomID).Msg("Peer left room.")
}

// Publish encodes {event, payload} once and delivers it to every member of
// roomID. It returns the number of successful deliveries. An unknown or empty
// room drops the frame silently and a failing peer is logged and skipped.
func (c *RoomChannel) Publish(roomID, event string, payload any) int {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("room", roomID).Str("event", event).Msg("Failed to encode frame.")
		return 0
	}

	r, members := c.lockForDelivery(roomID)
	if r == nil {
		return 0
	}
	defer r.deliver.Unlock()

	delivered := 0
	for _, p := range members {
		connID := p.ID()
		if err := p.Deliver(frame); err != nil {
			c.logger.Warn().Err(err).
				Str("conn_id", connID).
				Str("room", roomID).
				Str("event", event).
				Msg("Delivery to peer failed, skipping.")
			continue
		}
		delivered++
	}

	return delivered
}

// lockForDelivery returns roomID with its delivery lock held and a snapshot
// of its members, or nil when the room does not exist. A room removed while
// waiting for the lock is looked up again.
func (c *RoomChannel) lockForDelivery(roomID string) (*room, []Peer) {
	for {
		c.mu.RLock()
		r, ok := c.rooms[roomID]
		c.mu.RUnlock()
		if !ok {
			return nil, nil
		}

		r.deliver.Lock()

		c.mu.RLock()
		if c.rooms[roomID] != r {
			c.mu.RUnlock()
			r.deliver.Unlock()
			continue
		}
		members := make([]Peer, 0, len(r.members))
		for _, p := range r.members {
			members = append(members, p)
		}
		c.mu.RUnlock()

		return r, members
	}
}

// Members returns the connection ids in roomID, sorted.
func (c *RoomChannel) Members(roomID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.rooms[roomID]
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(r.members))
	for connID := range r.members {
		out = append(out, connID)
	}

	sort.Strings(out)
	return out
}

// RoomOf reports the room connID is currently in.
func (c *RoomChannel) RoomOf(connID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	roomID, ok := c.roomOf[connID]
	return roomID, ok
}

// Rooms returns the number of non-empty rooms.
func (c *RoomChannel) Rooms() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.rooms)
}

// CloseAll empties every room and returns the peers that were members.
func (c *RoomChannel) CloseAll() []Peer {
	c.mu.Lock()
	defer c.mu.Unlock()

	var peers []Peer
	for _, r := range c.rooms {
		for _, p := range r.members {
			peers = append(peers, p)
		}
	}

	c.rooms = make(map[string]*room)
	c.roomOf = make(map[string]string)

	return peers
}
