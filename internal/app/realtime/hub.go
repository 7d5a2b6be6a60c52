package realtime

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"taskhub/internal/pkg/logx"
)

// Hub owns the realtime state of the process: the registry, the rooms, the
// lifecycle handler and every live Client.
type Hub struct {
	registry *Registry
	rooms    *RoomChannel
	handler  *Handler
	emitter  *Emitter

	ctx    context.Context
	cancel context.CancelFunc

	// mu protects clients.
	mu      sync.Mutex
	clients map[string]*Client

	// wg tracks running pumps so Shutdown can wait for them.
	wg sync.WaitGroup

	logger zerolog.Logger
}

// NewHub builds a Hub. users may be nil to skip the user existence check at connect.
func NewHub(verifier TokenVerifier, users UserChecker, tasks TaskPager) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	registry := NewRegistry()
	rooms := NewRoomChannel()

	return &Hub{
		registry: registry,
		rooms:    rooms,
		handler:  NewHandler(registry, rooms, verifier, users, tasks),
		emitter:  NewEmitter(rooms),
		ctx:      ctx,
		cancel:   cancel,
		clients:  make(map[string]*Client),
		logger:   logx.Component("Hub"),
	}
}

// Emitter returns the task.Notifier publishing into this hub's rooms.
func (h *Hub) Emitter() *Emitter {
	return h.emitter
}

// Registry exposes the connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Rooms exposes the room channel.
func (h *Hub) Rooms() *RoomChannel {
	return h.rooms
}

// ServeConn runs one upgraded connection authenticated by token and blocks
// until it is closed.
func (h *Hub) ServeConn(wsConn *websocket.Conn, token string) {
	client := NewClient(wsConn)
	session := NewSession(client, token)

	if !h.track(client) {
		_ = client.Close()
		client.WritePump()
		return
	}
	defer h.untrack(client)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		client.WritePump()
	}()

	if err := h.handler.Connect(h.ctx, session); err != nil {
		return
	}

	client.ReadPump(h.ctx, h.handler, session)
}

// track records c unless the hub is shutting down.
func (h *Hub) track(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients == nil {
		return false
	}

	h.clients[c.ID()] = c
	h.wg.Add(1)
	return true
}

func (h *Hub) untrack(c *Client) {
	h.mu.Lock()
	if h.clients != nil {
		delete(h.clients, c.ID())
	}
	h.mu.Unlock()

	h.wg.Done()
}

// Shutdown closes every live connection and waits for their pumps to exit.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down realtime hub...")

	h.cancel()

	h.mu.Lock()
	clients := h.clients
	h.clients = nil
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.Close()
	}
	h.rooms.CloseAll()

	h.wg.Wait()

	h.logger.Info().Int("closed", len(clients)).Msg("Realtime hub shutdown complete.")
}
