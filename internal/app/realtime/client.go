package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"taskhub/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 4096

	// sendQueueSize is the number of outbound frames buffered per client.
	sendQueueSize = 64
)

var (
	ErrClientClosed  = errors.New("realtime: client closed")
	ErrSendQueueFull = errors.New("realtime: send queue full")
)

// Client is one WebSocket connection. Frames are queued by Deliver and written
// by WritePump; ReadPump dispatches inbound events to the Handler.
type Client struct {
	id   string
	conn *websocket.Conn

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// closed by Close; WritePump flushes send and shuts the socket down.
	done      chan struct{}
	closeOnce sync.Once

	logger zerolog.Logger
}

// NewClient wraps wsConn with a fresh connection handle.
func NewClient(wsConn *websocket.Conn) *Client {
	id := uuid.NewString()

	return &Client{
		id:     id,
		conn:   wsConn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: logx.Logger().With().Str("conn_id", id).Logger(),
	}
}

// ID implements Peer.
func (c *Client) ID() string {
	return c.id
}

// Deliver queues frame without blocking. A slow client loses frames rather
// than stalling the room.
func (c *Client) Deliver(frame []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping frame")
		return ErrSendQueueFull
	}
}

// Close asks WritePump to flush queued frames and close the socket. Safe to call repeatedly.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// ReadPump reads frames until the connection fails, then disconnects the session.
func (c *Client) ReadPump(ctx context.Context, h *Handler, s *Session) {
	defer func() {
		h.Disconnect(s)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			return
		}

		c.processInboundMessage(ctx, h, s, messageBytes)
	}
}

// processInboundMessage dispatches one raw frame.
func (c *Client) processInboundMessage(ctx context.Context, h *Handler, s *Session, messageBytes []byte) {
	frame, err := DecodeFrame(messageBytes)
	if err != nil {
		c.logger.Warn().Err(err).Int("size", len(messageBytes)).Msg("Client sent invalid frame")
		return
	}

	switch frame.Event {
	case EventGetTasks:
		if err := h.GetTasks(ctx, s, frame.Token); err != nil {
			c.logger.Debug().Err(err).Msg("get_tasks not served")
		}

	default:
		c.logger.Warn().Str("event", frame.Event).Msg("Client sent unsupported event")
	}
}

// WritePump writes queued frames and pings until Close is called or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message := <-c.send:
			if !c.writeFrame(message) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}

		case <-c.done:
			c.flushAndClose()
			return
		}
	}
}

// flushAndClose writes whatever is still queued, then a close frame.
func (c *Client) flushAndClose() {
	for {
		select {
		case message := <-c.send:
			if !c.writeFrame(message) {
				return
			}
		default:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := c.conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing close message")
			}
			return
		}
	}
}

// writeFrame returns false if the WritePump loop should terminate.
func (c *Client) writeFrame(message []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
