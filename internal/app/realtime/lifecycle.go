package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"taskhub/internal/app/task"
	"taskhub/internal/app/user"
	"taskhub/internal/pkg/auth/jwt"
	"taskhub/internal/pkg/logx"
)

// ErrSessionClosed is returned for operations on a session that already left
// the Connecting or Authenticated state they require.
var ErrSessionClosed = errors.New("realtime: session closed")

// TokenVerifier resolves a credential to a user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserChecker confirms that a verified user still exists.
type UserChecker interface {
	Exists(ctx context.Context, id user.ID) (bool, error)
}

// TaskPager is the read side of task.Directory used by get_tasks.
type TaskPager interface {
	Page(ctx context.Context, owner user.ID, page, size int) ([]task.Task, error)
}

// Conn is a live transport connection.
type Conn interface {
	Peer
	Close() error
}

// State is the position of a Session in its lifecycle.
type State int

const (
	StateConnecting State = iota
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the lifecycle state of one connection. A new connection attempt
// always starts a fresh Session.
type Session struct {
	conn  Conn
	token string

	mu    sync.Mutex
	state State
	uid   user.ID
}

// NewSession starts a session in StateConnecting for conn, authenticated by
// the connect-time token.
func NewSession(conn Conn, token string) *Session {
	return &Session{conn: conn, token: token}
}

// ConnID returns the handle of the underlying connection.
func (s *Session) ConnID() string {
	return s.conn.ID()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// UserID returns the authenticated user, if any.
func (s *Session) UserID() (user.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.uid, s.state == StateAuthenticated
}

// Handler drives sessions through connect, get_tasks and disconnect.
type Handler struct {
	registry *Registry
	rooms    *RoomChannel
	verifier TokenVerifier
	users    UserChecker
	tasks    TaskPager
	logger   zerolog.Logger
}

// NewHandler wires a Handler. users may be nil to skip the existence check.
func NewHandler(registry *Registry, rooms *RoomChannel, verifier TokenVerifier, users UserChecker, tasks TaskPager) *Handler {
	return &Handler{
		registry: registry,
		rooms:    rooms,
		verifier: verifier,
		users:    users,
		tasks:    tasks,
		logger:   logx.Component("Lifecycle"),
	}
}

// Connect authenticates s with its connect-time token. On success the
// connection joins its user's room and is registered. On failure it receives
// an unauthorized notice and is closed; the returned error wraps
// jwt.ErrUnauthorized.
//
// Verification runs without the session lock. If Disconnect wins the race
// the session is already closed and Connect leaves no trace.
func (h *Handler) Connect(ctx context.Context, s *Session) error {
	uid, err := h.authenticate(ctx, s.token)
	if err != nil {
		h.logger.Info().Err(err).Str("conn_id", s.ConnID()).Msg("Connection rejected.")

		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()

		h.rejectAndClose(s.conn)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnecting {
		return ErrSessionClosed
	}

	h.rooms.Join(s.conn, RoomID(uid))
	h.registry.Register(uid, s.ConnID())

	s.uid = uid
	s.state = StateAuthenticated

	h.logger.Info().Str("conn_id", s.ConnID()).Str("user_id", uid.String()).Msg("Connection authenticated.")
	return nil
}

// Disconnect tears s down. It may be called any number of times, from any
// state, and never panics. The token is re-verified but a failure is only
// logged; cleanup is keyed by connection handle.
func (h *Handler) Disconnect(s *Session) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Err(fmt.Errorf("panic: %v", r)).Str("conn_id", s.ConnID()).Msg("Recovered from panic during disconnect.")
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	wasAuthenticated := s.state == StateAuthenticated
	if wasAuthenticated {
		if _, err := h.verifier.Verify(s.token); err != nil {
			h.logger.Warn().Err(err).Str("conn_id", s.ConnID()).Msg("Token no longer valid at disconnect, cleaning up anyway.")
		}
	}

	h.cleanup(s.ConnID())
	s.state = StateClosed

	if wasAuthenticated {
		h.logger.Info().Str("conn_id", s.ConnID()).Str("user_id", s.uid.String()).Msg("Connection closed.")
	}
}

// cleanup drops connID from the registry and from its user's room. A
// connection unknown to the registry may still sit in a room if it was
// joined by hand, so it leaves whatever room it is in.
func (h *Handler) cleanup(connID string) {
	if uid, ok := h.registry.UserOf(connID); ok {
		h.rooms.Leave(connID, RoomID(uid))
	} else {
		h.rooms.LeaveAll(connID)
	}
	h.registry.UnregisterConn(connID)
}

// GetTasks answers a get_tasks request. token may be empty, in which case the
// connect-time token is checked again. An invalid token, or one naming another
// user, yields an unauthorized notice to this connection only; the connection
// stays open. The first page of at most task.RealtimePageSize tasks is
// published as "tasks" to the user's room. Directory errors degrade to an
// empty list.
func (h *Handler) GetTasks(ctx context.Context, s *Session, token string) error {
	uid, ok := s.UserID()
	if !ok {
		return ErrSessionClosed
	}

	if token == "" {
		token = s.token
	}

	claimed, err := h.verifier.Verify(token)
	if err == nil && user.ID(claimed) != uid {
		err = fmt.Errorf("%w: token belongs to another user", jwt.ErrUnauthorized)
	}
	if err != nil {
		h.logger.Info().Err(err).Str("conn_id", s.ConnID()).Msg("get_tasks rejected.")
		h.sendUnauthorized(s.conn)
		return err
	}

	tasks, err := h.tasks.Page(ctx, uid, 1, task.RealtimePageSize)
	if err != nil {
		if !errors.Is(err, task.ErrNotFound) {
			h.logger.Error().Err(err).Str("user_id", uid.String()).Msg("Task lookup failed; sending empty list.")
		}
		tasks = nil
	}

	h.rooms.Publish(RoomID(uid), EventTasks, task.SerializeAll(tasks))
	return nil
}

// authenticate verifies token and confirms the user still exists.
func (h *Handler) authenticate(ctx context.Context, token string) (user.ID, error) {
	claimed, err := h.verifier.Verify(token)
	if err != nil {
		return 0, err
	}

	uid := user.ID(claimed)
	if h.users == nil {
		return uid, nil
	}

	exists, err := h.users.Exists(ctx, uid)
	if err != nil {
		return 0, fmt.Errorf("%w: user lookup: %v", jwt.ErrUnauthorized, err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: unknown user %s", jwt.ErrUnauthorized, uid)
	}

	return uid, nil
}

func (h *Handler) sendUnauthorized(c Conn) {
	frame, err := EncodeFrame(EventUnauthorized, NoticePayload{Message: InvalidTokenMessage})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode unauthorized notice.")
		return
	}

	if err := c.Deliver(frame); err != nil {
		h.logger.Warn().Err(err).Str("conn_id", c.ID()).Msg("Failed to deliver unauthorized notice.")
	}
}

func (h *Handler) rejectAndClose(c Conn) {
	h.sendUnauthorized(c)

	if err := c.Close(); err != nil {
		h.logger.Warn().Err(err).Str("conn_id", c.ID()).Msg("Failed to close rejected connection.")
	}
}
