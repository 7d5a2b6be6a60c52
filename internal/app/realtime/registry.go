package realtime

import (
	"sort"
	"sync"

	"taskhub/internal/app/user"
)

// Registry records which live connections belong to which user.
//
// A user may hold several connections at once (browser tabs, devices): Register
// accumulates handles instead of replacing the previous one. A user with no
// entry is simply not reachable for push events.
type Registry struct {
	mu     sync.RWMutex
	byUser map[user.ID]map[string]struct{}
	byConn map[string]user.ID
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[user.ID]map[string]struct{}),
		byConn: make(map[string]user.ID),
	}
}

// Register adds connID to uid's connections. A handle already registered to
// another user is moved.
func (r *Registry) Register(uid user.ID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byConn[connID]; ok && prev != uid {
		r.removeLocked(prev, connID)
	}

	conns, ok := r.byUser[uid]
	if !ok {
		conns = make(map[string]struct{})
		r.byUser[uid] = conns
	}
	conns[connID] = struct{}{}
	r.byConn[connID] = uid
}

// UnregisterConn removes one handle. Unknown handles are ignored.
func (r *Registry) UnregisterConn(connID string) (user.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uid, ok := r.byConn[connID]
	if !ok {
		return 0, false
	}

	r.removeLocked(uid, connID)
	return uid, true
}

// UnregisterUser drops every handle of uid and returns them.
func (r *Registry) UnregisterUser(uid user.ID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.byUser[uid]
	removed := make([]string, 0, len(conns))
	for connID := range conns {
		delete(r.byConn, connID)
		removed = append(removed, connID)
	}
	delete(r.byUser, uid)

	sort.Strings(removed)
	return removed
}

// Lookup returns uid's handles, sorted. The result is empty, never nil, when uid has none.
func (r *Registry) Lookup(uid user.ID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byUser[uid]
	out := make([]string, 0, len(conns))
	for connID := range conns {
		out = append(out, connID)
	}

	sort.Strings(out)
	return out
}

// UserOf returns the owner of connID.
func (r *Registry) UserOf(connID string) (user.ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uid, ok := r.byConn[connID]
	return uid, ok
}

// Users returns how many users currently have at least one connection.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byUser)
}

// removeLocked deletes one handle; r.mu must be held for writing.
func (r *Registry) removeLocked(uid user.ID, connID string) {
	delete(r.byConn, connID)

	conns, ok := r.byUser[uid]
	if !ok {
		return
	}

	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byUser, uid)
	}
}
