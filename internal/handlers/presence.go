package handlers

import (
	"sort"
	"sync"

	"finderent-backend/internal/utils"
)

// EventSender is the minimal surface the relay needs from a websocket
// connection: the ability to push a JSON event.
type EventSender interface {
	WriteJSON(v interface{}) error
}

// Relay maps logical user ids to their active realtime connection for
// best-effort message push. It is process-local, volatile state, rebuilt
// from reconnections; nothing is persisted. Delivery is at-most-once: an
// event for an offline user is dropped.
//
// The relay is an explicit object constructed at server start and cleared
// at shutdown, so a shared backing store can replace it without touching
// call sites.
type Relay struct {
	mu    sync.RWMutex
	users map[string]string     // userID -> connID, first writer wins
	conns map[string]*relayConn // connID -> connection
}

// relayConn serializes writes to one connection. The websocket conn
// forbids concurrent writes, and Send and Broadcast only hold the relay's
// read lock, so the per-connection mutex is what keeps writers apart.
type relayConn struct {
	mu     sync.Mutex
	sender EventSender
}

func (c *relayConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sender.WriteJSON(v)
}

func NewRelay() *Relay {
	return &Relay{
		users: make(map[string]string),
		conns: make(map[string]*relayConn),
	}
}

// Register announces a user on a connection. A user already registered on
// another live connection keeps their first mapping.
func (r *Relay) Register(userID, connID string, conn EventSender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[connID] = &relayConn{sender: conn}
	if _, ok := r.users[userID]; !ok {
		r.users[userID] = connID
	}
}

// Unregister drops a connection and every user mapping pointing at it.
func (r *Relay) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, connID)
	for userID, cid := range r.users {
		if cid == connID {
			delete(r.users, userID)
		}
	}
}

// Send forwards a payload to the user's registered connection. Returns
// false when the user is offline; the event is dropped, not queued.
func (r *Relay) Send(userID string, payload interface{}) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.users[userID]
	if !ok {
		return false
	}
	conn, ok := r.conns[connID]
	if !ok {
		return false
	}
	if err := conn.writeJSON(payload); err != nil {
		utils.LogError(err, "Relay.Send")
		return false
	}
	return true
}

// Broadcast pushes a payload to every live connection.
func (r *Relay) Broadcast(payload interface{}) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, conn := range r.conns {
		utils.LogError(conn.writeJSON(payload), "Relay.Broadcast")
	}
}

// ActiveUsers returns a sorted snapshot of the online user ids.
func (r *Relay) ActiveUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.users))
	for userID := range r.users {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// IsOnline reports whether the user has a registered connection.
func (r *Relay) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]
	return ok
}

// Clear drops all state; called on shutdown.
func (r *Relay) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[string]string)
	r.conns = make(map[string]*relayConn)
}
