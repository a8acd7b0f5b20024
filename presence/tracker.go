// Package presence tracks which users are currently active. Tracking is
// in-memory and process-local: a restart forgets everyone, which is
// acceptable because presence is advisory, never authoritative.
package presence

import (
	"sync"
	"time"

	"stadtwache/realtime"
)

// DefaultOfflineThreshold is how long a user may stay silent before the
// next sweep considers them offline.
const DefaultOfflineThreshold = 2 * time.Minute

// Publisher receives the online/offline transitions the tracker emits.
type Publisher interface {
	Publish(event string, payload any, rooms ...string)
}

type entry struct {
	username string
	lastSeen time.Time
	connID   string
}

// OnlineUser is one row of the online list.
type OnlineUser struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	LastSeen   time.Time `json:"last_seen"`
	MinutesAgo int       `json:"minutes_ago"`
}

// Tracker is the process-wide presence map. All access goes through its
// methods; the map is never iterated from outside.
type Tracker struct {
	mu        sync.Mutex
	users     map[string]*entry
	threshold time.Duration
	publisher Publisher
	now       func() time.Time
}

// NewTracker creates a tracker using the given offline threshold;
// a zero threshold selects the default.
func NewTracker(threshold time.Duration, publisher Publisher) *Tracker {
	if threshold <= 0 {
		threshold = DefaultOfflineThreshold
	}
	return &Tracker{
		users:     make(map[string]*entry),
		threshold: threshold,
		publisher: publisher,
		now:       time.Now,
	}
}

// MarkOnline records the user as active and announces the transition.
func (t *Tracker) MarkOnline(userID, username string) {
	now := t.now().UTC()

	t.mu.Lock()
	t.users[userID] = &entry{username: username, lastSeen: now}
	t.mu.Unlock()

	t.publisher.Publish(realtime.EventUserOnline, map[string]any{
		"user_id":   userID,
		"username":  username,
		"timestamp": now,
	})
}

// Heartbeat refreshes the user's last-seen timestamp. A heartbeat for an
// unknown user creates the entry silently: heartbeats are idempotent and
// never announce user_online a second time.
func (t *Tracker) Heartbeat(userID, username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.users[userID]; ok {
		e.lastSeen = t.now().UTC()
		return
	}
	t.users[userID] = &entry{username: username, lastSeen: t.now().UTC()}
}

// BindConnection attaches a live connection id to the user's entry so
// targeted pushes can be routed. No-op for unknown users.
func (t *Tracker) BindConnection(userID, connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.users[userID]; ok {
		e.connID = connID
	}
}

// UnbindConnection clears the connection id from whichever user holds it.
func (t *Tracker) UnbindConnection(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.users {
		if e.connID == connID {
			e.connID = ""
		}
	}
}

// ListOnline returns every user seen within the offline threshold. As a
// side effect it prunes stale entries, emitting exactly one user_offline
// per pruned user — callers must expect the sweep, not just the result.
func (t *Tracker) ListOnline() []OnlineUser {
	now := t.now().UTC()

	t.mu.Lock()
	var online []OnlineUser
	var pruned []string
	for userID, e := range t.users {
		age := now.Sub(e.lastSeen)
		if age <= t.threshold {
			online = append(online, OnlineUser{
				UserID:     userID,
				Username:   e.username,
				LastSeen:   e.lastSeen,
				MinutesAgo: int(age.Minutes()),
			})
			continue
		}
		pruned = append(pruned, userID)
	}
	for _, userID := range pruned {
		delete(t.users, userID)
	}
	t.mu.Unlock()

	for _, userID := range pruned {
		t.publisher.Publish(realtime.EventUserOffline, map[string]string{"user_id": userID})
	}
	return online
}

// MarkOffline removes the user explicitly (logout) and announces it.
// Unknown users still get the announcement so clients converge.
func (t *Tracker) MarkOffline(userID string) {
	t.mu.Lock()
	delete(t.users, userID)
	t.mu.Unlock()

	t.publisher.Publish(realtime.EventUserOffline, map[string]string{"user_id": userID})
}
