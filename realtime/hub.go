package realtime

import (
	"log"
	"sync"
)

// Subscriber is a live connection able to receive events. Send must not
// block; implementations drop the event (returning false) when the
// subscriber cannot keep up.
type Subscriber interface {
	Send(evt Event) bool
}

// Hub fans domain events out to subscribed connections, grouped by room.
// Membership changes and emission are serialized under one mutex, so a
// single Publish delivers to each current subscriber exactly once: a
// connection joining concurrently either sees the whole event or none of it.
//
// Delivery is at-most-once and best-effort. Nothing is acknowledged,
// retried, or replayed; a client that reconnects re-fetches state over REST.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[Subscriber]struct{}
	all   map[Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[Subscriber]struct{}),
		all:   make(map[Subscriber]struct{}),
	}
}

// Register adds a connection to the hub's global set. Events published
// without target rooms reach every registered connection.
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all[s] = struct{}{}
}

// Unregister removes a connection from the global set and every room.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.all, s)
	for room, members := range h.rooms {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Join adds a connection to a room.
func (h *Hub) Join(room string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[Subscriber]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
}

// Leave removes a connection from a room.
func (h *Hub) Leave(room string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish delivers an event to every subscriber of the named rooms, or to
// every registered connection when no room is named. A subscriber present
// in several of the target rooms receives the event once.
func (h *Hub) Publish(event string, payload any, rooms ...string) {
	evt := Event{Name: event, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(rooms) == 0 {
		for s := range h.all {
			if !s.Send(evt) {
				log.Printf("⚠️  Dropped %s event for slow subscriber", event)
			}
		}
		return
	}

	seen := make(map[Subscriber]struct{})
	for _, room := range rooms {
		for s := range h.rooms[room] {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			if !s.Send(evt) {
				log.Printf("⚠️  Dropped %s event for slow subscriber in %s", event, room)
			}
		}
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
