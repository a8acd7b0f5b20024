package realtime

import (
	"sync"
	"testing"
)

// fakeSubscriber records received events.
type fakeSubscriber struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakeSubscriber) Send(evt Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return true
}

func (f *fakeSubscriber) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

func TestPrivateRoomSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"b", "a"},
		{"user-9", "user-10"},
		{"same", "same"},
	}
	for _, p := range pairs {
		if PrivateRoom(p[0], p[1]) != PrivateRoom(p[1], p[0]) {
			t.Errorf("PrivateRoom(%q,%q) not symmetric", p[0], p[1])
		}
	}
	if got := PrivateRoom("bob", "alice"); got != "private_alice_bob" {
		t.Errorf("PrivateRoom ordering = %q", got)
	}
}

func TestPublishToRoom(t *testing.T) {
	hub := NewHub()
	inRoom := &fakeSubscriber{}
	outside := &fakeSubscriber{}

	hub.Register(inRoom)
	hub.Register(outside)
	hub.Join(ChannelRoom("general"), inRoom)

	hub.Publish(EventNewMessage, map[string]string{"content": "Streife 3 meldet sich"}, ChannelRoom("general"))

	if inRoom.count(EventNewMessage) != 1 {
		t.Errorf("room member received %d events, want 1", inRoom.count(EventNewMessage))
	}
	if outside.count(EventNewMessage) != 0 {
		t.Errorf("non-member received %d events, want 0", outside.count(EventNewMessage))
	}
}

func TestPublishDedupesAcrossRooms(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}
	hub.Register(sub)
	hub.Join(PrivateRoom("a", "b"), sub)
	hub.Join(UserRoom("b"), sub)

	// Private messages go to both the pair room and the recipient's
	// personal room; a subscriber in both must still get one copy.
	hub.Publish(EventNewMessage, nil, PrivateRoom("a", "b"), UserRoom("b"))

	if got := sub.count(EventNewMessage); got != 1 {
		t.Errorf("subscriber in two target rooms received %d events, want 1", got)
	}
}

func TestPublishWithoutRoomsReachesAll(t *testing.T) {
	hub := NewHub()
	a, b := &fakeSubscriber{}, &fakeSubscriber{}
	hub.Register(a)
	hub.Register(b)

	hub.Publish(EventLocationUpdated, nil)

	if a.count(EventLocationUpdated) != 1 || b.count(EventLocationUpdated) != 1 {
		t.Errorf("broadcast counts = %d/%d, want 1/1", a.count(EventLocationUpdated), b.count(EventLocationUpdated))
	}
}

func TestUnregisterLeavesAllRooms(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}
	hub.Register(sub)
	hub.Join(ChannelRoom("general"), sub)
	hub.Join(UserRoom("u1"), sub)

	hub.Unregister(sub)

	hub.Publish(EventNewMessage, nil, ChannelRoom("general"), UserRoom("u1"))
	hub.Publish(EventLocationUpdated, nil)

	if len(sub.events) != 0 {
		t.Errorf("unregistered subscriber received %d events", len(sub.events))
	}
	if hub.RoomSize(ChannelRoom("general")) != 0 {
		t.Errorf("room not emptied on unregister")
	}
}

func TestConcurrentJoinPublish(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	subs := make([]*fakeSubscriber, 32)
	for i := range subs {
		subs[i] = &fakeSubscriber{}
		hub.Register(subs[i])
	}

	for i := range subs {
		wg.Add(2)
		go func(s *fakeSubscriber) {
			defer wg.Done()
			hub.Join(ChannelRoom("einsatz"), s)
		}(subs[i])
		go func() {
			defer wg.Done()
			hub.Publish(EventIncidentUpdated, nil, ChannelRoom("einsatz"))
		}()
	}
	wg.Wait()

	// Once everyone has joined, a publish reaches each member exactly once.
	for i := range subs {
		subs[i].mu.Lock()
		subs[i].events = nil
		subs[i].mu.Unlock()
	}
	hub.Publish(EventIncidentUpdated, nil, ChannelRoom("einsatz"))
	for i, s := range subs {
		if got := s.count(EventIncidentUpdated); got != 1 {
			t.Errorf("subscriber %d received %d events, want 1", i, got)
		}
	}
}
