package presence

import (
	"sync"
	"testing"
	"time"

	"stadtwache/realtime"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, payload any, rooms ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) count(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == event {
			n++
		}
	}
	return n
}

func newTestTracker(threshold time.Duration) (*Tracker, *recordingPublisher, *time.Time) {
	pub := &recordingPublisher{}
	tr := NewTracker(threshold, pub)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return clock }
	return tr, pub, &clock
}

func TestMarkOnlineEmitsOnce(t *testing.T) {
	tr, pub, _ := newTestTracker(0)
	tr.MarkOnline("u1", "wache1")

	if got := pub.count(realtime.EventUserOnline); got != 1 {
		t.Errorf("user_online events = %d, want 1", got)
	}
	if online := tr.ListOnline(); len(online) != 1 || online[0].UserID != "u1" {
		t.Errorf("online list = %+v", online)
	}
}

func TestHeartbeatIsSilent(t *testing.T) {
	tr, pub, _ := newTestTracker(0)

	// Heartbeat for an unknown user creates the entry without announcing.
	tr.Heartbeat("u1", "wache1")
	tr.Heartbeat("u1", "wache1")

	if got := pub.count(realtime.EventUserOnline); got != 0 {
		t.Errorf("heartbeat emitted %d user_online events, want 0", got)
	}
	if online := tr.ListOnline(); len(online) != 1 {
		t.Errorf("online list length = %d, want 1", len(online))
	}
}

func TestHeartbeatKeepsUserOnline(t *testing.T) {
	tr, pub, clock := newTestTracker(2 * time.Minute)
	tr.MarkOnline("u1", "wache1")

	*clock = clock.Add(90 * time.Second)
	tr.Heartbeat("u1", "wache1")

	*clock = clock.Add(90 * time.Second)
	if online := tr.ListOnline(); len(online) != 1 {
		t.Fatalf("user pruned despite heartbeat, online = %+v", online)
	}
	if got := pub.count(realtime.EventUserOffline); got != 0 {
		t.Errorf("user_offline events = %d, want 0", got)
	}
}

func TestListOnlinePrunesStaleExactlyOnce(t *testing.T) {
	tr, pub, clock := newTestTracker(2 * time.Minute)
	tr.MarkOnline("u1", "wache1")
	tr.MarkOnline("u2", "wache2")

	*clock = clock.Add(2*time.Minute + time.Second)
	tr.Heartbeat("u2", "wache2")

	online := tr.ListOnline()
	if len(online) != 1 || online[0].UserID != "u2" {
		t.Errorf("online list = %+v, want only u2", online)
	}
	if got := pub.count(realtime.EventUserOffline); got != 1 {
		t.Errorf("user_offline events = %d, want exactly 1", got)
	}

	// The stale entry is gone; a second sweep must not re-announce.
	tr.ListOnline()
	if got := pub.count(realtime.EventUserOffline); got != 1 {
		t.Errorf("user_offline events after second sweep = %d, want 1", got)
	}
}

func TestMarkOffline(t *testing.T) {
	tr, pub, _ := newTestTracker(0)
	tr.MarkOnline("u1", "wache1")
	tr.MarkOffline("u1")

	if got := pub.count(realtime.EventUserOffline); got != 1 {
		t.Errorf("user_offline events = %d, want 1", got)
	}
	if online := tr.ListOnline(); len(online) != 0 {
		t.Errorf("online list = %+v, want empty", online)
	}
}

func TestBindUnbindConnection(t *testing.T) {
	tr, _, _ := newTestTracker(0)
	tr.MarkOnline("u1", "wache1")
	tr.BindConnection("u1", "conn-7")

	tr.mu.Lock()
	if tr.users["u1"].connID != "conn-7" {
		t.Errorf("connID = %q, want conn-7", tr.users["u1"].connID)
	}
	tr.mu.Unlock()

	tr.UnbindConnection("conn-7")

	tr.mu.Lock()
	if tr.users["u1"].connID != "" {
		t.Errorf("connID = %q after unbind, want empty", tr.users["u1"].connID)
	}
	tr.mu.Unlock()
}

func TestConcurrentAccess(t *testing.T) {
	tr, _, _ := newTestTracker(2 * time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); tr.MarkOnline("u1", "wache1") }()
		go func() { defer wg.Done(); tr.Heartbeat("u2", "wache2") }()
		go func() { defer wg.Done(); tr.ListOnline() }()
	}
	wg.Wait()

	if online := tr.ListOnline(); len(online) != 2 {
		t.Errorf("online list length = %d, want 2", len(online))
	}
}
