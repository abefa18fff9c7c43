package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/lobbychat/internal/store/memory"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// drain empties the client's queue. Hub delivery is synchronous, so every
// event produced by a finished call is already queued.
func drain(c *Client) []*Event {
	var out []*Event
	for {
		select {
		case ev := <-c.Events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func ofKind(evs []*Event, kind EventKind) []*Event {
	var out []*Event
	for _, ev := range evs {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestHub(t *testing.T) (*Hub, *fakeClock, *memory.MessageStore) {
	t.Helper()
	clock := newFakeClock()
	history := memory.New(200)
	return NewHub(history, Options{Now: clock.Now}), clock, history
}

func join(t *testing.T, h *Hub, id, name string, admin bool) *Client {
	t.Helper()
	c := NewClient(id, name, admin, false)
	if err := h.Register(context.Background(), c); err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return c
}

func drainAll(clients ...*Client) {
	for _, c := range clients {
		drain(c)
	}
}
