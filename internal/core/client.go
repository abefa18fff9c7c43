package core

import "sync"

// eventBuffer bounds the per-client outbound queue.
const eventBuffer = 64

// Client is one live connection as seen by the core layer.
type Client struct {
	ID       string
	Name     string
	Admin    bool
	Observer bool
	Events   chan *Event

	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex // serialises Deliver against Kick
	reason    string
}

// NewClient constructs a client with initialized channels. Administrators
// are always observers.
func NewClient(id, name string, admin, observer bool) *Client {
	return &Client{
		ID:       id,
		Name:     name,
		Admin:    admin,
		Observer: observer || admin,
		Events:   make(chan *Event, eventBuffer),
		done:     make(chan struct{}),
	}
}

// Deliver queues an event without blocking. It reports false when the client
// is closed or its queue is full.
func (c *Client) Deliver(ev *Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Closed() {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

// Kick marks the client closed and queues a forced-disconnect event as the
// last event it will ever receive. When the queue is full the oldest queued
// events are discarded to make room. It reports whether this call closed the
// client.
func (c *Client) Kick(reason string) bool {
	kicked := false
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.reason = reason
		close(c.done)

		ev := &Event{Kind: EventForcedDisconnect, Text: reason}
		for {
			select {
			case c.Events <- ev:
				kicked = true
				return
			default:
			}
			select {
			case <-c.Events:
			default:
			}
		}
	})
	return kicked
}

// Done is closed once the client has been forcibly disconnected.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Closed reports whether the client has been forcibly disconnected.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// CloseReason returns the reason passed to Kick.
func (c *Client) CloseReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}
