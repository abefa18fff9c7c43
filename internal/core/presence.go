package core

import (
	"sort"
	"sync"
)

// BanChecker reports whether a username carries a ban record.
type BanChecker interface {
	IsBanned(username string) bool
}

// Presence tracks live connections and the usernames bound to them.
type Presence struct {
	mu      sync.RWMutex
	clients map[string]*Client // connection id -> client
	bans    BanChecker
}

// NewPresence creates an empty registry that refuses banned usernames.
func NewPresence(bans BanChecker) *Presence {
	return &Presence{
		clients: make(map[string]*Client),
		bans:    bans,
	}
}

// Register binds the client's username to its connection. The ban check and
// the insert happen under one lock so a concurrent ban either rejects the
// registration or finds the connection afterwards.
func (p *Presence) Register(c *Client) error {
	if c.Name == "" {
		return ErrEmptyUsername
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bans != nil && p.bans.IsBanned(c.Name) {
		return ErrBanned
	}
	p.clients[c.ID] = c
	return nil
}

// Unregister removes the binding for one connection. It reports whether the
// connection was registered.
func (p *Presence) Unregister(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.clients[id]; !ok {
		return false
	}
	delete(p.clients, id)
	return true
}

// RosterSnapshot returns the distinct online usernames in sorted order.
func (p *Presence) RosterSnapshot() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	seen := make(map[string]struct{}, len(p.clients))
	users := make([]string, 0, len(p.clients))
	for _, c := range p.clients {
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		users = append(users, c.Name)
	}
	sort.Strings(users)
	return users
}

// ByName returns every connection bound to username.
func (p *Presence) ByName(username string) []*Client {
	return p.filter(func(c *Client) bool { return c.Name == username })
}

// Observers returns every observer-flagged connection.
func (p *Presence) Observers() []*Client {
	return p.filter(func(c *Client) bool { return c.Observer })
}

// All returns every registered connection.
func (p *Presence) All() []*Client {
	return p.filter(func(*Client) bool { return true })
}

// Len returns the number of registered connections.
func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}

func (p *Presence) filter(keep func(*Client) bool) []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Client, 0, len(p.clients))
	for _, c := range p.clients {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
