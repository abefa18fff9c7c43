package core

import "sync"

// Whispers remembers, per recipient, who whispered them last.
type Whispers struct {
	mu   sync.RWMutex
	last map[string]string // recipient -> last sender
}

// NewWhispers creates an empty directory.
func NewWhispers() *Whispers {
	return &Whispers{last: make(map[string]string)}
}

// RecordWhisper notes that from whispered to.
func (w *Whispers) RecordWhisper(from, to string) {
	w.mu.Lock()
	w.last[to] = from
	w.mu.Unlock()
}

// ResolveReply returns the user a /reply from sender should reach.
func (w *Whispers) ResolveReply(sender string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	target, ok := w.last[sender]
	return target, ok
}
