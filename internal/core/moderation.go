package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMuteDuration applies when a mute command carries no duration.
const DefaultMuteDuration = 60 * time.Second

// BanRecord is a permanent ban of a username.
type BanRecord struct {
	Username  string
	Token     string
	BannedBy  string
	CreatedAt time.Time
}

// Moderation tracks mutes and bans independently of connection lifecycle.
type Moderation struct {
	mu          sync.Mutex
	mutes       map[string]time.Time // username -> expiry
	bans        map[string]BanRecord
	now         func() time.Time
	defaultMute time.Duration
}

// NewModeration creates empty moderation state. A nil clock uses time.Now.
func NewModeration(now func() time.Time, defaultMute time.Duration) *Moderation {
	if now == nil {
		now = time.Now
	}
	if defaultMute <= 0 {
		defaultMute = DefaultMuteDuration
	}
	return &Moderation{
		mutes:       make(map[string]time.Time),
		bans:        make(map[string]BanRecord),
		now:         now,
		defaultMute: defaultMute,
	}
}

// Mute silences username until now+d. A non-positive d uses the default
// duration. The last call wins. It returns the applied duration.
func (m *Moderation) Mute(username string, d time.Duration) time.Duration {
	if d <= 0 {
		d = m.defaultMute
	}
	m.mu.Lock()
	m.mutes[username] = m.now().Add(d)
	m.mu.Unlock()
	return d
}

// IsMuted reports whether username has a live mute. Expired records are
// purged on lookup.
func (m *Moderation) IsMuted(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.mutes[username]
	if !ok {
		return false
	}
	if !m.now().Before(expiry) {
		delete(m.mutes, username)
		return false
	}
	return true
}

// MuteExpiry returns the expiry of a live mute.
func (m *Moderation) MuteExpiry(username string) (time.Time, bool) {
	if !m.IsMuted(username) {
		return time.Time{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.mutes[username]
	return expiry, ok
}

// Ban records a permanent ban and returns it. Banning an already banned user
// returns the existing record.
func (m *Moderation) Ban(username, by string) BanRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.bans[username]; ok {
		return rec
	}
	now := m.now()
	rec := BanRecord{
		Username:  username,
		Token:     banToken(username, now),
		BannedBy:  by,
		CreatedAt: now,
	}
	m.bans[username] = rec
	return rec
}

// IsBanned reports whether username carries a ban record.
func (m *Moderation) IsBanned(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.bans[username]
	return ok
}

// Bans returns all ban records ordered by creation time.
func (m *Moderation) Bans() []BanRecord {
	m.mu.Lock()
	out := make([]BanRecord, 0, len(m.bans))
	for _, rec := range m.bans {
		out = append(out, rec)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// banToken derives a unique revocation token from the username and ban time.
func banToken(username string, at time.Time) string {
	return fmt.Sprintf("%s-%d-%s", username, at.UnixMilli(), uuid.NewString()[:8])
}
