package core

import (
	"errors"
	"reflect"
	"testing"
)

type banSet map[string]bool

func (b banSet) IsBanned(username string) bool { return b[username] }

func TestPresenceRosterIsDistinct(t *testing.T) {
	p := NewPresence(nil)

	for _, c := range []*Client{
		NewClient("1", "alice", false, false),
		NewClient("2", "bob", false, false),
		NewClient("3", "alice", false, false),
	} {
		if err := p.Register(c); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	if got := p.RosterSnapshot(); !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Fatalf("unexpected roster: %v", got)
	}
	if n := len(p.ByName("alice")); n != 2 {
		t.Fatalf("expected 2 alice sessions, got %d", n)
	}

	// One alice session leaving keeps alice online.
	if !p.Unregister("1") {
		t.Fatalf("expected connection 1 to be removed")
	}
	if got := p.RosterSnapshot(); !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Fatalf("unexpected roster after partial leave: %v", got)
	}

	p.Unregister("3")
	if got := p.RosterSnapshot(); !reflect.DeepEqual(got, []string{"bob"}) {
		t.Fatalf("unexpected roster after alice left: %v", got)
	}
	if p.Unregister("3") {
		t.Fatalf("second unregister should report false")
	}
}

func TestPresenceRejectsBannedAndAnonymous(t *testing.T) {
	p := NewPresence(banSet{"eve": true})

	if err := p.Register(NewClient("1", "eve", false, false)); !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
	if err := p.Register(NewClient("2", "", false, false)); !errors.Is(err, ErrEmptyUsername) {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}
	if p.Len() != 0 {
		t.Fatalf("expected no registrations, got %d", p.Len())
	}
}

func TestPresenceObservers(t *testing.T) {
	p := NewPresence(nil)
	_ = p.Register(NewClient("1", "DEV", true, false))
	_ = p.Register(NewClient("2", "watcher", false, true))
	_ = p.Register(NewClient("3", "alice", false, false))

	obs := p.Observers()
	if len(obs) != 2 {
		t.Fatalf("expected 2 observers, got %d", len(obs))
	}
	for _, c := range obs {
		if c.Name == "alice" {
			t.Fatalf("alice is not an observer")
		}
	}
}
