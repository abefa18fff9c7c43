package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/vovakirdan/lobbychat/internal/store"
)

func TestRecentMessagesReturnsNewestOldestFirst(t *testing.T) {
	s := New(100)
	ctx := context.Background()

	for i := range 120 {
		if err := s.SaveMessage(ctx, &store.Message{Sender: "alice", Body: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := s.RecentMessages(ctx, 50)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 50 {
		t.Fatalf("expected 50 messages, got %d", len(got))
	}
	if got[0].Body != "m70" || got[49].Body != "m119" {
		t.Fatalf("unexpected window: first=%s last=%s", got[0].Body, got[49].Body)
	}

	// Stable across repeated reads.
	again, _ := s.RecentMessages(ctx, 50)
	for i := range got {
		if got[i].ID != again[i].ID {
			t.Fatalf("repeated read differs at %d: %d vs %d", i, got[i].ID, again[i].ID)
		}
	}
}

func TestRecentMessagesBeforeFull(t *testing.T) {
	s := New(10)
	ctx := context.Background()

	got, err := s.RecentMessages(ctx, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}

	for i := range 3 {
		_ = s.SaveMessage(ctx, &store.Message{Sender: "bob", Body: fmt.Sprintf("m%d", i)})
	}
	got, _ = s.RecentMessages(ctx, 5)
	if len(got) != 3 || got[0].Body != "m0" || got[2].Body != "m2" {
		t.Fatalf("unexpected history: %+v", got)
	}
	if got[0].ID != 1 || got[2].ID != 3 {
		t.Fatalf("unexpected ids: %d..%d", got[0].ID, got[2].ID)
	}
}
