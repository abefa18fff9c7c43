package core

import "testing"

func TestWhisperReplyRoundTrip(t *testing.T) {
	w := NewWhispers()

	if _, ok := w.ResolveReply("bob"); ok {
		t.Fatalf("expected no reply target before any whisper")
	}

	w.RecordWhisper("alice", "bob")
	if got, ok := w.ResolveReply("bob"); !ok || got != "alice" {
		t.Fatalf("expected bob to reply to alice, got %q ok=%v", got, ok)
	}
	if _, ok := w.ResolveReply("alice"); ok {
		t.Fatalf("alice has not been whispered")
	}

	w.RecordWhisper("carol", "bob")
	if got, _ := w.ResolveReply("bob"); got != "carol" {
		t.Fatalf("expected last whisperer to win, got %q", got)
	}
}
