package http

import (
	"context"
	"testing"

	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/proto"
)

const testJWTSecret = "testsecret"

func startJWTTestServer(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	cfg.JWTSecret = testJWTSecret
	return startTestServer(t, cfg)
}

func TestWebSocketJWTSuccess(t *testing.T) {
	env := startJWTTestServer(t)
	ctx := testContext(t)

	token, err := env.auth.Register(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// The claimed name is ignored in favour of the token subject.
	conn := env.dial(t, ctx)
	sendHello(t, ctx, conn, proto.HelloData{User: "DEV", Token: token})
	readEvent(t, ctx, conn, proto.EventHistory)

	var roster proto.EventRosterData
	decode(t, readEvent(t, ctx, conn, proto.EventRoster).Data, &roster)
	if len(roster.Users) != 1 || roster.Users[0] != "alice" {
		t.Fatalf("unexpected roster: %+v", roster)
	}
}

func TestWebSocketJWTMissingToken(t *testing.T) {
	env := startJWTTestServer(t)
	ctx := testContext(t)

	conn := env.dial(t, ctx)
	sendHello(t, ctx, conn, proto.HelloData{User: "alice"})
	if e := readError(t, ctx, conn); e.Code != core.ErrCodeUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", e)
	}
}

func TestWebSocketJWTInvalidToken(t *testing.T) {
	env := startJWTTestServer(t)
	ctx := testContext(t)

	conn := env.dial(t, ctx)
	sendHello(t, ctx, conn, proto.HelloData{User: "alice", Token: "garbage"})
	if e := readError(t, ctx, conn); e.Code != core.ErrCodeUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", e)
	}
}
