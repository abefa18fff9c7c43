package http

import (
	"testing"

	"github.com/coder/websocket"

	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/proto"
)

func TestProtocolVersionMismatch(t *testing.T) {
	env := startTestServer(t, testConfig())
	ctx := testContext(t)

	conn := env.dial(t, ctx)
	sendHello(t, ctx, conn, proto.HelloData{User: "alice", Protocol: proto.ProtocolVersion + 1})

	if e := readError(t, ctx, conn); e.Code != core.ErrCodeUnsupportedVersion {
		t.Fatalf("expected unsupported_version error, got %+v", e)
	}
	if status := expectClosed(t, ctx, conn); status != websocket.StatusPolicyViolation {
		t.Fatalf("expected policy violation close, got %v", status)
	}
}
