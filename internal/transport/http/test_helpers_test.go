package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/auth"
	"github.com/vovakirdan/lobbychat/internal/config"
	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/proto"
	"github.com/vovakirdan/lobbychat/internal/store/memory"
	"github.com/vovakirdan/lobbychat/internal/store/sqlite"
)

type testEnv struct {
	ts   *httptest.Server
	hub  *core.Hub
	auth *auth.Service
	cfg  *config.Config
}

// testConfig returns a config with trusted hello names and DEV as admin.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.JWTSecret = ""
	cfg.JWTIssuer = "test"
	cfg.JWTAudience = "test"
	cfg.Observers = []string{"watcher"}
	return cfg
}

func startTestServer(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	disabledLogger := zerolog.Nop()
	hub := core.NewHub(memory.New(100), core.Options{
		HistoryLimit: cfg.HistoryLimit,
		DefaultMute:  cfg.DefaultMute,
		NotifyMuted:  cfg.NotifyMuted,
		Audit:        st,
		Logger:       &disabledLogger,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      time.Hour,
	}
	authService := auth.NewService(st, jwtConfig, &cfg, hub)

	server := NewServer(hub, authService, st, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, hub: hub, auth: authService, cfg: &cfg}
}

// testOutbound mirrors proto.Outbound with raw data for decoding.
type testOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func (e *testEnv) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

// connect dials, says hello and waits for the initial history event.
func (e *testEnv) connect(t *testing.T, ctx context.Context, user, token string) *websocket.Conn {
	t.Helper()
	conn := e.dial(t, ctx)
	sendHello(t, ctx, conn, proto.HelloData{User: user, Token: token})
	readEvent(t, ctx, conn, proto.EventHistory)
	waitRoster(t, ctx, conn, user)
	return conn
}

func sendHello(t *testing.T, ctx context.Context, conn *websocket.Conn, hello proto.HelloData) {
	t.Helper()
	payload, _ := json.Marshal(hello)
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeHello, Data: payload}); err != nil {
		t.Fatalf("send hello: %v", err)
	}
}

func sendMsg(t *testing.T, ctx context.Context, conn *websocket.Conn, text string) {
	t.Helper()
	payload, _ := json.Marshal(proto.MsgData{Text: text})
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeMsg, Data: payload}); err != nil {
		t.Fatalf("send msg: %v", err)
	}
}

func readOutbound(t *testing.T, ctx context.Context, conn *websocket.Conn) testOutbound {
	t.Helper()
	var out testOutbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return out
}

// readEvent skips outbound frames until the named event arrives.
func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, name string) testOutbound {
	t.Helper()
	for {
		out := readOutbound(t, ctx, conn)
		if out.Type == proto.OutboundTypeEvent && out.Event == name {
			return out
		}
	}
}

// readError skips outbound frames until an error arrives.
func readError(t *testing.T, ctx context.Context, conn *websocket.Conn) *proto.Error {
	t.Helper()
	for {
		out := readOutbound(t, ctx, conn)
		if out.Type == proto.OutboundTypeError {
			if out.Error == nil {
				t.Fatalf("error frame without body")
			}
			return out.Error
		}
	}
}

// waitRoster reads roster events until one lists every user in want.
func waitRoster(t *testing.T, ctx context.Context, conn *websocket.Conn, want ...string) {
	t.Helper()
	for {
		var roster proto.EventRosterData
		decode(t, readEvent(t, ctx, conn, proto.EventRoster).Data, &roster)
		if containsAll(roster.Users, want) {
			return
		}
	}
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, u := range have {
		set[u] = struct{}{}
	}
	for _, u := range want {
		if _, ok := set[u]; !ok {
			return false
		}
	}
	return true
}

func decode(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

// expectClosed reads until the connection closes and returns its status.
func expectClosed(t *testing.T, ctx context.Context, conn *websocket.Conn) websocket.StatusCode {
	t.Helper()
	for {
		var out testOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return websocket.CloseStatus(err)
		}
	}
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *stdhttp.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := stdhttp.NewRequest(method, e.ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
