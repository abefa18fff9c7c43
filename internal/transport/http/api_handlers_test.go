package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"testing"
)

func decodeBody(t *testing.T, resp *stdhttp.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := startJWTTestServer(t)

	resp := env.doJSON(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	var reg AuthResponse
	decodeBody(t, resp, &reg)
	if reg.Token == "" {
		t.Fatalf("expected token")
	}

	resp = env.doJSON(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("duplicate register status: %d", resp.StatusCode)
	}

	resp = env.doJSON(t, stdhttp.MethodPost, "/api/login", "", LoginRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}

	resp = env.doJSON(t, stdhttp.MethodPost, "/api/login", "", LoginRequest{Username: "alice", Password: "nope-nope"})
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("bad password status: %d", resp.StatusCode)
	}
}

func TestLoginRefusedForBannedUser(t *testing.T) {
	env := startJWTTestServer(t)

	resp := env.doJSON(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{Username: "mallory", Password: "password123"})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}

	env.hub.Ban(context.Background(), "DEV", "mallory")

	resp = env.doJSON(t, stdhttp.MethodPost, "/api/login", "", LoginRequest{Username: "mallory", Password: "password123"})
	if resp.StatusCode != stdhttp.StatusForbidden {
		t.Fatalf("expected 403 for banned login, got %d", resp.StatusCode)
	}
}

func TestRegisterDisabledWithoutSecret(t *testing.T) {
	env := startTestServer(t, testConfig())

	resp := env.doJSON(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{Username: "alice", Password: "password123"})
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 when auth is disabled, got %d", resp.StatusCode)
	}
}
