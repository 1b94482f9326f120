package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/onestroke/transport/mcp"
	"github.com/wricardo/onestroke/transport/websocket"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "One Stroke Server" {
		t.Errorf("Expected app name %q, got %q", "One Stroke Server", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	svcs, err := initializeServices("configs", t.TempDir())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svcs.game == nil || svcs.sessions == nil || svcs.persistence == nil {
		t.Fatalf("Expected all services to be initialized, got %+v", svcs)
	}

	configs, err := svcs.game.ListConfigs(context.Background())
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) == 0 {
		t.Error("Expected shipped configs to be listed")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path", t.TempDir()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestInitializeServices_ReloadsPersistedSessions(t *testing.T) {
	dir := t.TempDir()
	svcs, err := initializeServices("configs", dir)
	if err != nil {
		t.Fatal(err)
	}
	info, err := svcs.game.CreateSession(context.Background(), "tutorial", 3)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	again, err := initializeServices("configs", dir)
	if err != nil {
		t.Fatal(err)
	}
	if again.sessions.Count() != 1 {
		t.Fatalf("Expected 1 reloaded session, got %d", again.sessions.Count())
	}
	got, err := again.game.GetSession(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Seed != 3 {
		t.Errorf("Expected seed 3, got %d", got.Seed)
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *configDir == "" || *sessionsDir == "" {
		t.Error("Config and sessions directories should have default values")
	}
}

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("ONESTROKE_TEST_VALUE", "set")
	if got := getEnvDefault("ONESTROKE_TEST_VALUE", "def"); got != "set" {
		t.Errorf("Expected %q, got %q", "set", got)
	}
	if got := getEnvDefault("ONESTROKE_TEST_UNSET", "def"); got != "def" {
		t.Errorf("Expected %q, got %q", "def", got)
	}
}

func TestNewHandler(t *testing.T) {
	svcs, err := initializeServices("configs", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	ts := httptest.NewServer(newHandler(svcs.game, hub, mcp.NewClient("http://127.0.0.1:0")))
	defer ts.Close()

	t.Run("api health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("mcp rejects GET", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/mcp")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", resp.StatusCode)
		}
	})

	t.Run("mcp ping", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"ping"}`
		resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
	})
}

func TestPruneOrphanedSessions(t *testing.T) {
	svcs, err := initializeServices("configs", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	kept, err := svcs.game.CreateSession(ctx, "tutorial", 1)
	if err != nil {
		t.Fatal(err)
	}
	orphan, err := svcs.game.CreateSession(ctx, "tutorial", 2)
	if err != nil {
		t.Fatal(err)
	}

	if n := pruneOrphanedSessions(svcs.sessions, svcs.persistence); n != 0 {
		t.Fatalf("Expected nothing pruned, got %d", n)
	}

	if err := svcs.persistence.Delete(orphan.ID); err != nil {
		t.Fatal(err)
	}
	if n := pruneOrphanedSessions(svcs.sessions, svcs.persistence); n != 1 {
		t.Fatalf("Expected 1 pruned session, got %d", n)
	}
	if svcs.sessions.Count() != 1 {
		t.Errorf("Expected 1 session left, got %d", svcs.sessions.Count())
	}
	if _, err := svcs.sessions.Get(kept.ID); err != nil {
		t.Errorf("Expected kept session to remain: %v", err)
	}
}

func TestBackgroundRoutinesStopOnCancel(t *testing.T) {
	svcs, err := initializeServices("configs", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"cleanup", func(ctx context.Context) error {
			return sessionCleanupRoutine(ctx, svcs.sessions, time.Millisecond, time.Hour)
		}},
		{"sync", func(ctx context.Context) error {
			return filesystemSyncRoutine(ctx, svcs.sessions, svcs.persistence, time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- tt.run(ctx) }()

			time.Sleep(10 * time.Millisecond)
			cancel()

			select {
			case err := <-done:
				if err != nil {
					t.Errorf("Expected nil error, got %v", err)
				}
			case <-time.After(time.Second):
				t.Fatal("routine did not stop after cancel")
			}
		})
	}
}

func TestSessionCleanupRoutine_RemovesExpired(t *testing.T) {
	svcs, err := initializeServices("configs", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.game.CreateSession(context.Background(), "tutorial", 1); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// a negative max age expires every session on the first tick
	go sessionCleanupRoutine(ctx, svcs.sessions, time.Millisecond, -time.Hour)

	deadline := time.Now().Add(time.Second)
	for svcs.sessions.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected expired session to be removed, %d left", svcs.sessions.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
