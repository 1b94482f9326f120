package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/onestroke/game/engine"
)

func createTestConfig() *engine.GameConfig {
	config := &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Stages: []engine.StageEntry{
			{Stage: 1, Enemies: []engine.EnemyDescriptor{{MaxHP: 30, AttackPower: 1}}},
		},
	}
	config.ApplyDefaults()
	return config
}

// strokeTo returns an L-shaped stroke from the player to the first enemy
func strokeTo(state *engine.GameState) []engine.Position {
	target := state.Board.Enemies()[0].Position
	cur := state.Player.Position
	path := []engine.Position{cur}
	step := func(v, to int) int {
		if to < v {
			return v - 1
		}
		return v + 1
	}
	for cur.X != target.X {
		cur.X = step(cur.X, target.X)
		path = append(path, cur)
	}
	for cur.Y != target.Y {
		cur.Y = step(cur.Y, target.Y)
		path = append(path, cur)
	}
	return path
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", config, 1)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Engine == nil || session.Events == nil {
			t.Error("Expected engine and event recorder to be initialized")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", config, 0)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", config, 0)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", config, 0)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("path-like ID rejected", func(t *testing.T) {
		_, err := manager.Create("../etc", config, 0)
		if err != ErrInvalidSessionID {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Name = ""
		if _, err := manager.Create("invalid-test", invalidConfig, 0); err == nil {
			t.Error("Expected error for invalid config")
		}
	})
}

func TestManager_SeedIsReproducible(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	a, err := manager.Create("seed-a", config, 99)
	if err != nil {
		t.Fatal(err)
	}
	b, err := manager.Create("seed-b", config, 99)
	if err != nil {
		t.Fatal(err)
	}
	ra := engine.RenderBoard(a.Engine.GetState())
	rb := engine.RenderBoard(b.Engine.GetState())
	if ra != rb {
		t.Errorf("same seed produced different boards:\n%s\n%s", ra, rb)
	}
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("get-test", createTestConfig(), 0)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "get existing session", id: "get-test"},
		{name: "case-insensitive get", id: "GET-TEST"},
		{name: "get non-existent session", id: "non-existent", wantErr: ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := manager.Get(tt.id)
			if err != tt.wantErr {
				t.Fatalf("Get(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			}
			if err == nil && session != created {
				t.Error("Expected the created session")
			}
		})
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("new-session", config, 0)
	if err != nil {
		t.Fatalf("Failed to get or create session: %v", err)
	}
	second, err := manager.GetOrCreate("new-session", config, 0)
	if err != nil {
		t.Fatalf("Failed to get existing session: %v", err)
	}
	if first != second {
		t.Error("Expected the same session on the second call")
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()
	manager.Create("delete-test", config, 0)

	t.Run("delete existing session", func(t *testing.T) {
		if err := manager.Delete("delete-test"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if _, err := manager.Get("delete-test"); err != ErrSessionNotFound {
			t.Error("Expected session to be deleted")
		}
	})

	t.Run("delete non-existent session", func(t *testing.T) {
		if err := manager.Delete("non-existent"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("case-insensitive delete", func(t *testing.T) {
		manager.Create("case-test", config, 0)
		if err := manager.Delete("CASE-TEST"); err != nil {
			t.Fatalf("Failed to delete with different case: %v", err)
		}
		if _, err := manager.Get("case-test"); err != ErrSessionNotFound {
			t.Error("Expected session to be deleted regardless of case")
		}
	})
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	want := map[string]bool{"list-1": true, "list-2": true, "list-3": true}
	for id := range want {
		if _, err := manager.Create(id, config, 0); err != nil {
			t.Fatal(err)
		}
	}

	sessions := manager.List()
	if len(sessions) != len(want) {
		t.Errorf("Expected %d sessions, got %d", len(want), len(sessions))
	}
	for _, s := range sessions {
		if !want[s.ID] {
			t.Errorf("unexpected session %s in list", s.ID)
		}
	}
	if manager.Count() != len(want) {
		t.Errorf("Count() = %d", manager.Count())
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	active, _ := manager.Create("active", config, 0)
	expired, _ := manager.Create("expired", config, 0)

	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	if deleted := manager.CleanupExpiredSessions(1 * time.Hour); deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}
	if _, err := manager.Get("expired"); err != ErrSessionNotFound {
		t.Error("Expected expired session to be deleted")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("access-test", createTestConfig(), 0)
	originalTime := session.LastAccessedAt

	time.Sleep(10 * time.Millisecond)

	if err := manager.UpdateLastAccessed("access-test"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	updated, _ := manager.Get("access-test")
	if !updated.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}
	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("UpdateLastAccessed(missing) = %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := manager.Create(fmt.Sprintf("c-%d", id%20), config, int64(id))
			if err != nil && err != ErrSessionAlreadyExists {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if got := manager.Count(); got != 20 {
		t.Errorf("Expected 20 distinct sessions, got %d", got)
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", config, 5)
	session2, _ := manager.Create("iso-2", config, 5)

	res, err := session1.Engine.SubmitPath(strokeTo(session1.Engine.GetState()))
	if err != nil || !res.Accepted {
		t.Fatalf("SubmitPath() = %+v, %v", res, err)
	}

	if session2.Engine.GetState().Turn != 0 {
		t.Error("Session 2 should not be affected by session 1 strokes")
	}
	if session1.Engine.GetState().Turn != 1 {
		t.Errorf("Session 1 turn = %d, want 1", session1.Engine.GetState().Turn)
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config, 0)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %d", len(session.ID))
		}
	}
}
