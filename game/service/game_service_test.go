package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/onestroke/game/engine"
	"github.com/wricardo/onestroke/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig, seed int64) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}
	sess, err := service.NewSession(id, config, seed)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = sess
	return sess, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	test := &engine.GameConfig{
		Name:        "test",
		Description: "Test configuration",
		Stages: []engine.StageEntry{
			{Stage: 1, Enemies: []engine.EnemyDescriptor{{MaxHP: 2, AttackPower: 1}}},
		},
	}
	test.ApplyDefaults()
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"default": engine.DefaultGameConfig(),
			"test":    test,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Stages:      len(config.Stages),
			PlayerMaxHP: config.PlayerMaxHP,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.configs[name] = config
	return nil
}

// enemyPath returns an L-shaped stroke from the player to the first enemy,
// walking the player's row then the enemy's column
func enemyPath(t *testing.T, state *engine.GameState) []engine.Position {
	t.Helper()
	enemies := state.Board.Enemies()
	if len(enemies) == 0 {
		t.Fatal("no enemies on board")
	}
	target := enemies[0].Position
	path := []engine.Position{state.Player.Position}
	cur := state.Player.Position
	for cur.X != target.X {
		cur.X += sign(target.X - cur.X)
		path = append(path, cur)
	}
	for cur.Y != target.Y {
		cur.Y += sign(target.Y - cur.Y)
		path = append(path, cur)
	}
	return path
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{name: "create with default config", configName: ""},
		{name: "create with specific config", configName: "test"},
		{name: "create with invalid config", configName: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName, 7)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if session == nil {
				t.Fatal("CreateSession() returned nil session")
			}
			if session.Seed != 7 {
				t.Errorf("Seed = %d, want 7", session.Seed)
			}
			if session.GameState.Stage != 1 || session.GameState.Phase != engine.PhasePathDrawing {
				t.Errorf("new session at stage %d phase %s", session.GameState.Stage, session.GameState.Phase)
			}
		})
	}
}

func TestGameService_CreateSessionListsAvailableConfigs(t *testing.T) {
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
	_, err := svc.CreateSession(context.Background(), "missing", 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "Available configs") {
		t.Errorf("error %q does not list available configs", got)
	}
}

func TestGameService_SubmitPath(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	svc := service.NewGameService(sessions, NewMockConfigManager())

	info, err := svc.CreateSession(ctx, "test", 42)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	t.Run("rejected path is not an error", func(t *testing.T) {
		res, err := svc.SubmitPath(ctx, info.ID, []engine.Position{{X: 3, Y: 3}})
		if err != nil {
			t.Fatalf("SubmitPath() error = %v", err)
		}
		if res.Accepted {
			t.Error("path not starting on the player was accepted")
		}
		if sessions.saves != 0 {
			t.Errorf("rejected path persisted the session %d times", sessions.saves)
		}
	})

	t.Run("stroke to the enemy clears the stage", func(t *testing.T) {
		path := enemyPath(t, info.GameState)
		res, err := svc.SubmitPath(ctx, info.ID, path)
		if err != nil {
			t.Fatalf("SubmitPath() error = %v", err)
		}
		if !res.Accepted {
			t.Fatalf("path rejected: %s", res.Reason)
		}
		if res.GameState == nil || res.Board == "" {
			t.Error("result missing state or board render")
		}
		if len(res.Events) == 0 {
			t.Error("expected events for an executed stroke")
		}
		if sessions.saves == 0 {
			t.Error("accepted stroke did not persist the session")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := svc.SubmitPath(ctx, "nope", nil); err == nil {
			t.Error("expected error for unknown session")
		}
	})
}

func TestGameService_ChooseReward(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	info, err := svc.CreateSession(ctx, "test", 3)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := svc.ChooseReward(ctx, info.ID, 0); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("ChooseReward() before clearing = %v, want ErrWrongPhase", err)
	}

	// test config enemies have 2 HP, so any stroke of length >= 2 ending on
	// the enemy wins
	res, err := svc.SubmitPath(ctx, info.ID, enemyPath(t, info.GameState))
	if err != nil || !res.Accepted {
		t.Fatalf("SubmitPath() = %+v, %v", res, err)
	}
	if !res.StageCleared {
		t.Skip("enemy survived the stroke")
	}
	if res.Phase != engine.PhaseRewardSelection {
		t.Fatalf("phase = %s, want reward selection", res.Phase)
	}

	reward, err := svc.ChooseReward(ctx, info.ID, 0)
	if err != nil {
		t.Fatalf("ChooseReward() error = %v", err)
	}
	if reward.Stage != 2 || reward.Phase != engine.PhasePathDrawing {
		t.Errorf("after reward stage=%d phase=%s", reward.Stage, reward.Phase)
	}
}

func TestGameService_GetTurnHistory(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	info, err := svc.CreateSession(ctx, "default", 11)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	for i := 0; i < 3; i++ {
		st, _ := svc.GetGameState(ctx, info.ID)
		if st.Phase != engine.PhasePathDrawing {
			break
		}
		if _, err := svc.SubmitPath(ctx, info.ID, enemyPath(t, st)); err != nil {
			t.Fatalf("SubmitPath() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		sessionID string
		opts      service.HistoryOptions
		wantErr   bool
	}{
		{name: "default options", sessionID: info.ID},
		{name: "with pagination", sessionID: info.ID, opts: service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"}},
		{name: "descending order", sessionID: info.ID, opts: service.HistoryOptions{Page: 1, Limit: 10, Order: "desc"}},
		{name: "invalid session", sessionID: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetTurnHistory(ctx, tt.sessionID, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetTurnHistory() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if result.Turns == nil {
				t.Error("GetTurnHistory() returned nil turns slice")
			}
			if len(result.Turns) > result.PageSize {
				t.Errorf("page holds %d turns, page size %d", len(result.Turns), result.PageSize)
			}
			if tt.opts.Order == "desc" && len(result.Turns) > 1 && result.Turns[0].Turn < result.Turns[1].Turn {
				t.Error("descending history is not most recent first")
			}
		})
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSession(ctx, "test", 0); err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
	}

	sessionList, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessionList) != 3 {
		t.Errorf("ListSessions() returned %d sessions, want 3", len(sessionList))
	}
}

func TestGameService_Restart(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	info, err := svc.CreateSession(ctx, "test", 5)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	before := info.GameState.RunID

	state, err := svc.Restart(ctx, info.ID)
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if state.RunID == before {
		t.Error("Restart() kept the old run id")
	}
	if state.Stage != 1 || state.Player.Position != (engine.Position{}) {
		t.Errorf("Restart() stage=%d pos=%s", state.Stage, state.Player.Position)
	}
}

func TestGameService_DescribeCell(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
	info, err := svc.CreateSession(ctx, "test", 9)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	cell, err := svc.DescribeCell(ctx, info.ID, engine.Position{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("DescribeCell() error = %v", err)
	}
	if !cell.IsPlayer {
		t.Error("origin should hold the player")
	}
	if _, err := svc.DescribeCell(ctx, info.ID, engine.Position{X: 9, Y: 0}); !errors.Is(err, engine.ErrInvalidPosition) {
		t.Errorf("DescribeCell() out of range = %v", err)
	}
}

func TestNewSession_EventsReachRecorderAndSubscribers(t *testing.T) {
	sess, err := service.NewSession("evt", engine.DefaultGameConfig(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.Events.Drain()) == 0 {
		t.Fatal("expected the opening events in the recorder")
	}

	var started []int
	unsub := sess.Dispatcher.Subscribe(engine.EventStageStarted, engine.SinkFunc(func(e engine.Event) {
		started = append(started, e.Stage)
	}))
	defer unsub()

	if _, err := sess.Engine.Restart(); err != nil {
		t.Fatal(err)
	}
	if len(started) != 1 {
		t.Errorf("expected one stage_started after restart, got %v", started)
	}
	if len(sess.Events.Drain()) == 0 {
		t.Error("recorder missed the restart events")
	}
}
