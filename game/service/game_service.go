package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/onestroke/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, seed int64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SubmitPath(ctx context.Context, sessionID string, path []engine.Position) (*TurnResult, error)
	PreviewPath(ctx context.Context, sessionID string, path []engine.Position) (*engine.PathPreview, error)
	ChooseReward(ctx context.Context, sessionID string, index int) (*RewardResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*engine.CellInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session. Mu serializes every engine
// call for the session.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	Events         *engine.EventRecorder
	Dispatcher     *engine.Dispatcher
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Mu             sync.Mutex
}

// NewSession creates a session around a fresh engine for config
func NewSession(id string, config *engine.GameConfig, seed int64) (*Session, error) {
	rec := &engine.EventRecorder{}
	dispatcher := engine.NewDispatcher()
	dispatcher.Subscribe("", rec)
	dispatcher.Subscribe(engine.EventStageCleared, engine.SinkFunc(func(e engine.Event) {
		log.Debug("stage cleared", "session", id, "stage", e.Stage, "turn", e.Turn)
	}))
	dispatcher.Subscribe(engine.EventGameOver, engine.SinkFunc(func(e engine.Event) {
		log.Info("run over", "session", id, "stage", e.Stage, "turn", e.Turn)
	}))

	eng, err := engine.NewEngine(config, engine.WithSeed(seed), engine.WithEventSink(dispatcher))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		Events:         rec,
		Dispatcher:     dispatcher,
		CreatedAt:      now,
		LastAccessedAt: now,
	}, nil
}
