package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15/v3"

	"github.com/wricardo/onestroke/game/engine"
)

var log = log15.New("module", "service")

// ErrSessionNotFound wraps any failure to resolve a session id
var ErrSessionNotFound = errors.New("session not found")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// sessionInfo snapshots a session. The caller holds sess.Mu.
func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	state := sess.Engine.GetState().Clone()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		Seed:           state.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      state,
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session. A zero seed picks one from the clock.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed int64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	// the opening stage_started event is not interesting to callers
	sess.Events.Drain()

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Mu.Lock()
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
		sess.Mu.Unlock()
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return nil
}

// withSession looks up a session and runs fn while holding its lock. Anything
// fn hands back to callers must be a copy: the engine keeps mutating its
// state once the lock is released.
func (s *gameServiceImpl) withSession(sessionID string, fn func(sess *Session) error) error {
	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	return fn(sess)
}

func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn("failed to persist session", "session", sessionID, "op", op, "err", err)
	}
}

// SubmitPath executes a stroke for a session
func (s *gameServiceImpl) SubmitPath(ctx context.Context, sessionID string, path []engine.Position) (*TurnResult, error) {
	var result *TurnResult
	err := s.withSession(sessionID, func(sess *Session) error {
		turn, err := sess.Engine.SubmitPath(path)
		if err != nil {
			return err
		}
		state := sess.Engine.GetState().Clone()
		result = &TurnResult{
			TurnResult: turn,
			GameState:  state,
			Events:     convertEvents(sess.Events.Drain()),
			Board:      engine.RenderBoard(state),
			Threat:     riskCode(engine.AnalyzeThreat(state)),
		}
		if turn.Accepted {
			s.persist(sessionID, "submit_path")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PreviewPath predicts a stroke without changing the session
func (s *gameServiceImpl) PreviewPath(ctx context.Context, sessionID string, path []engine.Position) (*engine.PathPreview, error) {
	var preview *engine.PathPreview
	err := s.withSession(sessionID, func(sess *Session) error {
		preview = sess.Engine.PreviewPath(path)
		return nil
	})
	return preview, err
}

// ChooseReward applies one of the pending reward offers
func (s *gameServiceImpl) ChooseReward(ctx context.Context, sessionID string, index int) (*RewardResult, error) {
	var result *RewardResult
	err := s.withSession(sessionID, func(sess *Session) error {
		applied, err := sess.Engine.ChooseReward(index)
		if err != nil {
			return err
		}
		result = &RewardResult{
			RewardResult: applied,
			GameState:    sess.Engine.GetState().Clone(),
			Events:       convertEvents(sess.Events.Drain()),
		}
		s.persist(sessionID, "choose_reward")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Restart begins a new run in the session
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state *engine.GameState
	err := s.withSession(sessionID, func(sess *Session) error {
		var err error
		if _, err = sess.Engine.Restart(); err != nil {
			return err
		}
		state = sess.Engine.GetState().Clone()
		sess.Events.Drain()
		s.persist(sessionID, "restart")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state *engine.GameState
	err := s.withSession(sessionID, func(sess *Session) error {
		state = sess.Engine.GetState().Clone()
		return nil
	})
	return state, err
}

// DescribeCell reports what sits on one board cell
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*engine.CellInfo, error) {
	var info *engine.CellInfo
	err := s.withSession(sessionID, func(sess *Session) error {
		var err error
		info, err = sess.Engine.DescribeCell(pos)
		return err
	})
	return info, err
}

// GetTurnHistory returns paginated turn history
func (s *gameServiceImpl) GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	var history []engine.TurnRecord
	err := s.withSession(sessionID, func(sess *Session) error {
		history = append(history, sess.Engine.GetState().History...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(history, opts), nil
}

func paginate(history []engine.TurnRecord, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var turns []engine.TurnRecord
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			turns = append(turns, history[i])
		}
	} else if start < total {
		turns = history[start:end]
	}
	if turns == nil {
		turns = []engine.TurnRecord{}
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	return s.configs.SaveConfig(configName, config)
}

// convertEvents turns engine events into client-facing events
func convertEvents(events []engine.Event) []GameEvent {
	out := make([]GameEvent, 0, len(events))
	now := time.Now()
	for _, ev := range events {
		out = append(out, GameEvent{
			Type:      string(ev.Type),
			Message:   eventMessage(ev),
			Timestamp: now,
			Stage:     ev.Stage,
			Turn:      ev.Turn,
			Data:      ev.Data,
		})
	}
	return out
}

func eventMessage(ev engine.Event) string {
	switch ev.Type {
	case engine.EventStageStarted:
		return fmt.Sprintf("Stage %d started", ev.Stage)
	case engine.EventTileEffect:
		if r, ok := ev.Data.(engine.EffectResult); ok {
			return fmt.Sprintf("Stepped on %s at %s", r.TileType, r.Position)
		}
	case engine.EventEnemyDefeated:
		return fmt.Sprintf("Enemy %v defeated", ev.Data)
	case engine.EventEnemyRelocated:
		if r, ok := ev.Data.(engine.Relocation); ok {
			return fmt.Sprintf("Enemy %d moved from %s to %s", r.EnemyID, r.From, r.To)
		}
	case engine.EventEnemyAction:
		if r, ok := ev.Data.(engine.ActionReport); ok {
			return fmt.Sprintf("Enemy %d used %s (%d)", r.EnemyID, r.Action, r.Value)
		}
	case engine.EventStageCleared:
		return fmt.Sprintf("Stage %d cleared", ev.Stage)
	case engine.EventRewardOffered:
		return "Choose a reward"
	case engine.EventRewardApplied:
		if r, ok := ev.Data.(engine.RewardOffer); ok {
			return fmt.Sprintf("Reward %s applied (level %d)", r.Kind, r.Level)
		}
	case engine.EventGameOver:
		return fmt.Sprintf("Game over on stage %d", ev.Stage)
	}
	return string(ev.Type)
}

// riskCode maps a threat analysis string to a compact code
func riskCode(text string) string {
	switch {
	case strings.HasPrefix(text, "CRITICAL"):
		return "critical"
	case strings.HasPrefix(text, "DANGER"):
		return "danger"
	case strings.HasPrefix(text, "CAUTION"):
		return "caution"
	case strings.HasPrefix(text, "LOW"):
		return "low"
	default:
		return "safe"
	}
}
