package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrWrongPhase         = errors.New("action not allowed in current phase")
	ErrInvalidReward      = errors.New("invalid reward choice")
	ErrStageConfigMissing = errors.New("no stage configuration")
	ErrInvalidPosition    = errors.New("position out of range")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Restart() (*GameState, error)
	IsGameOver() bool
	IsBossStage() bool

	// Turn operations
	SubmitPath(path []Position) (*TurnResult, error)
	PreviewPath(path []Position) *PathPreview
	ChooseReward(index int) (*RewardResult, error)

	// Inspection
	DescribeCell(pos Position) (*CellInfo, error)
	GetConfig() *GameConfig
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access per run.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	sink   EventSink

	seed     int64
	rng      *RNG
	factory  *TileFactory
	resolver *TurnResolver
	actions  *EnemyActionEngine
	rewards  *RewardEngine
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithSeed makes the run reproducible
func WithSeed(seed int64) Option {
	return func(e *GameEngine) { e.seed = seed }
}

// WithEventSink receives every event the engine emits
func WithEventSink(sink EventSink) Option {
	return func(e *GameEngine) { e.sink = sink }
}

// NewEngine creates an engine and starts a run. A nil config uses
// DefaultGameConfig.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{config: config}
	for _, opt := range opts {
		opt(e)
	}
	e.wire(NewRNG(e.seed))

	if _, err := e.Restart(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *GameEngine) wire(rng *RNG) {
	e.rng = rng
	e.seed = rng.Seed()
	e.factory = NewTileFactory(rng)
	e.resolver = NewTurnResolver(rng, e.factory)
	e.actions = NewEnemyActionEngine(rng, e.factory)
	e.rewards = NewRewardEngine(rng, e.config.Rewards)
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Player == nil || state.Board == nil {
		return fmt.Errorf("state is missing player or board")
	}
	if state.RewardLevels == nil {
		state.RewardLevels = make(map[RewardKind]int)
	}
	// continue from a generator derived from the saved run so reloads stay
	// deterministic
	e.wire(NewRNG(state.Seed + int64(state.Turn) + 1))
	e.rewards.SetLevels(state.RewardLevels)
	e.state = state
	return nil
}

func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

func (e *GameEngine) IsBossStage() bool {
	return e.state.IsBossStage
}

// Restart begins a new run on stage 1. Turn history is kept across restarts.
func (e *GameEngine) Restart() (*GameState, error) {
	var history []TurnRecord
	if e.state != nil {
		history = e.state.History
	}
	cfg := e.config
	e.rewards.SetLevels(nil)
	e.state = &GameState{
		RunID:        uuid.NewString(),
		ConfigName:   cfg.Name,
		Seed:         e.seed,
		Phase:        PhasePathDrawing,
		Player:       NewPlayer(cfg.PlayerMaxHP, cfg.StartingGold(), cfg.StartingOneStrokeBonus()),
		Board:        NewBoard(),
		Spawn:        cfg.Spawn,
		RewardLevels: make(map[RewardKind]int),
		History:      history,
		StartedAt:    time.Now(),
	}
	if history == nil {
		e.state.History = []TurnRecord{}
	}
	if err := e.setupStage(1); err != nil {
		return nil, err
	}
	e.state.Message = cfg.Messages.Welcome
	return e.state, nil
}

// setupStage lays out a fresh board for stage. Missing stage configuration is
// the only condition that stops a run from continuing.
func (e *GameEngine) setupStage(stage int) error {
	entry, ok := e.config.EntryForStage(stage)
	if !ok {
		return fmt.Errorf("%w: stage %d", ErrStageConfigMissing, stage)
	}
	s := e.state
	s.Stage = stage
	s.StageTurn = 0
	s.PendingRewards = nil
	s.Board.Clear()
	s.Player.Position = Position{X: 0, Y: 0}
	s.Player.ResetAttackPower()

	boss := e.config.IsBossStage(stage)
	center := Position{X: BoardSize / 2, Y: BoardSize / 2}
	var open []Position
	for _, pos := range AllPositions() {
		if pos != s.Player.Position && pos != center {
			open = append(open, pos)
		}
	}
	e.rng.ShufflePositions(open)
	centerFree := true
	for _, d := range entry.Enemies {
		enemy := NewEnemy(d)
		var pos Position
		if d.IsBoss && centerFree {
			pos, centerFree = center, false
		} else {
			if len(open) == 0 {
				Log.Warn("no room for enemy", "stage", stage)
				continue
			}
			pos, open = open[0], open[1:]
		}
		s.Board.PlaceEnemy(pos, enemy)
		boss = boss || d.IsBoss
	}
	s.Board.Fill(e.factory, s.Spawn)
	s.Board.SetTile(s.Player.Position, e.factory.CreateEmptyTile())
	s.IsBossStage = boss

	msg := e.config.Messages.StageStart
	if boss && e.config.Messages.BossStage != "" {
		msg = e.config.Messages.BossStage
	}
	s.Message = formatStage(msg, stage)
	e.emit(EventStageStarted, map[string]interface{}{"is_boss": boss, "enemies": s.Board.EnemyCount()})
	return nil
}

func (e *GameEngine) setPhase(trigger Trigger) {
	to, err := Transition(e.state.Phase, trigger)
	if err != nil {
		Log.Error("phase machine rejected trigger", "err", err)
		return
	}
	from := e.state.Phase
	e.state.Phase = to
	e.emit(EventPhaseChanged, map[string]Phase{"from": from, "to": to})
}

func (e *GameEngine) emit(t EventType, data interface{}) {
	if e.sink == nil {
		return
	}
	e.sink.OnEvent(Event{Type: t, Stage: e.state.Stage, Turn: e.state.Turn, Data: data})
}

// SubmitPath validates and executes a stroke, runs the enemy turn and
// resolves stage clear or game over
func (e *GameEngine) SubmitPath(path []Position) (*TurnResult, error) {
	s := e.state
	if s.Phase != PhasePathDrawing {
		return nil, fmt.Errorf("%w: submit path during %s", ErrWrongPhase, s.Phase)
	}
	if err := ValidatePath(path, s.Player.Position, s.Board); err != nil {
		s.Message = err.Error()
		if e.config.Messages.InvalidPath != "" {
			s.Message = fmt.Sprintf(e.config.Messages.InvalidPath, err)
		}
		return &TurnResult{Accepted: false, Reason: err.Error(), Phase: s.Phase, Stage: s.Stage, Message: s.Message}, nil
	}

	record := TurnRecord{
		Turn:       s.Turn + 1,
		Stage:      s.Stage,
		Path:       append([]Position(nil), path...),
		HPBefore:   s.Player.CurrentHP,
		GoldBefore: s.Player.Gold,
		Timestamp:  time.Now(),
	}
	s.Turn++
	s.StageTurn++
	e.setPhase(TriggerPathAccepted)

	out := e.resolver.ExecutePath(path, s.Player, s.Board, s.Spawn, s.Stage, s.IsBossStage)
	e.emitOutcome(out)
	result := &TurnResult{Accepted: true, Outcome: out}

	switch {
	case out.GameOver:
		e.endRun(TriggerPlayerDied)
	case out.StageCleared:
		e.clearStage(TriggerStageClear)
	default:
		e.setPhase(TriggerPathResolved)
		result.EnemyActions = e.actions.RunEnemyTurn(s.Board, s.Player, s.Spawn)
		for _, rep := range result.EnemyActions {
			e.emit(EventEnemyAction, rep)
			if len(rep.Changed) > 0 {
				e.emit(EventTilesChanged, rep.Changed)
			}
		}
		if !s.Player.IsAlive() {
			e.endRun(TriggerPlayerDied)
		} else {
			e.setPhase(TriggerEnemiesActed)
			s.Message = fmt.Sprintf("Dealt up to %d damage. HP %d/%d, gold %d.",
				out.AttackPower, s.Player.CurrentHP, s.Player.MaxHP, s.Player.Gold)
		}
	}

	record.AttackPower = out.AttackPower
	record.OneStrokeBonus = out.OneStrokeBonus
	record.Defeated = out.Defeated
	record.EnemyActions = result.EnemyActions
	record.HPAfter = s.Player.CurrentHP
	record.GoldAfter = s.Player.Gold
	record.StageCleared = out.StageCleared
	record.GameOver = s.GameOver
	s.History = append(s.History, record)

	result.StageCleared = out.StageCleared
	result.GameOver = s.GameOver
	result.Rewards = s.PendingRewards
	result.Phase = s.Phase
	result.Stage = s.Stage
	result.Message = s.Message
	return result, nil
}

func (e *GameEngine) emitOutcome(out *PathOutcome) {
	for _, r := range out.Effects {
		e.emit(EventTileEffect, r)
	}
	for _, id := range out.Defeated {
		e.emit(EventEnemyDefeated, id)
	}
	for _, r := range out.Relocations {
		e.emit(EventEnemyRelocated, r)
	}
	if len(out.Regenerated) > 0 {
		e.emit(EventTilesChanged, out.Regenerated)
	}
}

func (e *GameEngine) endRun(trigger Trigger) {
	s := e.state
	s.GameOver = true
	s.Message = formatStage(e.config.Messages.GameOver, s.Stage)
	e.setPhase(trigger)
	e.emit(EventGameOver, map[string]int{"stage": s.Stage, "turn": s.Turn})
}

// clearStage offers rewards, or moves straight to the next stage when every
// reward is maxed out
func (e *GameEngine) clearStage(trigger Trigger) {
	s := e.state
	e.setPhase(trigger)
	e.emit(EventStageCleared, s.Stage)
	s.Message = formatStage(e.config.Messages.StageCleared, s.Stage)

	offers := e.rewards.Candidates(e.config.RewardChoices)
	if len(offers) > 0 {
		s.PendingRewards = offers
		e.setPhase(TriggerRewardsOffered)
		e.emit(EventRewardOffered, offers)
		return
	}
	if err := e.setupStage(s.Stage + 1); err != nil {
		Log.Error("next stage setup failed", "stage", s.Stage+1, "err", err)
		return
	}
	e.setPhase(TriggerStageReady)
}

// ChooseReward applies the pending offer at index and starts the next stage
func (e *GameEngine) ChooseReward(index int) (*RewardResult, error) {
	s := e.state
	if s.Phase != PhaseRewardSelection {
		return nil, fmt.Errorf("%w: choose reward during %s", ErrWrongPhase, s.Phase)
	}
	if index < 0 || index >= len(s.PendingRewards) {
		return nil, fmt.Errorf("%w: index %d of %d offers", ErrInvalidReward, index, len(s.PendingRewards))
	}

	offer := s.PendingRewards[index]
	applied, err := e.rewards.Apply(offer.Kind, &s.Spawn, s.Player)
	if err != nil {
		return nil, err
	}
	s.RewardLevels = e.rewards.Levels()
	e.emit(EventRewardApplied, applied)

	if err := e.setupStage(s.Stage + 1); err != nil {
		return nil, err
	}
	e.setPhase(TriggerRewardChosen)
	return &RewardResult{Applied: applied, Stage: s.Stage, Phase: s.Phase, Message: s.Message}, nil
}

// PreviewPath predicts a stroke from the player's current position
func (e *GameEngine) PreviewPath(path []Position) *PathPreview {
	s := e.state
	return CalculatePathPreview(path, s.Player, s.Board, s.Stage, s.IsBossStage)
}

// DescribeCell reports the tile, enemy and action countdown at pos
func (e *GameEngine) DescribeCell(pos Position) (*CellInfo, error) {
	s := e.state
	if !s.Board.IsValidPosition(pos) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}
	info := &CellInfo{Position: pos, IsPlayer: s.Player.Position == pos}
	if t := s.Board.Tile(pos); t != nil {
		info.Tile = t.Clone()
	}
	if enemy := s.Board.EnemyAt(pos); enemy != nil {
		info.Enemy = enemy.Clone()
		if next, ok := enemy.CurrentAction(); ok {
			info.NextAction = &next
			info.TurnsUntilAction = enemy.TurnsUntilAction()
		}
	}
	return info, nil
}

func formatStage(msg string, stage int) string {
	if msg == "" {
		return ""
	}
	return fmt.Sprintf(msg, stage)
}
