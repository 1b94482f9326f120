package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func newTestEngine(t *testing.T, opts ...Option) *GameEngine {
	t.Helper()
	e, err := NewEngine(testConfig(), append([]Option{WithSeed(42)}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}
	return e
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t)
	s := e.GetState()

	if s.Stage != 1 || s.Phase != PhasePathDrawing {
		t.Errorf("stage %d phase %s, want 1 and path_drawing", s.Stage, s.Phase)
	}
	if s.Player.Position != pos(0, 0) {
		t.Errorf("player at %s, want (0,0)", s.Player.Position)
	}
	if s.Board.Tile(pos(0, 0)).Type != Empty {
		t.Error("player must start on an empty cell")
	}
	if s.Board.EnemyCount() != 1 {
		t.Errorf("enemies = %d, want 1", s.Board.EnemyCount())
	}
	for _, p := range AllPositions() {
		if s.Board.Tile(p) == nil {
			t.Fatalf("cell %s left unset", p)
		}
	}
	if err := s.Board.checkIntegrity(); err != nil {
		t.Error(err)
	}
	if s.RunID == "" || s.Player.Gold != DefaultInitialGold {
		t.Errorf("unexpected initial state: run %q gold %d", s.RunID, s.Player.Gold)
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Stages = nil
	if _, err := NewEngine(cfg); err == nil {
		t.Error("expected error for config without stages")
	}
}

func TestBossPlacedInCenter(t *testing.T) {
	cfg := testConfig()
	cfg.Stages[0].Enemies = []EnemyDescriptor{{IsBoss: true, MaxHP: 20, AttackPower: 2}, {MaxHP: 2, AttackPower: 1}}
	e, err := NewEngine(cfg, WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	boss := e.GetState().Board.EnemyAt(pos(2, 2))
	if boss == nil || !boss.IsBoss {
		t.Fatalf("expected boss at center, got %+v", boss)
	}
	if !e.IsBossStage() {
		t.Error("a stage with a boss is a boss stage")
	}
}

func TestStageClearRewardAndAdvance(t *testing.T) {
	rec := &EventRecorder{}
	e := newTestEngine(t, WithEventSink(rec))
	s := e.GetState()
	s.Board = boardFromLayout(t, []string{
		".E...",
		".....",
		".....",
		".....",
		".....",
	}, testEnemy(2, 1))

	res, err := e.SubmitPath([]Position{pos(0, 0), pos(1, 0)})
	if err != nil {
		t.Fatalf("SubmitPath: %v", err)
	}
	if !res.Accepted || !res.StageCleared {
		t.Fatalf("expected accepted stage clear, got %+v", res)
	}
	if res.Phase != PhaseRewardSelection || len(res.Rewards) != DefaultRewardChoices {
		t.Fatalf("phase %s with %d rewards", res.Phase, len(res.Rewards))
	}

	if _, err := e.SubmitPath([]Position{pos(1, 0)}); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("submit during reward selection: got %v, want ErrWrongPhase", err)
	}
	if _, err := e.ChooseReward(7); !errors.Is(err, ErrInvalidReward) {
		t.Errorf("got %v, want ErrInvalidReward", err)
	}

	chosen := res.Rewards[0].Kind
	rr, err := e.ChooseReward(0)
	if err != nil {
		t.Fatalf("ChooseReward: %v", err)
	}
	if rr.Stage != 2 || rr.Phase != PhasePathDrawing {
		t.Errorf("after reward: stage %d phase %s", rr.Stage, rr.Phase)
	}
	if e.GetState().RewardLevels[chosen] != 1 {
		t.Errorf("reward %s level = %d, want 1", chosen, e.GetState().RewardLevels[chosen])
	}
	if e.GetState().Board.EnemyCount() != 2 {
		t.Errorf("stage 2 enemies = %d, want 2", e.GetState().Board.EnemyCount())
	}
	if e.GetState().Player.Position != pos(0, 0) {
		t.Error("player should restart each stage at (0,0)")
	}

	seen := map[EventType]bool{}
	for _, ev := range rec.Drain() {
		seen[ev.Type] = true
	}
	for _, want := range []EventType{EventPhaseChanged, EventTileEffect, EventEnemyDefeated, EventStageCleared, EventRewardOffered, EventRewardApplied, EventStageStarted} {
		if !seen[want] {
			t.Errorf("missing event %s", want)
		}
	}
}

func TestInvalidPathIsRejectedWithoutSideEffects(t *testing.T) {
	e := newTestEngine(t)
	before := e.GetState().Turn

	res, err := e.SubmitPath([]Position{pos(1, 1)})
	if err != nil {
		t.Fatalf("invalid paths are outcomes, not errors: %v", err)
	}
	if res.Accepted || res.Reason == "" {
		t.Errorf("expected rejection with a reason, got %+v", res)
	}
	if e.GetState().Turn != before || e.GetState().Phase != PhasePathDrawing {
		t.Error("rejected path changed the turn or phase")
	}
}

func TestEnemyTurnFollowsStroke(t *testing.T) {
	e := newTestEngine(t)
	s := e.GetState()
	s.Board = boardFromLayout(t, []string{
		".E...",
		".....",
		".....",
		".....",
		".....",
	}, testEnemy(50, 1, ActionEntry{Type: ActionAttack, Value: 1, TurnCount: 1}))

	res, err := e.SubmitPath([]Position{pos(0, 0), pos(1, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.EnemyActions) != 1 || res.EnemyActions[0].Action != ActionAttack {
		t.Fatalf("expected one enemy attack, got %+v", res.EnemyActions)
	}
	if s.Player.CurrentHP != DefaultPlayerMaxHP-2 {
		t.Errorf("hp = %d, want %d", s.Player.CurrentHP, DefaultPlayerMaxHP-2)
	}
	if res.Phase != PhasePathDrawing || s.Turn != 1 || len(s.History) != 1 {
		t.Errorf("phase %s turn %d history %d", res.Phase, s.Turn, len(s.History))
	}
	if rec := s.History[0]; rec.HPBefore != 5 || rec.HPAfter != 3 || rec.AttackPower != 2 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestGameOverAndRestart(t *testing.T) {
	e := newTestEngine(t)
	s := e.GetState()
	s.Board = boardFromLayout(t, []string{
		".^E..",
		".....",
		".....",
		".....",
		".....",
	}, testEnemy(50, 1))
	s.Player.CurrentHP = 1

	res, err := e.SubmitPath([]Position{pos(0, 0), pos(1, 0), pos(2, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if !res.GameOver || res.Phase != PhaseGameOver || !e.IsGameOver() {
		t.Fatalf("expected game over, got %+v", res)
	}
	if _, err := e.SubmitPath([]Position{pos(1, 0)}); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("got %v, want ErrWrongPhase", err)
	}

	runID := s.RunID
	ns, err := e.Restart()
	if err != nil {
		t.Fatal(err)
	}
	if ns.GameOver || ns.Phase != PhasePathDrawing || ns.Stage != 1 {
		t.Errorf("restart left stage %d phase %s", ns.Stage, ns.Phase)
	}
	if ns.RunID == runID {
		t.Error("restart should start a new run id")
	}
	if len(ns.History) != 1 {
		t.Errorf("history should survive restart, got %d records", len(ns.History))
	}
}

func TestStateRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	data, err := json.Marshal(e.GetState())
	if err != nil {
		t.Fatal(err)
	}
	var restored GameState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatal(err)
	}

	other := newTestEngine(t)
	if err := other.SetState(&restored); err != nil {
		t.Fatal(err)
	}
	if RenderBoard(other.GetState()) != RenderBoard(e.GetState()) {
		t.Error("restored board differs")
	}
	if err := other.SetState(nil); err == nil {
		t.Error("expected error for nil state")
	}
}

func TestDescribeCell(t *testing.T) {
	e := newTestEngine(t)
	s := e.GetState()
	s.Board = boardFromLayout(t, []string{
		".E...",
		".....",
		".....",
		".....",
		".....",
	}, testEnemy(5, 1, ActionEntry{Type: ActionSpawnWalls, Value: 1, TurnCount: 3}))

	info, err := e.DescribeCell(pos(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if info.Enemy == nil || info.NextAction == nil || info.TurnsUntilAction != 3 {
		t.Errorf("unexpected cell info %+v", info)
	}
	if info, _ := e.DescribeCell(pos(0, 0)); !info.IsPlayer {
		t.Error("expected player cell")
	}
	if _, err := e.DescribeCell(pos(7, 0)); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("got %v, want ErrInvalidPosition", err)
	}
}

// shortestStroke finds a wall-free path to the nearest enemy
type shortestStroke struct{}

func (shortestStroke) NextPath(ctx context.Context, s *GameState) ([]Position, error) {
	start := s.Player.Position
	prev := map[Position]Position{start: start}
	queue := []Position{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if t := s.Board.Tile(cur); cur != start && t.Type == EnemyTile {
			var path []Position
			for p := cur; p != start; p = prev[p] {
				path = append([]Position{p}, path...)
			}
			return append([]Position{start}, path...), nil
		}
		for _, d := range []Position{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			next := Position{X: cur.X + d.X, Y: cur.Y + d.Y}
			t := s.Board.Tile(next)
			if _, seen := prev[next]; seen || t == nil || t.Type == Wall {
				continue
			}
			prev[next] = cur
			queue = append(queue, next)
		}
	}
	return nil, errors.New("no enemy reachable")
}

type firstReward struct{}

func (firstReward) PickReward(ctx context.Context, offers []RewardOffer, s *GameState) (int, error) {
	return 0, nil
}

func TestRunDriver(t *testing.T) {
	e := newTestEngine(t)
	summary, err := Run(context.Background(), e, shortestStroke{}, firstReward{}, 5)
	if err != nil && !errors.Is(err, ErrTurnLimit) {
		t.Fatalf("Run: %v", err)
	}
	if summary.Turns == 0 || summary.Turns > 5 {
		t.Errorf("turns = %d, want 1..5", summary.Turns)
	}
	if summary.StageReached < 1 {
		t.Errorf("stage reached = %d", summary.StageReached)
	}
}

func TestRunDriverHonoursCancellation(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := Run(ctx, e, shortestStroke{}, firstReward{}, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if summary.Turns != 0 {
		t.Error("no turn should run after cancellation")
	}
}

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		from    Phase
		trigger Trigger
		want    Phase
		ok      bool
	}{
		{PhasePathDrawing, TriggerPathAccepted, PhasePathExecution, true},
		{PhasePathExecution, TriggerPlayerDied, PhaseGameOver, true},
		{PhaseEnemyAction, TriggerEnemiesActed, PhasePathDrawing, true},
		{PhaseStageCleared, TriggerRewardsOffered, PhaseRewardSelection, true},
		{PhaseRewardSelection, TriggerRewardChosen, PhasePathDrawing, true},
		{PhasePathDrawing, TriggerRewardChosen, PhasePathDrawing, false},
		{PhaseGameOver, TriggerPathAccepted, PhaseGameOver, false},
	}
	for _, tt := range tests {
		got, err := Transition(tt.from, tt.trigger)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("%s on %s: got %s, %v", tt.from, tt.trigger, got, err)
		}
	}
}
