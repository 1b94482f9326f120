package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wricardo/onestroke/game/bot"
	"github.com/wricardo/onestroke/game/engine"
)

// GameResult is the outcome of one seeded bot game
type GameResult struct {
	Seed  int64  `json:"seed"`
	Cause string `json:"cause,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Err   string `json:"error,omitempty"`
	*engine.RunSummary `json:"summary"`
}

// deathTracker remembers the last thing that hurt the player
type deathTracker struct {
	last string
	kind string
}

func (d *deathTracker) OnEvent(e engine.Event) {
	switch e.Type {
	case engine.EventStageStarted:
		d.last, d.kind = "", ""
	case engine.EventTileEffect:
		r, ok := e.Data.(engine.EffectResult)
		if !ok || r.DamageTaken == 0 {
			return
		}
		d.kind = string(r.TileType)
		if r.TileType == engine.EnemyTile {
			d.kind = "counter-attack"
		}
		d.last = fmt.Sprintf("%s at %s on stage %d", d.kind, r.Position, e.Stage)
	case engine.EventEnemyAction:
		a, ok := e.Data.(engine.ActionReport)
		if !ok || a.DamageDealt == 0 {
			return
		}
		d.kind = "enemy " + string(a.Action)
		d.last = fmt.Sprintf("enemy %d %s for %d on stage %d", a.EnemyID, a.Action, a.DamageDealt, e.Stage)
	}
}

type simOptions struct {
	MaxTurns int
	MaxNodes int
}

// simulateGame plays one full run with the bot
func simulateGame(ctx context.Context, config *engine.GameConfig, seed int64, opts simOptions) (*GameResult, error) {
	tracker := &deathTracker{}
	eng, err := engine.NewEngine(config, engine.WithSeed(seed), engine.WithEventSink(tracker))
	if err != nil {
		return nil, err
	}

	planner := bot.NewPlanner()
	if opts.MaxNodes > 0 {
		planner.MaxNodes = opts.MaxNodes
	}

	summary, err := engine.Run(ctx, eng, planner, bot.DefaultRewardPriority(), opts.MaxTurns)
	result := &GameResult{Seed: seed, RunSummary: summary}
	switch {
	case errors.Is(err, engine.ErrTurnLimit):
		result.Cause, result.Kind = "turn limit", "turn limit"
	case errors.Is(err, bot.ErrNoPath):
		result.Cause, result.Kind = "no reachable enemy", "stuck"
	case err != nil:
		if ctx.Err() != nil {
			return result, err
		}
		result.Err = err.Error()
	case summary.GameOver:
		result.Cause, result.Kind = tracker.last, tracker.kind
		if result.Cause == "" {
			result.Cause, result.Kind = "unknown", "unknown"
		}
	}
	return result, nil
}

// runBatch plays games seeds base..base+n-1, at most parallel at a time
func runBatch(ctx context.Context, config *engine.GameConfig, base int64, n, parallel int, opts simOptions) ([]*GameResult, error) {
	results := make([]*GameResult, n)
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			res, err := simulateGame(ctx, config, base+int64(i), opts)
			if err != nil {
				return fmt.Errorf("seed %d: %w", base+int64(i), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BatchStats aggregates a batch
type BatchStats struct {
	Games       int            `json:"games"`
	MeanStage   float64        `json:"mean_stage"`
	MedianStage int            `json:"median_stage"`
	BestStage   int            `json:"best_stage"`
	MeanTurns   float64        `json:"mean_turns"`
	OneStrokes  int            `json:"one_strokes"`
	Deaths      int            `json:"deaths"`
	Causes      map[string]int `json:"causes"`
	Errors      int            `json:"errors"`
}

func summarize(results []*GameResult) BatchStats {
	stats := BatchStats{Games: len(results), Causes: make(map[string]int)}
	if len(results) == 0 {
		return stats
	}
	stages := make([]int, 0, len(results))
	for _, r := range results {
		stages = append(stages, r.StageReached)
		stats.MeanStage += float64(r.StageReached)
		stats.MeanTurns += float64(r.Turns)
		stats.OneStrokes += r.OneStrokeTurns
		if r.StageReached > stats.BestStage {
			stats.BestStage = r.StageReached
		}
		if r.GameOver {
			stats.Deaths++
		}
		if r.Err != "" {
			stats.Errors++
		}
		if r.Kind != "" {
			stats.Causes[r.Kind]++
		}
	}
	stats.MeanStage /= float64(len(results))
	stats.MeanTurns /= float64(len(results))
	sort.Ints(stages)
	stats.MedianStage = stages[len(stages)/2]
	return stats
}
