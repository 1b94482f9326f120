package engine

import (
	"context"
	"errors"
	"fmt"
)

// PathSource supplies the stroke for the next turn
type PathSource interface {
	NextPath(ctx context.Context, state *GameState) ([]Position, error)
}

// RewardPicker chooses one of the offered rewards
type RewardPicker interface {
	PickReward(ctx context.Context, offers []RewardOffer, state *GameState) (int, error)
}

// ErrTurnLimit is returned by Run when maxTurns is reached first
var ErrTurnLimit = errors.New("turn limit reached")

// RunSummary describes how a driven run ended
type RunSummary struct {
	RunID          string `json:"run_id"`
	StageReached   int    `json:"stage_reached"`
	Turns          int    `json:"turns"`
	RejectedPaths  int    `json:"rejected_paths"`
	RewardsTaken   int    `json:"rewards_taken"`
	GameOver       bool   `json:"game_over"`
	FinalHP        int    `json:"final_hp"`
	FinalGold      int    `json:"final_gold"`
	OneStrokeTurns int    `json:"one_stroke_turns"`
}

// maxConsecutiveRejects stops a source that keeps proposing invalid strokes
const maxConsecutiveRejects = 10

// Run drives the engine until game over, context cancellation or maxTurns
// executed strokes (0 means no limit). Cancellation is checked between
// phases; a phase already started completes.
func Run(ctx context.Context, e *GameEngine, paths PathSource, picker RewardPicker, maxTurns int) (*RunSummary, error) {
	summary := &RunSummary{RunID: e.GetState().RunID}
	rejects := 0
	defer func() {
		s := e.GetState()
		summary.StageReached = s.Stage
		summary.GameOver = s.GameOver
		summary.FinalHP = s.Player.CurrentHP
		summary.FinalGold = s.Player.Gold
	}()

	for !e.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		state := e.GetState()

		switch state.Phase {
		case PhaseRewardSelection:
			idx, err := picker.PickReward(ctx, state.PendingRewards, state)
			if err != nil {
				return summary, fmt.Errorf("pick reward: %w", err)
			}
			if _, err := e.ChooseReward(idx); err != nil {
				return summary, err
			}
			summary.RewardsTaken++

		case PhasePathDrawing:
			if maxTurns > 0 && summary.Turns >= maxTurns {
				return summary, ErrTurnLimit
			}
			path, err := paths.NextPath(ctx, state)
			if err != nil {
				return summary, fmt.Errorf("next path: %w", err)
			}
			res, err := e.SubmitPath(path)
			if err != nil {
				return summary, err
			}
			if !res.Accepted {
				summary.RejectedPaths++
				rejects++
				if rejects >= maxConsecutiveRejects {
					return summary, fmt.Errorf("path source rejected %d times in a row: %s", rejects, res.Reason)
				}
				continue
			}
			rejects = 0
			summary.Turns++
			if res.Outcome.OneStrokeBonus {
				summary.OneStrokeTurns++
			}

		default:
			return summary, fmt.Errorf("%w: driver stopped in %s", ErrWrongPhase, state.Phase)
		}
	}
	return summary, nil
}
