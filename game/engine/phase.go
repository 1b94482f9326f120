package engine

import (
	"errors"
	"fmt"
)

// Trigger is an input to the phase machine
type Trigger string

const (
	TriggerPathAccepted   Trigger = "path_accepted"
	TriggerPathResolved   Trigger = "path_resolved"
	TriggerPlayerDied     Trigger = "player_died"
	TriggerEnemiesActed   Trigger = "enemies_acted"
	TriggerStageClear     Trigger = "stage_clear"
	TriggerRewardsOffered Trigger = "rewards_offered"
	TriggerRewardChosen   Trigger = "reward_chosen"
	TriggerStageReady     Trigger = "stage_ready"
)

var ErrInvalidTransition = errors.New("invalid phase transition")

type transitionKey struct {
	from    Phase
	trigger Trigger
}

var transitions = map[transitionKey]Phase{
	{PhasePathDrawing, TriggerPathAccepted}:     PhasePathExecution,
	{PhasePathExecution, TriggerPathResolved}:   PhaseEnemyAction,
	{PhasePathExecution, TriggerStageClear}:     PhaseStageCleared,
	{PhasePathExecution, TriggerPlayerDied}:     PhaseGameOver,
	{PhaseEnemyAction, TriggerEnemiesActed}:     PhasePathDrawing,
	{PhaseEnemyAction, TriggerPlayerDied}:       PhaseGameOver,
	{PhaseEnemyAction, TriggerStageClear}:       PhaseStageCleared,
	{PhaseStageCleared, TriggerRewardsOffered}:  PhaseRewardSelection,
	{PhaseStageCleared, TriggerStageReady}:      PhasePathDrawing,
	{PhaseRewardSelection, TriggerRewardChosen}: PhasePathDrawing,
	{PhaseGameOver, TriggerStageReady}:          PhasePathDrawing,
}

// Transition returns the phase reached from from on trigger
func Transition(from Phase, trigger Trigger) (Phase, error) {
	to, ok := transitions[transitionKey{from, trigger}]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, from, trigger)
	}
	return to, nil
}
