package bot

import (
	"context"
	"errors"

	"github.com/wricardo/onestroke/game/engine"
)

// RewardPriority ranks reward kinds, lower first. It implements
// engine.RewardPicker.
type RewardPriority struct {
	Order []engine.RewardKind
	// HealBelow picks hp_recover first when current HP is at or below this
	// fraction of max HP
	HealBelow float64
}

func DefaultRewardPriority() *RewardPriority {
	return &RewardPriority{
		Order: []engine.RewardKind{
			engine.RewardAttackBoostValue,
			engine.RewardAttackBoostRate,
			engine.RewardOneStrokeBonus,
			engine.RewardHPRecoveryRate,
			engine.RewardGoldRate,
			engine.RewardGoldValue,
			engine.RewardEmptyRate,
			engine.RewardHPRecover,
			engine.RewardGoldGet,
		},
		HealBelow: 0.5,
	}
}

func (r *RewardPriority) rank(kind engine.RewardKind) int {
	for i, k := range r.Order {
		if k == kind {
			return i
		}
	}
	return len(r.Order)
}

// PickReward returns the index of the preferred offer
func (r *RewardPriority) PickReward(ctx context.Context, offers []engine.RewardOffer, state *engine.GameState) (int, error) {
	if len(offers) == 0 {
		return 0, errors.New("no rewards offered")
	}
	if state != nil && state.Player != nil && state.Player.MaxHP > 0 {
		ratio := float64(state.Player.CurrentHP) / float64(state.Player.MaxHP)
		if ratio <= r.HealBelow {
			for i, o := range offers {
				if o.Kind == engine.RewardHPRecover {
					return i, nil
				}
			}
		}
	}

	best := 0
	for i, o := range offers {
		if r.rank(o.Kind) < r.rank(offers[best].Kind) {
			best = i
		}
	}
	return best, nil
}
