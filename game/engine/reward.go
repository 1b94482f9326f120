package engine

import (
	"errors"
	"fmt"
)

// RewardKind names an upgrade offered after a stage clear
type RewardKind string

const (
	RewardAttackBoostRate  RewardKind = "attack_boost_rate"
	RewardAttackBoostValue RewardKind = "attack_boost_value"
	RewardHPRecoveryRate   RewardKind = "hp_recovery_rate"
	RewardEmptyRate        RewardKind = "empty_rate"
	RewardGoldRate         RewardKind = "gold_rate"
	RewardGoldValue        RewardKind = "gold_value"
	RewardOneStrokeBonus   RewardKind = "one_stroke_bonus"
	RewardGoldGet          RewardKind = "gold_get"
	RewardHPRecover        RewardKind = "hp_recover"
)

var (
	ErrUnknownReward = errors.New("unknown reward kind")
	ErrRewardMaxed   = errors.New("reward already at max level")
)

// RewardLevel is the configuration of one level of a reward kind
type RewardLevel struct {
	Name             string  `json:"name" yaml:"name"`
	Icon             string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description      string  `json:"description" yaml:"description"`
	AppearanceWeight float64 `json:"appearance_weight" yaml:"appearance_weight"`
	SpawnRateChange  float64 `json:"spawn_rate_change,omitempty" yaml:"spawn_rate_change,omitempty"`
	ValueChange      int     `json:"value_change,omitempty" yaml:"value_change,omitempty"`
}

// RewardDefinition lists the levels of a kind; its max level is len(Levels)
type RewardDefinition struct {
	Kind   RewardKind    `json:"kind" yaml:"kind"`
	Levels []RewardLevel `json:"levels" yaml:"levels"`
}

// IsValid reports whether the engine knows how to apply kind
func (k RewardKind) IsValid() bool {
	switch k {
	case RewardAttackBoostRate, RewardAttackBoostValue, RewardHPRecoveryRate, RewardEmptyRate,
		RewardGoldRate, RewardGoldValue, RewardOneStrokeBonus, RewardGoldGet, RewardHPRecover:
		return true
	}
	return false
}

func (d RewardDefinition) MaxLevel() int {
	return len(d.Levels)
}

// RewardOffer is one candidate shown to the player
type RewardOffer struct {
	Kind  RewardKind  `json:"kind"`
	Level int         `json:"level"`
	Info  RewardLevel `json:"info"`
}

// RewardEngine tracks per-kind levels and applies chosen rewards
type RewardEngine struct {
	rng    *RNG
	defs   []RewardDefinition
	byKind map[RewardKind]int
	levels map[RewardKind]int
}

func NewRewardEngine(rng *RNG, defs []RewardDefinition) *RewardEngine {
	r := &RewardEngine{
		rng:    rng,
		defs:   defs,
		byKind: make(map[RewardKind]int, len(defs)),
		levels: make(map[RewardKind]int, len(defs)),
	}
	for i, d := range defs {
		r.byKind[d.Kind] = i
	}
	return r
}

// Level returns the current 0-based level of kind
func (r *RewardEngine) Level(kind RewardKind) int {
	return r.levels[kind]
}

// Levels returns a copy of every tracked level
func (r *RewardEngine) Levels() map[RewardKind]int {
	out := make(map[RewardKind]int, len(r.levels))
	for k, v := range r.levels {
		out[k] = v
	}
	return out
}

// SetLevels restores levels from a saved state
func (r *RewardEngine) SetLevels(levels map[RewardKind]int) {
	r.levels = make(map[RewardKind]int, len(levels))
	for k, v := range levels {
		r.levels[k] = v
	}
}

// Candidates draws up to count distinct kinds that have not reached their max
// level, weighted by the appearance weight of their current level
func (r *RewardEngine) Candidates(count int) []RewardOffer {
	var pool []RewardOffer
	for _, d := range r.defs {
		lvl := r.levels[d.Kind]
		if lvl >= d.MaxLevel() || !d.Kind.IsValid() {
			continue
		}
		pool = append(pool, RewardOffer{Kind: d.Kind, Level: lvl, Info: d.Levels[lvl]})
	}

	var offers []RewardOffer
	for len(offers) < count && len(pool) > 0 {
		weights := make([]float64, len(pool))
		for i, o := range pool {
			weights[i] = o.Info.AppearanceWeight
		}
		i := r.rng.ChooseWeighted(weights)
		if i < 0 {
			break
		}
		offers = append(offers, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return offers
}

// Apply performs the effect of kind at its current level and then raises
// the level by one
func (r *RewardEngine) Apply(kind RewardKind, spawn *SpawnConfig, player *Player) (RewardOffer, error) {
	idx, ok := r.byKind[kind]
	if !ok {
		return RewardOffer{}, fmt.Errorf("%w: %s", ErrUnknownReward, kind)
	}
	def := r.defs[idx]
	lvl := r.levels[kind]
	if lvl >= def.MaxLevel() {
		Log.Warn("reward at max level not applied", "kind", kind, "level", lvl)
		return RewardOffer{}, fmt.Errorf("%w: %s", ErrRewardMaxed, kind)
	}
	info := def.Levels[lvl]

	switch kind {
	case RewardAttackBoostRate:
		spawn.ApplyRateChange(AttackBoost, info.SpawnRateChange)
	case RewardHPRecoveryRate:
		spawn.ApplyRateChange(HPRecovery, info.SpawnRateChange)
	case RewardEmptyRate:
		spawn.ApplyRateChange(Empty, info.SpawnRateChange)
	case RewardGoldRate:
		spawn.ApplyRateChange(Gold, info.SpawnRateChange)
	case RewardAttackBoostValue:
		spawn.ApplyValueChange(AttackBoost, info.ValueChange)
	case RewardGoldValue:
		spawn.ApplyValueChange(Gold, info.ValueChange)
	case RewardOneStrokeBonus:
		player.IncreaseOneStrokeBonus(info.ValueChange)
	case RewardGoldGet:
		player.AddGold(info.ValueChange)
	case RewardHPRecover:
		player.Heal(info.ValueChange)
	default:
		return RewardOffer{}, fmt.Errorf("%w: %s", ErrUnknownReward, kind)
	}

	r.levels[kind] = lvl + 1
	return RewardOffer{Kind: kind, Level: lvl, Info: info}, nil
}

// DefaultRewards returns the stock reward table, three levels per kind
func DefaultRewards() []RewardDefinition {
	rate := func(kind RewardKind, label string) RewardDefinition {
		d := RewardDefinition{Kind: kind}
		for i, delta := range []float64{0.05, 0.05, 0.10} {
			d.Levels = append(d.Levels, RewardLevel{
				Name:             fmt.Sprintf("%s +%d", label, i+1),
				Description:      fmt.Sprintf("%s spawn rate +%.0f%%", label, delta*100),
				AppearanceWeight: 1,
				SpawnRateChange:  delta,
			})
		}
		return d
	}
	value := func(kind RewardKind, label, unit string, deltas []int, weight float64) RewardDefinition {
		d := RewardDefinition{Kind: kind}
		for i, delta := range deltas {
			d.Levels = append(d.Levels, RewardLevel{
				Name:             fmt.Sprintf("%s %d", label, i+1),
				Description:      fmt.Sprintf("%s +%d", unit, delta),
				AppearanceWeight: weight,
				ValueChange:      delta,
			})
		}
		return d
	}
	return []RewardDefinition{
		rate(RewardAttackBoostRate, "Attack boost"),
		value(RewardAttackBoostValue, "Sharper boosts", "Attack boost value", []int{1, 1, 2}, 1),
		rate(RewardHPRecoveryRate, "Recovery"),
		rate(RewardEmptyRate, "Empty"),
		rate(RewardGoldRate, "Gold"),
		value(RewardGoldValue, "Richer veins", "Gold tile value", []int{1, 1, 2}, 1),
		value(RewardOneStrokeBonus, "One stroke", "One-stroke bonus", []int{3, 5, 8}, 0.8),
		value(RewardGoldGet, "Purse", "Gold", []int{10, 15, 20}, 1.2),
		value(RewardHPRecover, "Rest", "HP", []int{2, 3, 5}, 1.2),
	}
}
