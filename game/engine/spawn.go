package engine

import "math"

const rateTolerance = 1e-6

// SpawnConfig drives random tile generation. The four rates are meant to
// sum to 1.0; a mismatch is reported but tolerated.
type SpawnConfig struct {
	EmptyRate        float64  `json:"empty_rate" yaml:"empty_rate"`
	AttackBoostRate  float64  `json:"attack_boost_rate" yaml:"attack_boost_rate"`
	HPRecoveryRate   float64  `json:"hp_recovery_rate" yaml:"hp_recovery_rate"`
	GoldRate         float64  `json:"gold_rate" yaml:"gold_rate"`
	AttackBoostRange IntRange `json:"attack_boost_range" yaml:"attack_boost_range"`
	GoldRange        IntRange `json:"gold_range" yaml:"gold_range"`
}

// DefaultSpawnConfig returns the stock generation table
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		EmptyRate:        0.55,
		AttackBoostRate:  0.15,
		HPRecoveryRate:   0.15,
		GoldRate:         0.15,
		AttackBoostRange: IntRange{Min: 1, Max: 3},
		GoldRange:        IntRange{Min: 1, Max: 3},
	}
}

func (c SpawnConfig) Sum() float64 {
	return c.EmptyRate + c.AttackBoostRate + c.HPRecoveryRate + c.GoldRate
}

// IsValid reports whether the rates sum to 1.0 and logs when they do not
func (c SpawnConfig) IsValid() bool {
	if math.Abs(c.Sum()-1.0) > rateTolerance {
		Log.Warn("spawn rates do not sum to 1.0", "sum", c.Sum())
		return false
	}
	return true
}

func (c *SpawnConfig) rate(t TileType) *float64 {
	switch t {
	case Empty:
		return &c.EmptyRate
	case AttackBoost:
		return &c.AttackBoostRate
	case HPRecovery:
		return &c.HPRecoveryRate
	case Gold:
		return &c.GoldRate
	}
	return nil
}

// Rate returns the spawn probability of a generated tile type
func (c SpawnConfig) Rate(t TileType) float64 {
	if r := c.rate(t); r != nil {
		return *r
	}
	return 0
}

// ApplyRateChange adds delta to the rate of target and takes the same total
// evenly from the other three rates. No rate goes below zero; when clamping
// leaves the table off 1.0 it is normalized again.
func (c *SpawnConfig) ApplyRateChange(target TileType, delta float64) {
	tr := c.rate(target)
	if tr == nil {
		Log.Warn("rate change on non-generated tile type ignored", "type", target)
		return
	}
	share := delta / 3
	for _, t := range []TileType{Empty, AttackBoost, HPRecovery, Gold} {
		if t == target {
			continue
		}
		r := c.rate(t)
		*r = math.Max(0, *r-share)
	}
	*tr = math.Max(0, *tr+delta)
	c.Normalize()
}

// Normalize scales the four rates so they sum to 1.0. An all-zero table is
// left alone.
func (c *SpawnConfig) Normalize() {
	sum := c.Sum()
	if sum <= 0 || math.Abs(sum-1.0) <= rateTolerance {
		return
	}
	Log.Debug("normalizing spawn rates", "sum", sum)
	for _, t := range []TileType{Empty, AttackBoost, HPRecovery, Gold} {
		r := c.rate(t)
		*r /= sum
	}
}

// ApplyValueChange shifts the value range of AttackBoost or Gold tiles.
// Bounds never drop below 1.
func (c *SpawnConfig) ApplyValueChange(target TileType, delta int) {
	var r *IntRange
	switch target {
	case AttackBoost:
		r = &c.AttackBoostRange
	case Gold:
		r = &c.GoldRange
	default:
		Log.Warn("value change on tile type without a range ignored", "type", target)
		return
	}
	r.Min = max(1, r.Min+delta)
	r.Max = max(r.Min, r.Max+delta)
}
