package engine

// Tile is one board cell. Value holds the boost, gold amount or thorn damage
// depending on Type; EnemyID is set only on enemy tiles.
type Tile struct {
	Type     TileType `json:"type"`
	Value    int      `json:"value,omitempty"`
	EnemyID  EnemyID  `json:"enemy_id,omitempty"`
	Position Position `json:"position"`
}

// EffectContext carries what a tile needs to know about the ongoing path
type EffectContext struct {
	IsComboActive bool
	CurrentStage  int
	IsBossStage   bool
	// Enemy is the roster entry referenced by an enemy tile
	Enemy *Enemy
}

// EffectResult summarizes what one tile did to the player
type EffectResult struct {
	Position      Position `json:"position"`
	TileType      TileType `json:"tile_type"`
	Applied       bool     `json:"applied"`
	ComboActive   bool     `json:"combo_active,omitempty"`
	GoldSpent     int      `json:"gold_spent,omitempty"`
	GoldGained    int      `json:"gold_gained,omitempty"`
	AttackGained  int      `json:"attack_gained,omitempty"`
	HPGained      int      `json:"hp_gained,omitempty"`
	DamageTaken   int      `json:"damage_taken,omitempty"`
	DamageDealt   int      `json:"damage_dealt,omitempty"`
	DefeatedEnemy EnemyID  `json:"defeated_enemy,omitempty"`
}

type tileBehavior struct {
	apply    func(t *Tile, p *Player, ctx EffectContext) EffectResult
	canApply func(t *Tile, p *Player) bool
}

var tileBehaviors map[TileType]tileBehavior

func init() {
	tileBehaviors = map[TileType]tileBehavior{
		Empty: {
			apply:    func(t *Tile, p *Player, ctx EffectContext) EffectResult { return t.result(true) },
			canApply: always,
		},
		AttackBoost: {apply: applyAttackBoost, canApply: hasGold},
		HPRecovery:  {apply: applyHPRecovery, canApply: hasGold},
		Gold: {
			apply: func(t *Tile, p *Player, ctx EffectContext) EffectResult {
				r := t.result(true)
				p.AddGold(t.Value)
				r.GoldGained = t.Value
				return r
			},
			canApply: always,
		},
		EnemyTile: {apply: applyEnemy, canApply: always},
		Thorn: {
			apply: func(t *Tile, p *Player, ctx EffectContext) EffectResult {
				r := t.result(true)
				p.TakeDamage(t.Value)
				r.DamageTaken = t.Value
				return r
			},
			canApply: always,
		},
		Wall: {
			apply: func(t *Tile, p *Player, ctx EffectContext) EffectResult {
				Log.Warn("wall tile reached during path execution", "pos", t.Position)
				return t.result(false)
			},
			canApply: func(*Tile, *Player) bool { return false },
		},
	}
}

func always(*Tile, *Player) bool { return true }

func hasGold(_ *Tile, p *Player) bool { return p.Gold >= 1 }

// ApplyEffect runs the tile's behavior against the player
func (t *Tile) ApplyEffect(p *Player, ctx EffectContext) EffectResult {
	b, ok := tileBehaviors[t.Type]
	if !ok {
		Log.Warn("unknown tile type", "type", t.Type, "pos", t.Position)
		return t.result(false)
	}
	return b.apply(t, p, ctx)
}

// CanApplyEffect reports whether the tile would have an effect without a
// combo waiver
func (t *Tile) CanApplyEffect(p *Player) bool {
	b, ok := tileBehaviors[t.Type]
	if !ok {
		return false
	}
	return b.canApply(t, p)
}

// IsTraversable reports whether a path may cross the tile
func (t *Tile) IsTraversable() bool {
	return t.Type != Wall
}

func (t *Tile) result(applied bool) EffectResult {
	return EffectResult{Position: t.Position, TileType: t.Type, Applied: applied}
}

// payForPickup charges one gold unless a combo waives the cost
func payForPickup(t *Tile, p *Player, ctx EffectContext) (EffectResult, bool) {
	r := t.result(false)
	r.ComboActive = ctx.IsComboActive
	if ctx.IsComboActive {
		return r, true
	}
	if !p.SpendGold(1) {
		return r, false
	}
	r.GoldSpent = 1
	return r, true
}

func applyAttackBoost(t *Tile, p *Player, ctx EffectContext) EffectResult {
	r, ok := payForPickup(t, p, ctx)
	if !ok {
		return r
	}
	p.IncreaseAttackPower(t.Value)
	r.Applied = true
	r.AttackGained = t.Value
	return r
}

func applyHPRecovery(t *Tile, p *Player, ctx EffectContext) EffectResult {
	r, ok := payForPickup(t, p, ctx)
	if !ok {
		return r
	}
	r.Applied = true
	r.HPGained = p.Heal(1)
	return r
}

func applyEnemy(t *Tile, p *Player, ctx EffectContext) EffectResult {
	r := t.result(false)
	e := ctx.Enemy
	if e == nil || !e.IsAlive() {
		Log.Warn("enemy tile without a live enemy", "pos", t.Position, "enemy_id", t.EnemyID)
		return r
	}
	r.Applied = true
	r.DamageDealt = e.TakeDamage(p.AttackPower)
	if !e.IsAlive() {
		r.DefeatedEnemy = e.ID
		return r
	}
	p.TakeDamage(e.AttackPower)
	r.DamageTaken = e.AttackPower
	return r
}

// Clone returns a copy of the tile
func (t *Tile) Clone() *Tile {
	c := *t
	return &c
}
