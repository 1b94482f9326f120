package engine

// EnemyID is a stable handle for an enemy in the board roster. Zero means
// no enemy.
type EnemyID int

const NoEnemy EnemyID = 0

// ActionType is the kind of a timed enemy action
type ActionType string

const (
	ActionAttack             ActionType = "attack"
	ActionDisableAttackBoost ActionType = "disable_attack_boost"
	ActionDisableHeal        ActionType = "disable_heal"
	ActionDisableGold        ActionType = "disable_gold"
	ActionHealSelf           ActionType = "heal_self"
	ActionSpawnThorns        ActionType = "spawn_thorns"
	ActionSpawnWalls         ActionType = "spawn_walls"
	ActionDecreaseAttack     ActionType = "decrease_attack"
	ActionDecreaseGold       ActionType = "decrease_gold"
)

var validActions = map[ActionType]bool{
	ActionAttack:             true,
	ActionDisableAttackBoost: true,
	ActionDisableHeal:        true,
	ActionDisableGold:        true,
	ActionHealSelf:           true,
	ActionSpawnThorns:        true,
	ActionSpawnWalls:         true,
	ActionDecreaseAttack:     true,
	ActionDecreaseGold:       true,
}

// IsValid reports whether a is a known action type
func (a ActionType) IsValid() bool {
	return validActions[a]
}

// ActionEntry is one step of an enemy's cyclic action pattern
type ActionEntry struct {
	Type      ActionType `json:"type" yaml:"type"`
	Value     int        `json:"value" yaml:"value"`
	TurnCount int        `json:"turn_count" yaml:"turn_count"`
}

// Enemy is a combatant placed on the board
type Enemy struct {
	ID                   EnemyID       `json:"id"`
	MaxHP                int           `json:"max_hp"`
	CurrentHP            int           `json:"current_hp"`
	AttackPower          int           `json:"attack_power"`
	IsBoss               bool          `json:"is_boss"`
	Position             Position      `json:"position"`
	Pattern              []ActionEntry `json:"pattern,omitempty"`
	CurrentActionIndex   int           `json:"current_action_index"`
	TurnsSinceLastAction int           `json:"turns_since_last_action"`
}

// NewEnemy creates an enemy at full health from a stage descriptor
func NewEnemy(d EnemyDescriptor) *Enemy {
	maxHP := d.MaxHP
	if maxHP <= 0 {
		Log.Warn("enemy max hp must be positive, using 1", "max_hp", d.MaxHP)
		maxHP = 1
	}
	pattern := make([]ActionEntry, len(d.ActionPattern))
	copy(pattern, d.ActionPattern)
	return &Enemy{
		MaxHP:       maxHP,
		CurrentHP:   maxHP,
		AttackPower: clampEnemyAttack(d.AttackPower),
		IsBoss:      d.IsBoss,
		Pattern:     pattern,
	}
}

func clampEnemyAttack(v int) int {
	switch {
	case v < MinEnemyAttack:
		Log.Warn("enemy attack clamped", "value", v, "min", MinEnemyAttack)
		return MinEnemyAttack
	case v > MaxEnemyAttack:
		Log.Warn("enemy attack clamped", "value", v, "max", MaxEnemyAttack)
		return MaxEnemyAttack
	}
	return v
}

// TakeDamage lowers HP, never below zero, and returns the damage dealt
func (e *Enemy) TakeDamage(amount int) int {
	if amount < 0 {
		Log.Warn("negative damage ignored", "target", "enemy", "id", e.ID, "amount", amount)
		return 0
	}
	before := e.CurrentHP
	e.CurrentHP -= amount
	if e.CurrentHP < 0 {
		e.CurrentHP = 0
	}
	return before - e.CurrentHP
}

// Heal raises HP up to MaxHP and returns the amount restored
func (e *Enemy) Heal(amount int) int {
	if amount < 0 {
		Log.Warn("negative heal ignored", "target", "enemy", "id", e.ID, "amount", amount)
		return 0
	}
	before := e.CurrentHP
	e.CurrentHP += amount
	if e.CurrentHP > e.MaxHP {
		e.CurrentHP = e.MaxHP
	}
	return e.CurrentHP - before
}

func (e *Enemy) IsAlive() bool {
	return e.CurrentHP > 0
}

func (e *Enemy) HasActionPattern() bool {
	return len(e.Pattern) > 0
}

// CurrentAction returns the entry under the cursor
func (e *Enemy) CurrentAction() (ActionEntry, bool) {
	if !e.HasActionPattern() {
		return ActionEntry{}, false
	}
	if e.CurrentActionIndex < 0 || e.CurrentActionIndex >= len(e.Pattern) {
		e.CurrentActionIndex = 0
	}
	return e.Pattern[e.CurrentActionIndex], true
}

// Tick counts one enemy turn and reports whether the current entry is due.
// A due entry must be followed by AdvanceAction once it has fired.
func (e *Enemy) Tick() (ActionEntry, bool) {
	entry, ok := e.CurrentAction()
	if !ok {
		return ActionEntry{}, false
	}
	e.TurnsSinceLastAction++
	return entry, e.TurnsSinceLastAction >= entry.TurnCount
}

// AdvanceAction moves the cursor to the next entry of the cycle
func (e *Enemy) AdvanceAction() {
	if !e.HasActionPattern() {
		return
	}
	e.CurrentActionIndex = (e.CurrentActionIndex + 1) % len(e.Pattern)
	e.TurnsSinceLastAction = 0
}

// TurnsUntilAction counts the enemy turns up to and including the one on
// which the current entry fires: 1 means the next enemy turn. Enemies without
// a pattern report 0.
func (e *Enemy) TurnsUntilAction() int {
	entry, ok := e.CurrentAction()
	if !ok {
		return 0
	}
	left := entry.TurnCount - e.TurnsSinceLastAction
	if left < 0 {
		return 0
	}
	return left
}

// Clone returns an independent copy including the action cursor
func (e *Enemy) Clone() *Enemy {
	c := *e
	c.Pattern = make([]ActionEntry, len(e.Pattern))
	copy(c.Pattern, e.Pattern)
	return &c
}
