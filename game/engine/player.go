package engine

// Player holds the combat attributes carried across the whole run
type Player struct {
	MaxHP          int      `json:"max_hp"`
	CurrentHP      int      `json:"current_hp"`
	Gold           int      `json:"gold"`
	AttackPower    int      `json:"attack_power"`
	OneStrokeBonus int      `json:"one_stroke_bonus"`
	Position       Position `json:"position"`
}

// NewPlayer creates a player at full health
func NewPlayer(maxHP, gold, oneStrokeBonus int) *Player {
	if maxHP <= 0 {
		maxHP = DefaultPlayerMaxHP
	}
	if gold < 0 {
		gold = 0
	}
	if oneStrokeBonus < 0 {
		oneStrokeBonus = 0
	}
	return &Player{
		MaxHP:          maxHP,
		CurrentHP:      maxHP,
		Gold:           gold,
		OneStrokeBonus: oneStrokeBonus,
	}
}

// TakeDamage lowers HP, never below zero
func (p *Player) TakeDamage(amount int) {
	if amount < 0 {
		Log.Warn("negative damage ignored", "target", "player", "amount", amount)
		return
	}
	p.CurrentHP -= amount
	if p.CurrentHP < 0 {
		p.CurrentHP = 0
	}
}

// Heal raises HP up to MaxHP and returns the amount actually restored
func (p *Player) Heal(amount int) int {
	if amount < 0 {
		Log.Warn("negative heal ignored", "target", "player", "amount", amount)
		return 0
	}
	before := p.CurrentHP
	p.CurrentHP += amount
	if p.CurrentHP > p.MaxHP {
		p.CurrentHP = p.MaxHP
	}
	return p.CurrentHP - before
}

func (p *Player) AddGold(amount int) {
	if amount < 0 {
		Log.Warn("negative gold ignored", "amount", amount)
		return
	}
	p.Gold += amount
}

// SpendGold removes amount if the player can afford it
func (p *Player) SpendGold(amount int) bool {
	if amount < 0 {
		Log.Warn("negative spend ignored", "amount", amount)
		return false
	}
	if p.Gold < amount {
		return false
	}
	p.Gold -= amount
	return true
}

func (p *Player) IncreaseAttackPower(amount int) {
	if amount < 0 {
		Log.Warn("negative attack gain ignored", "amount", amount)
		return
	}
	p.AttackPower += amount
}

func (p *Player) ResetAttackPower() {
	p.AttackPower = 0
}

func (p *Player) IncreaseOneStrokeBonus(amount int) {
	if amount < 0 {
		Log.Warn("negative bonus ignored", "amount", amount)
		return
	}
	p.OneStrokeBonus += amount
}

func (p *Player) IsAlive() bool {
	return p.CurrentHP > 0
}

// Clone returns an independent copy
func (p *Player) Clone() *Player {
	c := *p
	return &c
}
