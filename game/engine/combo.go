package engine

// ComboTracker follows streaks of consecutive same-type pickups within one
// path. Only AttackBoost and HPRecovery build streaks; Empty tiles are
// transparent and every other type breaks the streak.
type ComboTracker struct {
	last  TileType
	count int
}

func NewComboTracker() *ComboTracker {
	return &ComboTracker{}
}

func isComboEligible(t TileType) bool {
	return t == AttackBoost || t == HPRecovery
}

// IsComboActive reports whether visiting a tile of type t now is free. The
// waiver starts at the third consecutive tile of the same type.
func (c *ComboTracker) IsComboActive(t TileType) bool {
	return isComboEligible(t) && c.last == t && c.count >= 2
}

func (c *ComboTracker) UpdateCombo(t TileType) {
	switch {
	case t == Empty:
	case isComboEligible(t) && c.last == t:
		c.count++
	case isComboEligible(t):
		c.last = t
		c.count = 1
	default:
		c.Reset()
	}
}

func (c *ComboTracker) Count() int {
	return c.count
}

func (c *ComboTracker) Reset() {
	c.last = ""
	c.count = 0
}
