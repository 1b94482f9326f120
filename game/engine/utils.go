package engine

import (
	"fmt"
	"strings"
)

// CountTileType counts the tiles of a specific type on the board
func CountTileType(board *Board, t TileType) int {
	return len(board.PositionsOf(t))
}

// NearestEnemy finds the live enemy closest to the player
func NearestEnemy(state *GameState) (*Enemy, int, bool) {
	var nearest *Enemy
	minDistance := -1
	for _, e := range state.Board.Enemies() {
		d := ManhattanDistance(state.Player.Position, e.Position)
		if minDistance == -1 || d < minDistance {
			nearest, minDistance = e, d
		}
	}
	return nearest, minDistance, nearest != nil
}

// IncomingDamage is the direct attack damage enemies will deal on the next
// enemy turn
func IncomingDamage(state *GameState) int {
	total := 0
	for _, e := range state.Board.Enemies() {
		entry, ok := e.CurrentAction()
		if ok && entry.Type == ActionAttack && e.TurnsUntilAction() <= 1 {
			total += entry.Value
		}
	}
	return total
}

// AnalyzeThreat assesses how dangerous the next turn is for the player
func AnalyzeThreat(state *GameState) string {
	p := state.Player
	if !p.IsAlive() {
		return "CRITICAL: Player is down!"
	}

	strongest := 0
	for _, e := range state.Board.Enemies() {
		if e.AttackPower > strongest {
			strongest = e.AttackPower
		}
	}
	incoming := IncomingDamage(state)

	switch {
	case p.CurrentHP <= incoming:
		return "DANGER: Enemy attacks next turn will finish you!"
	case p.CurrentHP <= strongest+incoming:
		return "CAUTION: A failed kill plus enemy actions is lethal"
	case p.Gold == 0:
		return "LOW: No gold, pickups only work inside combos"
	}
	return "SAFE: HP sufficient"
}

var tileGlyphs = map[TileType]string{
	Empty:       ".",
	AttackBoost: "A",
	HPRecovery:  "H",
	Gold:        "$",
	EnemyTile:   "E",
	Thorn:       "^",
	Wall:        "#",
}

// TileGlyph returns the single character used to draw a tile
func TileGlyph(t *Tile, board *Board) string {
	if t == nil {
		return "?"
	}
	if t.Type == EnemyTile {
		if e := board.Enemy(t.EnemyID); e != nil && e.IsBoss {
			return "B"
		}
	}
	if g, ok := tileGlyphs[t.Type]; ok {
		return g
	}
	return "?"
}

// RenderBoard draws the board as text, marking the player with @
func RenderBoard(state *GameState) string {
	var sb strings.Builder
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			pos := Position{X: x, Y: y}
			glyph := TileGlyph(state.Board.Tile(pos), state.Board)
			if pos == state.Player.Position {
				glyph = "@"
			}
			sb.WriteString(glyph)
			if x < BoardSize-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	for _, e := range state.Board.Enemies() {
		fmt.Fprintf(&sb, "enemy %d at %s hp %d/%d atk %d", e.ID, e.Position, e.CurrentHP, e.MaxHP, e.AttackPower)
		if next, ok := e.CurrentAction(); ok {
			fmt.Fprintf(&sb, " next %s(%d) in %d", next.Type, next.Value, e.TurnsUntilAction())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
