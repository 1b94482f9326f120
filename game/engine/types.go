package engine

import "fmt"

// TileType identifies the behavior of a board cell
type TileType string

const (
	Empty       TileType = "empty"
	AttackBoost TileType = "attack_boost"
	HPRecovery  TileType = "hp_recovery"
	Gold        TileType = "gold"
	EnemyTile   TileType = "enemy"
	Thorn       TileType = "thorn"
	Wall        TileType = "wall"
)

// Phase is a step of the turn loop
type Phase string

const (
	PhasePathDrawing     Phase = "path_drawing"
	PhasePathExecution   Phase = "path_execution"
	PhaseEnemyAction     Phase = "enemy_action"
	PhaseStageCleared    Phase = "stage_cleared"
	PhaseRewardSelection Phase = "reward_selection"
	PhaseGameOver        Phase = "game_over"
)

const (
	BoardSize        = 5
	FullStrokeLength = BoardSize * BoardSize

	DefaultPlayerMaxHP       = 5
	DefaultInitialGold       = 50
	DefaultOneStrokeBonus    = 5
	DefaultRewardChoices     = 3
	DefaultBossStageInterval = 10
	DefaultThornDamage       = 1

	MinEnemyAttack     = 1
	MaxEnemyAttack     = 4
	MaxEnemiesPerStage = 3
)

// Position represents x,y coordinates on the board
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Adjacent reports whether q is one orthogonal step away from p
func (p Position) Adjacent(q Position) bool {
	return ManhattanDistance(p, q) == 1
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// IntRange is an inclusive integer interval
type IntRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// AllPositions returns every board position in row-major order
func AllPositions() []Position {
	out := make([]Position, 0, FullStrokeLength)
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			out = append(out, Position{X: x, Y: y})
		}
	}
	return out
}
