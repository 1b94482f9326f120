package engine

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPath        = errors.New("path is empty")
	ErrPathStart        = errors.New("path must start at the player position")
	ErrPathOutOfBounds  = errors.New("path leaves the board")
	ErrPathNotAdjacent  = errors.New("path steps must be orthogonally adjacent")
	ErrPathRevisits     = errors.New("path visits a cell twice")
	ErrPathHitsWall     = errors.New("path crosses a wall")
	ErrPathEndsOffEnemy = errors.New("path must end on an enemy")
)

// ValidatePath checks a candidate stroke and returns the first rule it
// breaks, or nil if it may be executed
func ValidatePath(path []Position, playerPos Position, board *Board) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	if path[0] != playerPos {
		return fmt.Errorf("%w: got %s, player at %s", ErrPathStart, path[0], playerPos)
	}
	for i, pos := range path {
		if !board.IsValidPosition(pos) {
			return fmt.Errorf("%w: step %d at %s", ErrPathOutOfBounds, i, pos)
		}
		if i > 0 && !path[i-1].Adjacent(pos) {
			return fmt.Errorf("%w: %s to %s", ErrPathNotAdjacent, path[i-1], pos)
		}
	}
	seen := make(map[Position]bool, len(path))
	for _, pos := range path {
		if seen[pos] {
			return fmt.Errorf("%w: %s", ErrPathRevisits, pos)
		}
		seen[pos] = true
	}
	for _, pos := range path {
		if t := board.Tile(pos); t != nil && t.Type == Wall {
			return fmt.Errorf("%w: %s", ErrPathHitsWall, pos)
		}
	}
	last := board.Tile(path[len(path)-1])
	if last == nil || last.Type != EnemyTile {
		return ErrPathEndsOffEnemy
	}
	return nil
}

// IsValidPath is the boolean form of ValidatePath
func IsValidPath(path []Position, playerPos Position, board *Board) bool {
	return ValidatePath(path, playerPos, board) == nil
}

// PathPreview predicts the outcome of a stroke without touching game state
type PathPreview struct {
	Valid           bool           `json:"valid"`
	Reason          string         `json:"reason,omitempty"`
	AttackPower     int            `json:"attack_power"`
	OneStrokeBonus  bool           `json:"one_stroke_bonus"`
	GoldSpent       int            `json:"gold_spent"`
	GoldGained      int            `json:"gold_gained"`
	GoldDelta       int            `json:"gold_delta"`
	HPDelta         int            `json:"hp_delta"`
	DamageTaken     int            `json:"damage_taken"`
	EnemiesDefeated []EnemyID      `json:"enemies_defeated,omitempty"`
	StageCleared    bool           `json:"stage_cleared"`
	PlayerSurvives  bool           `json:"player_survives"`
	TileSequence    []TileType     `json:"tile_sequence"`
	Effects         []EffectResult `json:"effects"`
}

// CalculatePathPreview simulates path on copies of the player and board with
// the same combo and bonus rules as real execution. Partial strokes are
// allowed so callers can preview while drawing; cells off the board are
// skipped.
func CalculatePathPreview(path []Position, player *Player, board *Board, stage int, isBoss bool) *PathPreview {
	preview := &PathPreview{Valid: true, PlayerSurvives: player.IsAlive()}
	if err := ValidatePath(path, player.Position, board); err != nil {
		preview.Valid = false
		preview.Reason = err.Error()
	}
	if len(path) == 0 {
		return preview
	}

	p := player.Clone()
	s := &stroke{player: p, board: board.Clone(), stage: stage, isBoss: isBoss, combo: NewComboTracker()}
	preview.OneStrokeBonus = s.begin(len(path))

	for _, pos := range path {
		if !s.board.IsValidPosition(pos) {
			continue
		}
		r, ok := s.step(pos)
		if !ok {
			continue
		}
		preview.TileSequence = append(preview.TileSequence, r.TileType)
		preview.Effects = append(preview.Effects, r)
		preview.GoldSpent += r.GoldSpent
		preview.GoldGained += r.GoldGained
		preview.DamageTaken += r.DamageTaken
		if r.DefeatedEnemy != NoEnemy {
			preview.EnemiesDefeated = append(preview.EnemiesDefeated, r.DefeatedEnemy)
			s.board.RemoveEnemy(r.DefeatedEnemy)
			s.board.SetTile(pos, &Tile{Type: Empty})
			if s.board.EnemyCount() == 0 {
				preview.StageCleared = true
			}
		}
		if !p.IsAlive() {
			break
		}
	}

	preview.AttackPower = p.AttackPower
	preview.GoldDelta = p.Gold - player.Gold
	preview.HPDelta = p.CurrentHP - player.CurrentHP
	preview.PlayerSurvives = p.IsAlive()
	return preview
}

// stroke is the per-tile loop shared by execution and preview
type stroke struct {
	player *Player
	board  *Board
	stage  int
	isBoss bool
	combo  *ComboTracker
}

// begin sets the movement attack for a path of length n and reports whether
// the full-board bonus was granted
func (s *stroke) begin(n int) bool {
	s.player.ResetAttackPower()
	s.player.IncreaseAttackPower(n)
	if n == FullStrokeLength {
		s.player.IncreaseAttackPower(s.player.OneStrokeBonus)
		return true
	}
	return false
}

// step moves the player onto pos and applies its tile. ok is false when the
// cell has no tile.
func (s *stroke) step(pos Position) (EffectResult, bool) {
	s.player.Position = pos
	tile := s.board.Tile(pos)
	if tile == nil {
		Log.Warn("no tile at path position", "pos", pos)
		return EffectResult{}, false
	}
	ctx := EffectContext{
		IsComboActive: s.combo.IsComboActive(tile.Type),
		CurrentStage:  s.stage,
		IsBossStage:   s.isBoss,
	}
	if tile.Type == EnemyTile {
		ctx.Enemy = s.board.Enemy(tile.EnemyID)
	}
	s.combo.UpdateCombo(tile.Type)
	return tile.ApplyEffect(s.player, ctx), true
}
