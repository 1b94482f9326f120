package engine

import "testing"

// boardFromLayout builds a board from rows of glyphs. E consumes the next
// enemy from enemies; A and $ carry value 1, ^ deals 1 damage.
func boardFromLayout(t *testing.T, layout []string, enemies ...*Enemy) *Board {
	t.Helper()
	if len(layout) != BoardSize {
		t.Fatalf("layout must have %d rows, got %d", BoardSize, len(layout))
	}
	b := NewBoard()
	next := 0
	for y, row := range layout {
		if len(row) != BoardSize {
			t.Fatalf("row %d must have %d cells, got %d", y, BoardSize, len(row))
		}
		for x, ch := range row {
			pos := Position{X: x, Y: y}
			switch ch {
			case '.':
				b.SetTile(pos, &Tile{Type: Empty})
			case 'A':
				b.SetTile(pos, &Tile{Type: AttackBoost, Value: 1})
			case 'H':
				b.SetTile(pos, &Tile{Type: HPRecovery})
			case '$':
				b.SetTile(pos, &Tile{Type: Gold, Value: 1})
			case '^':
				b.SetTile(pos, &Tile{Type: Thorn, Value: 1})
			case '#':
				b.SetTile(pos, &Tile{Type: Wall})
			case 'E':
				if next >= len(enemies) {
					t.Fatalf("layout has more enemies than provided")
				}
				b.PlaceEnemy(pos, enemies[next])
				next++
			default:
				t.Fatalf("unknown glyph %q", ch)
			}
		}
	}
	return b
}

func testEnemy(hp, attack int, pattern ...ActionEntry) *Enemy {
	return NewEnemy(EnemyDescriptor{MaxHP: hp, AttackPower: attack, ActionPattern: pattern})
}

func testPlayer(hp, gold int) *Player {
	p := NewPlayer(hp, gold, DefaultOneStrokeBonus)
	return p
}

func pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// snakePath visits all 25 cells row by row, ending at (4,4)
func snakePath() []Position {
	var path []Position
	for y := 0; y < BoardSize; y++ {
		for i := 0; i < BoardSize; i++ {
			x := i
			if y%2 == 1 {
				x = BoardSize - 1 - i
			}
			path = append(path, pos(x, y))
		}
	}
	return path
}

// testConfig is a small valid configuration with a single weak enemy per
// stage and no action patterns
func testConfig() *GameConfig {
	cfg := &GameConfig{
		Name:        "test",
		Description: "engine tests",
		Stages: []StageEntry{
			{Stage: 1, Enemies: []EnemyDescriptor{{MaxHP: 2, AttackPower: 1}}},
			{Stage: 2, Enemies: []EnemyDescriptor{{MaxHP: 3, AttackPower: 2}, {MaxHP: 3, AttackPower: 2}}},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}
