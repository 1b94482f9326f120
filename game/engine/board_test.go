package engine

import (
	"encoding/json"
	"testing"
)

func TestBoardClearIsIdempotent(t *testing.T) {
	b := boardFromLayout(t, []string{
		"....E",
		".....",
		"..E..",
		".....",
		".....",
	}, testEnemy(3, 1), testEnemy(3, 1))

	for i := 0; i < 2; i++ {
		b.Clear()
		if b.EnemyCount() != 0 {
			t.Errorf("clear %d: %d enemies remain", i+1, b.EnemyCount())
		}
		for _, p := range AllPositions() {
			if b.Tile(p) != nil {
				t.Fatalf("clear %d: tile left at %s", i+1, p)
			}
		}
	}
}

func TestBoardSetTile(t *testing.T) {
	b := NewBoard()
	b.SetTile(pos(5, 0), &Tile{Type: Gold})
	b.SetTile(pos(-1, 2), &Tile{Type: Gold})
	if n := len(b.PositionsOf(Gold)); n != 0 {
		t.Errorf("out of range set placed %d tiles", n)
	}

	tile := &Tile{Type: Gold, Value: 2}
	b.SetTile(pos(3, 1), tile)
	if tile.Position != pos(3, 1) {
		t.Errorf("tile position = %s, want (3,1)", tile.Position)
	}
	if b.Tile(pos(3, 1)) != tile {
		t.Error("tile not stored")
	}
	if b.Tile(pos(9, 9)) != nil {
		t.Error("expected nil for off-board lookup")
	}
}

func TestRegenerateSkipsWalls(t *testing.T) {
	b := boardFromLayout(t, []string{
		"#$$$#",
		".....",
		".....",
		".....",
		".....",
	})
	f := NewTileFactory(NewRNG(5))
	cfg := SpawnConfig{EmptyRate: 1}

	changed := b.RegenerateTiles([]Position{pos(0, 0), pos(1, 0), pos(2, 0), pos(4, 0)}, f, cfg)
	if len(changed) != 2 {
		t.Errorf("expected 2 regenerated cells, got %v", changed)
	}
	if b.Tile(pos(0, 0)).Type != Wall || b.Tile(pos(4, 0)).Type != Wall {
		t.Error("walls must never be regenerated")
	}
	if b.Tile(pos(1, 0)).Type != Empty || b.Tile(pos(3, 0)).Type != Gold {
		t.Error("only listed non-wall cells should change")
	}
}

func TestBoardRosterAndJSON(t *testing.T) {
	boss := testEnemy(9, 3, ActionEntry{Type: ActionAttack, Value: 1, TurnCount: 2})
	boss.IsBoss = true
	b := boardFromLayout(t, []string{
		".....",
		".E...",
		"..E..",
		".....",
		".....",
	}, testEnemy(3, 1), boss)

	enemies := b.Enemies()
	if len(enemies) != 2 || enemies[0].ID != 1 || enemies[1].ID != 2 {
		t.Fatalf("unexpected roster %+v", enemies)
	}
	if b.EnemyAt(pos(2, 2)) != boss {
		t.Error("EnemyAt did not resolve the boss")
	}

	boss.Tick()
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored Board
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := restored.EnemyAt(pos(2, 2))
	if got == nil || !got.IsBoss || got.TurnsSinceLastAction != 1 {
		t.Errorf("boss not restored with its cursor: %+v", got)
	}
	if id := restored.AddEnemy(testEnemy(1, 1)); id != 3 {
		t.Errorf("next enemy id = %d, want 3", id)
	}

	b.RemoveEnemy(1)
	if b.EnemyCount() != 1 || b.Enemy(1) != nil {
		t.Error("enemy 1 still in roster")
	}
}

func TestBoardUnmarshalRejectsDanglingEnemy(t *testing.T) {
	b := boardFromLayout(t, []string{
		".....",
		".E...",
		".....",
		".....",
		".....",
	}, testEnemy(3, 1))
	b.RemoveEnemy(1)
	data, _ := json.Marshal(b)

	var restored Board
	if err := json.Unmarshal(data, &restored); err == nil {
		t.Error("expected error for enemy tile without roster entry")
	}
}
