package engine

import "testing"

func newTestResolver(seed int64) *TurnResolver {
	rng := NewRNG(seed)
	return NewTurnResolver(rng, NewTileFactory(rng))
}

func TestOneStrokeBonus(t *testing.T) {
	b := boardFromLayout(t, []string{
		".....",
		".....",
		".....",
		".....",
		"....E",
	}, testEnemy(100, 1))
	p := testPlayer(5, 0)
	p.OneStrokeBonus = 7

	out := newTestResolver(1).ExecutePath(snakePath(), p, b, DefaultSpawnConfig(), 1, false)
	if !out.OneStrokeBonus {
		t.Error("expected the full stroke bonus")
	}
	if out.AttackPower != FullStrokeLength+7 {
		t.Errorf("attack = %d, want %d", out.AttackPower, FullStrokeLength+7)
	}
	if got := b.Enemy(1).CurrentHP; got != 100-32 {
		t.Errorf("enemy hp = %d, want %d", got, 100-32)
	}
}

func TestNoBonusForShortStroke(t *testing.T) {
	b := boardFromLayout(t, []string{
		".E...",
		".....",
		".....",
		".....",
		".....",
	}, testEnemy(100, 1))
	p := testPlayer(5, 0)
	out := newTestResolver(1).ExecutePath([]Position{pos(0, 0), pos(1, 0)}, p, b, DefaultSpawnConfig(), 1, false)
	if out.OneStrokeBonus || out.AttackPower != 2 {
		t.Errorf("bonus %v attack %d, want no bonus and 2", out.OneStrokeBonus, out.AttackPower)
	}
}

func TestEnemyDefeatClearsStage(t *testing.T) {
	b := boardFromLayout(t, []string{
		"..E..",
		".....",
		".....",
		".....",
		".....",
	}, testEnemy(3, 2))
	p := testPlayer(5, 2)
	p.AttackPower = 99

	path := []Position{pos(0, 0), pos(1, 0), pos(2, 0)}
	out := newTestResolver(2).ExecutePath(path, p, b, DefaultSpawnConfig(), 1, false)

	if len(out.Defeated) != 1 || out.Defeated[0] != 1 {
		t.Fatalf("defeated = %v, want [1]", out.Defeated)
	}
	if !out.StageCleared {
		t.Error("expected stage clear after last enemy fell")
	}
	if b.EnemyCount() != 0 {
		t.Errorf("roster still has %d enemies", b.EnemyCount())
	}
	if b.Tile(pos(2, 0)).Type == EnemyTile {
		t.Error("defeated enemy tile not replaced")
	}
	if p.CurrentHP != 5 {
		t.Errorf("player took damage from a defeated enemy: hp %d", p.CurrentHP)
	}
}

func TestRefillAfterStroke(t *testing.T) {
	survivor := testEnemy(50, 1,
		ActionEntry{Type: ActionAttack, Value: 1, TurnCount: 3},
		ActionEntry{Type: ActionHealSelf, Value: 2, TurnCount: 2},
	)
	survivor.CurrentActionIndex = 1
	survivor.TurnsSinceLastAction = 1
	b := boardFromLayout(t, []string{
		".^$E.",
		".....",
		"....E",
		".....",
		".....",
	}, survivor, testEnemy(50, 1))
	p := testPlayer(5, 0)
	path := []Position{pos(0, 0), pos(1, 0), pos(2, 0), pos(3, 0)}
	spawn := SpawnConfig{GoldRate: 1, GoldRange: IntRange{Min: 9, Max: 9}}

	out := newTestResolver(4).ExecutePath(path, p, b, spawn, 1, false)

	if p.Position != pos(3, 0) {
		t.Fatalf("player at %s, want (3,0)", p.Position)
	}
	if got := b.Tile(pos(3, 0)).Type; got != Empty {
		t.Errorf("player cell is %s, want empty", got)
	}
	if len(out.Regenerated) != 4 {
		t.Errorf("regenerated %d cells, want 4", len(out.Regenerated))
	}
	for _, c := range []Position{pos(0, 0), pos(1, 0), pos(2, 0)} {
		tile := b.Tile(c)
		if tile.Type != Gold && tile.Type != EnemyTile {
			t.Errorf("cell %s not refilled: %s", c, tile.Type)
		}
	}

	// the survivor moved off the player's cell onto a refilled one
	if len(out.Relocations) != 1 {
		t.Fatalf("relocations = %+v, want one", out.Relocations)
	}
	rel := out.Relocations[0]
	if rel.From != pos(3, 0) || rel.To == p.Position {
		t.Errorf("bad relocation %+v", rel)
	}
	e := b.Enemy(rel.EnemyID)
	if e.Position != rel.To || e.CurrentHP != 46 {
		t.Errorf("relocated enemy %+v, want hp 46 at %s", e, rel.To)
	}
	if e.CurrentActionIndex != 1 || e.TurnsSinceLastAction != 1 {
		t.Errorf("relocation reset the action cursor: index %d turns %d", e.CurrentActionIndex, e.TurnsSinceLastAction)
	}
	if next, ok := e.CurrentAction(); !ok || next.Type != ActionHealSelf {
		t.Errorf("relocated enemy next action = %+v, want heal_self", next)
	}
	if b.Tile(rel.To).Type != EnemyTile || b.Tile(rel.To).EnemyID != e.ID {
		t.Error("relocation target does not reference the enemy")
	}
	if err := b.checkIntegrity(); err != nil {
		t.Error(err)
	}
}

func TestStrokeAbortsOnDeath(t *testing.T) {
	b := boardFromLayout(t, []string{
		".^^^E",
		".....",
		".....",
		".....",
		".....",
	}, testEnemy(50, 1))
	p := testPlayer(5, 0)
	p.CurrentHP = 2

	path := []Position{pos(0, 0), pos(1, 0), pos(2, 0), pos(3, 0), pos(4, 0)}
	out := newTestResolver(6).ExecutePath(path, p, b, DefaultSpawnConfig(), 1, false)

	if !out.GameOver {
		t.Fatal("expected game over")
	}
	if len(out.Visited) != 3 {
		t.Errorf("visited %d cells, want 3", len(out.Visited))
	}
	if p.Position != pos(2, 0) {
		t.Errorf("player stopped at %s, want (2,0)", p.Position)
	}
	if b.Enemy(1).CurrentHP != 50 {
		t.Error("enemy must not be hit after the player died")
	}
}

func TestExecuteEmptyPathIsNoop(t *testing.T) {
	b := NewBoard()
	p := testPlayer(5, 0)
	out := newTestResolver(1).ExecutePath(nil, p, b, DefaultSpawnConfig(), 1, false)
	if len(out.Effects) != 0 || out.GameOver || out.StageCleared {
		t.Errorf("unexpected outcome %+v", out)
	}
}
