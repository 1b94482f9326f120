package engine

import "testing"

func TestTileEffects(t *testing.T) {
	tests := []struct {
		name       string
		tile       Tile
		gold       int
		hp         int
		combo      bool
		wantApply  bool
		wantGold   int
		wantAttack int
		wantHP     int
	}{
		{"empty does nothing", Tile{Type: Empty}, 3, 3, false, true, 3, 0, 3},
		{"attack boost costs one gold", Tile{Type: AttackBoost, Value: 2}, 3, 3, false, true, 2, 2, 3},
		{"attack boost refused without gold", Tile{Type: AttackBoost, Value: 2}, 0, 3, false, false, 0, 0, 3},
		{"attack boost free in combo", Tile{Type: AttackBoost, Value: 2}, 0, 3, true, true, 0, 2, 3},
		{"hp recovery heals one", Tile{Type: HPRecovery}, 1, 3, false, true, 0, 0, 4},
		{"hp recovery capped at max", Tile{Type: HPRecovery}, 1, 5, false, true, 0, 0, 5},
		{"hp recovery refused without gold", Tile{Type: HPRecovery}, 0, 3, false, false, 0, 0, 3},
		{"gold adds value", Tile{Type: Gold, Value: 3}, 0, 3, false, true, 3, 0, 3},
		{"thorn hurts", Tile{Type: Thorn, Value: 2}, 0, 3, false, true, 0, 0, 1},
		{"wall refuses", Tile{Type: Wall}, 5, 3, false, false, 5, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPlayer(5, tt.gold)
			p.CurrentHP = tt.hp
			tile := tt.tile
			res := tile.ApplyEffect(p, EffectContext{IsComboActive: tt.combo})
			if res.Applied != tt.wantApply {
				t.Errorf("Applied = %v, want %v", res.Applied, tt.wantApply)
			}
			if p.Gold != tt.wantGold {
				t.Errorf("gold = %d, want %d", p.Gold, tt.wantGold)
			}
			if p.AttackPower != tt.wantAttack {
				t.Errorf("attack = %d, want %d", p.AttackPower, tt.wantAttack)
			}
			if p.CurrentHP != tt.wantHP {
				t.Errorf("hp = %d, want %d", p.CurrentHP, tt.wantHP)
			}
		})
	}
}

func TestEnemyTileCombat(t *testing.T) {
	t.Run("survivor counter attacks", func(t *testing.T) {
		p := testPlayer(5, 0)
		p.AttackPower = 3
		e := testEnemy(10, 2)
		e.ID = 1
		tile := &Tile{Type: EnemyTile, EnemyID: 1}

		res := tile.ApplyEffect(p, EffectContext{Enemy: e})
		if e.CurrentHP != 7 {
			t.Errorf("enemy hp = %d, want 7", e.CurrentHP)
		}
		if p.CurrentHP != 3 {
			t.Errorf("player hp = %d, want 3", p.CurrentHP)
		}
		if res.DefeatedEnemy != NoEnemy {
			t.Errorf("expected no defeat, got %d", res.DefeatedEnemy)
		}
	})

	t.Run("defeated enemy does not strike", func(t *testing.T) {
		p := testPlayer(5, 0)
		p.AttackPower = 5
		e := testEnemy(3, 4)
		e.ID = 7
		tile := &Tile{Type: EnemyTile, EnemyID: 7}

		res := tile.ApplyEffect(p, EffectContext{Enemy: e})
		if res.DefeatedEnemy != 7 {
			t.Errorf("DefeatedEnemy = %d, want 7", res.DefeatedEnemy)
		}
		if p.CurrentHP != 5 {
			t.Errorf("player hp = %d, want 5", p.CurrentHP)
		}
		if res.DamageDealt != 3 {
			t.Errorf("DamageDealt = %d, want 3", res.DamageDealt)
		}
	})

	t.Run("missing enemy is a no-op", func(t *testing.T) {
		p := testPlayer(5, 0)
		tile := &Tile{Type: EnemyTile, EnemyID: 9}
		if res := tile.ApplyEffect(p, EffectContext{}); res.Applied {
			t.Error("expected no effect without an enemy")
		}
	})
}

func TestCanApplyEffect(t *testing.T) {
	rich, broke := testPlayer(5, 1), testPlayer(5, 0)
	cases := []struct {
		tile        Tile
		rich, broke bool
	}{
		{Tile{Type: AttackBoost}, true, false},
		{Tile{Type: HPRecovery}, true, false},
		{Tile{Type: Gold}, true, true},
		{Tile{Type: Wall}, false, false},
		{Tile{Type: TileType("lava")}, false, false},
	}
	for _, c := range cases {
		if got := c.tile.CanApplyEffect(rich); got != c.rich {
			t.Errorf("%s with gold: got %v, want %v", c.tile.Type, got, c.rich)
		}
		if got := c.tile.CanApplyEffect(broke); got != c.broke {
			t.Errorf("%s without gold: got %v, want %v", c.tile.Type, got, c.broke)
		}
	}
}

func TestEnemyAttackClamped(t *testing.T) {
	if e := testEnemy(5, 0); e.AttackPower != MinEnemyAttack {
		t.Errorf("attack 0 clamped to %d, want %d", e.AttackPower, MinEnemyAttack)
	}
	if e := testEnemy(5, 9); e.AttackPower != MaxEnemyAttack {
		t.Errorf("attack 9 clamped to %d, want %d", e.AttackPower, MaxEnemyAttack)
	}
}

func TestPlayerIgnoresNegativeAmounts(t *testing.T) {
	p := testPlayer(5, 10)
	p.CurrentHP = 3
	p.TakeDamage(-2)
	p.Heal(-2)
	p.AddGold(-4)
	if p.CurrentHP != 3 || p.Gold != 10 {
		t.Errorf("negative amounts changed player: hp %d gold %d", p.CurrentHP, p.Gold)
	}
	p.TakeDamage(10)
	if p.CurrentHP != 0 || p.IsAlive() {
		t.Errorf("expected hp floored at 0, got %d", p.CurrentHP)
	}
}
