package engine

import (
	"errors"
	"testing"
)

func twoLevelRewards() []RewardDefinition {
	lvl := func(v int) RewardLevel {
		return RewardLevel{Name: "lvl", AppearanceWeight: 1, ValueChange: v, SpawnRateChange: 0.05}
	}
	return []RewardDefinition{
		{Kind: RewardGoldGet, Levels: []RewardLevel{lvl(5), lvl(10)}},
		{Kind: RewardOneStrokeBonus, Levels: []RewardLevel{lvl(2), lvl(2), lvl(2)}},
		{Kind: RewardGoldRate, Levels: []RewardLevel{lvl(0)}},
	}
}

func TestRewardLeveling(t *testing.T) {
	r := NewRewardEngine(NewRNG(1), twoLevelRewards())
	spawn := DefaultSpawnConfig()
	p := testPlayer(5, 0)

	for i, wantGold := range []int{5, 15} {
		if _, err := r.Apply(RewardGoldGet, &spawn, p); err != nil {
			t.Fatalf("apply %d: %v", i+1, err)
		}
		if r.Level(RewardGoldGet) != i+1 {
			t.Errorf("level after %d applications = %d", i+1, r.Level(RewardGoldGet))
		}
		if p.Gold != wantGold {
			t.Errorf("gold = %d, want %d", p.Gold, wantGold)
		}
	}

	if _, err := r.Apply(RewardGoldGet, &spawn, p); !errors.Is(err, ErrRewardMaxed) {
		t.Errorf("third application: got %v, want ErrRewardMaxed", err)
	}
	for i := 0; i < 50; i++ {
		for _, o := range r.Candidates(3) {
			if o.Kind == RewardGoldGet {
				t.Fatal("maxed reward offered")
			}
		}
	}
}

func TestRewardCandidatesSkipUnknownKinds(t *testing.T) {
	defs := append(twoLevelRewards(), RewardDefinition{
		Kind:   "double_gold",
		Levels: []RewardLevel{{Name: "Double", AppearanceWeight: 100}},
	})
	r := NewRewardEngine(NewRNG(9), defs)
	spawn := DefaultSpawnConfig()
	p := testPlayer(5, 0)

	for i := 0; i < 50; i++ {
		offers := r.Candidates(4)
		if len(offers) != 3 {
			t.Fatalf("got %d offers, want the 3 known kinds", len(offers))
		}
		for _, o := range offers {
			if o.Kind == "double_gold" {
				t.Fatal("unknown reward kind offered")
			}
			if _, err := NewRewardEngine(NewRNG(1), defs).Apply(o.Kind, &spawn, p); err != nil {
				t.Fatalf("offered reward %s cannot be applied: %v", o.Kind, err)
			}
		}
	}
}

func TestRewardCandidatesDistinct(t *testing.T) {
	r := NewRewardEngine(NewRNG(3), DefaultRewards())
	for i := 0; i < 100; i++ {
		offers := r.Candidates(3)
		if len(offers) != 3 {
			t.Fatalf("got %d offers, want 3", len(offers))
		}
		seen := map[RewardKind]bool{}
		for _, o := range offers {
			if seen[o.Kind] {
				t.Fatalf("duplicate kind %s in %+v", o.Kind, offers)
			}
			seen[o.Kind] = true
		}
	}

	small := NewRewardEngine(NewRNG(3), twoLevelRewards())
	if n := len(small.Candidates(10)); n != 3 {
		t.Errorf("offers capped by pool size: got %d, want 3", n)
	}
}

func TestRewardEffects(t *testing.T) {
	r := NewRewardEngine(NewRNG(1), DefaultRewards())
	spawn := DefaultSpawnConfig()
	p := testPlayer(5, 0)
	p.CurrentHP = 1

	if _, err := r.Apply(RewardHPRecover, &spawn, p); err != nil {
		t.Fatal(err)
	}
	if p.CurrentHP != 3 {
		t.Errorf("hp = %d, want 3", p.CurrentHP)
	}
	if _, err := r.Apply(RewardOneStrokeBonus, &spawn, p); err != nil {
		t.Fatal(err)
	}
	if p.OneStrokeBonus != DefaultOneStrokeBonus+3 {
		t.Errorf("bonus = %d", p.OneStrokeBonus)
	}
	before := spawn.AttackBoostRate
	if _, err := r.Apply(RewardAttackBoostRate, &spawn, p); err != nil {
		t.Fatal(err)
	}
	if spawn.AttackBoostRate <= before {
		t.Error("attack boost rate did not increase")
	}
	if _, err := r.Apply(RewardKind("nope"), &spawn, p); !errors.Is(err, ErrUnknownReward) {
		t.Errorf("got %v, want ErrUnknownReward", err)
	}
}
