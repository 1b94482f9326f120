package engine

// TileFactory builds tiles, either sampled from a SpawnConfig or of a fixed
// kind for system-driven placement
type TileFactory struct {
	rng *RNG
}

func NewTileFactory(rng *RNG) *TileFactory {
	return &TileFactory{rng: rng}
}

// CreateRandomTile samples one generated tile type by cumulative probability
// in the order Empty, AttackBoost, HPRecovery, Gold. A sample past the end of
// a short table falls back to Empty.
func (f *TileFactory) CreateRandomTile(cfg SpawnConfig) *Tile {
	x := f.rng.Float64()
	cumulative := 0.0
	for _, t := range []TileType{Empty, AttackBoost, HPRecovery, Gold} {
		cumulative += cfg.Rate(t)
		if x < cumulative {
			return f.CreateTileByType(t, cfg, nil)
		}
	}
	Log.Debug("spawn sample past cumulative rates, using empty", "sample", x, "sum", cumulative)
	return f.CreateEmptyTile()
}

// CreateTileByType builds a tile of the given type. override replaces the
// sampled value for AttackBoost and Gold, and the damage for Thorn.
func (f *TileFactory) CreateTileByType(t TileType, cfg SpawnConfig, override *int) *Tile {
	switch t {
	case AttackBoost:
		v := f.sample(cfg.AttackBoostRange, override)
		return &Tile{Type: AttackBoost, Value: v}
	case Gold:
		v := f.sample(cfg.GoldRange, override)
		return &Tile{Type: Gold, Value: v}
	case HPRecovery:
		return &Tile{Type: HPRecovery}
	case Thorn:
		dmg := DefaultThornDamage
		if override != nil {
			dmg = *override
		}
		return f.CreateThornTile(dmg)
	case Wall:
		return f.CreateWallTile()
	case Empty:
		return f.CreateEmptyTile()
	}
	Log.Warn("cannot create tile by type", "type", t)
	return f.CreateEmptyTile()
}

func (f *TileFactory) sample(r IntRange, override *int) int {
	if override != nil {
		return *override
	}
	return f.rng.IntRange(r.Min, r.Max)
}

func (f *TileFactory) CreateThornTile(damage int) *Tile {
	if damage < 0 {
		Log.Warn("negative thorn damage, using default", "damage", damage)
		damage = DefaultThornDamage
	}
	return &Tile{Type: Thorn, Value: damage}
}

func (f *TileFactory) CreateWallTile() *Tile {
	return &Tile{Type: Wall}
}

func (f *TileFactory) CreateEmptyTile() *Tile {
	return &Tile{Type: Empty}
}

// CreateEnemyTile builds the tile that places an enemy on the board
func (f *TileFactory) CreateEnemyTile(id EnemyID) *Tile {
	return &Tile{Type: EnemyTile, EnemyID: id}
}
