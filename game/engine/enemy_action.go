package engine

// ActionReport describes one fired enemy action
type ActionReport struct {
	EnemyID     EnemyID    `json:"enemy_id"`
	Action      ActionType `json:"action"`
	Value       int        `json:"value"`
	Changed     []Position `json:"changed,omitempty"`
	DamageDealt int        `json:"damage_dealt,omitempty"`
	Healed      int        `json:"healed,omitempty"`
}

// EnemyActionEngine advances enemy action patterns once per turn
type EnemyActionEngine struct {
	rng     *RNG
	factory *TileFactory
}

func NewEnemyActionEngine(rng *RNG, factory *TileFactory) *EnemyActionEngine {
	return &EnemyActionEngine{rng: rng, factory: factory}
}

// RunEnemyTurn ticks every enemy in roster order and fires the entries that
// are due. Each action completes before the next enemy is evaluated; nothing
// fires once the player is dead.
func (a *EnemyActionEngine) RunEnemyTurn(board *Board, player *Player, spawn SpawnConfig) []ActionReport {
	var reports []ActionReport
	for _, e := range board.Enemies() {
		if !player.IsAlive() {
			break
		}
		entry, due := e.Tick()
		if !due {
			continue
		}
		reports = append(reports, a.fire(e, entry, board, player, spawn))
		e.AdvanceAction()
	}
	return reports
}

func (a *EnemyActionEngine) fire(e *Enemy, entry ActionEntry, board *Board, player *Player, spawn SpawnConfig) ActionReport {
	rep := ActionReport{EnemyID: e.ID, Action: entry.Type, Value: entry.Value}
	if entry.Value < 0 {
		Log.Warn("negative action value ignored", "enemy_id", e.ID, "action", entry.Type, "value", entry.Value)
		return rep
	}

	switch entry.Type {
	case ActionAttack:
		player.TakeDamage(entry.Value)
		rep.DamageDealt = entry.Value
	case ActionDisableAttackBoost:
		rep.Changed = a.disable(board, AttackBoost, entry.Value)
	case ActionDisableHeal:
		rep.Changed = a.disable(board, HPRecovery, entry.Value)
	case ActionDisableGold:
		rep.Changed = a.disable(board, Gold, entry.Value)
	case ActionHealSelf:
		rep.Healed = e.Heal(entry.Value)
	case ActionSpawnThorns:
		rep.Changed = a.spawn(board, player.Position, entry.Value, func() *Tile {
			return a.factory.CreateThornTile(DefaultThornDamage)
		})
	case ActionSpawnWalls:
		rep.Changed = a.spawn(board, player.Position, entry.Value, a.factory.CreateWallTile)
	case ActionDecreaseAttack:
		rep.Changed = a.decrease(board, AttackBoost, entry.Value, spawn)
	case ActionDecreaseGold:
		rep.Changed = a.decrease(board, Gold, entry.Value, spawn)
	default:
		Log.Warn("unknown enemy action", "enemy_id", e.ID, "action", entry.Type)
	}
	return rep
}

// disable turns up to n random tiles of type t into empty tiles
func (a *EnemyActionEngine) disable(board *Board, t TileType, n int) []Position {
	targets := board.PositionsOf(t)
	a.rng.ShufflePositions(targets)
	if n < len(targets) {
		targets = targets[:n]
	}
	for _, pos := range targets {
		board.SetTile(pos, a.factory.CreateEmptyTile())
	}
	return targets
}

// spawn places up to n obstacles on random empty cells, never under the player
func (a *EnemyActionEngine) spawn(board *Board, playerPos Position, n int, build func() *Tile) []Position {
	var targets []Position
	for _, pos := range board.PositionsOf(Empty) {
		if pos != playerPos {
			targets = append(targets, pos)
		}
	}
	a.rng.ShufflePositions(targets)
	if n < len(targets) {
		targets = targets[:n]
	}
	for _, pos := range targets {
		board.SetTile(pos, build())
	}
	return targets
}

// decrease rebuilds every tile of type t with its value lowered by n, never
// below 1
func (a *EnemyActionEngine) decrease(board *Board, t TileType, n int, spawn SpawnConfig) []Position {
	targets := board.PositionsOf(t)
	for _, pos := range targets {
		v := max(1, board.Tile(pos).Value-n)
		board.SetTile(pos, a.factory.CreateTileByType(t, spawn, &v))
	}
	return targets
}
