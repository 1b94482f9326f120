package engine

// Relocation records a surviving enemy moved off a regenerated cell
type Relocation struct {
	EnemyID EnemyID  `json:"enemy_id"`
	From    Position `json:"from"`
	To      Position `json:"to"`
}

// PathOutcome is everything a resolved stroke did to the board and player
type PathOutcome struct {
	Effects        []EffectResult `json:"effects"`
	Visited        []Position     `json:"visited"`
	Regenerated    []Position     `json:"regenerated"`
	Relocations    []Relocation   `json:"relocations,omitempty"`
	Defeated       []EnemyID      `json:"defeated,omitempty"`
	AttackPower    int            `json:"attack_power"`
	OneStrokeBonus bool           `json:"one_stroke_bonus"`
	StageCleared   bool           `json:"stage_cleared"`
	GameOver       bool           `json:"game_over"`
}

// TurnResolver executes accepted strokes against the live board
type TurnResolver struct {
	rng     *RNG
	factory *TileFactory
}

func NewTurnResolver(rng *RNG, factory *TileFactory) *TurnResolver {
	return &TurnResolver{rng: rng, factory: factory}
}

// ExecutePath applies every tile of path in order, then refills the visited
// cells. The path is expected to have passed ValidatePath; malformed input
// degrades to logged no-ops.
func (r *TurnResolver) ExecutePath(path []Position, player *Player, board *Board, spawn SpawnConfig, stage int, isBoss bool) *PathOutcome {
	out := &PathOutcome{}
	if len(path) == 0 {
		Log.Warn("execute called with empty path")
		return out
	}

	s := &stroke{player: player, board: board, stage: stage, isBoss: isBoss, combo: NewComboTracker()}
	out.OneStrokeBonus = s.begin(len(path))

	for _, pos := range path {
		if !board.IsValidPosition(pos) {
			Log.Warn("path position out of range skipped", "pos", pos)
			continue
		}
		out.Visited = append(out.Visited, pos)
		res, ok := s.step(pos)
		if !ok {
			continue
		}
		out.Effects = append(out.Effects, res)

		if res.DefeatedEnemy != NoEnemy {
			out.Defeated = append(out.Defeated, res.DefeatedEnemy)
			board.RemoveEnemy(res.DefeatedEnemy)
			board.SetTile(pos, r.factory.CreateRandomTile(spawn))
			if board.EnemyCount() == 0 {
				out.StageCleared = true
			}
		}
		if !player.IsAlive() {
			out.GameOver = true
			break
		}
	}
	s.combo.Reset()
	out.AttackPower = player.AttackPower

	// survivors still standing on a visited cell must move before refill
	var displaced []*Enemy
	visited := make(map[Position]bool, len(out.Visited))
	for _, pos := range out.Visited {
		visited[pos] = true
	}
	for _, e := range board.Enemies() {
		if visited[e.Position] {
			displaced = append(displaced, e)
		}
	}

	out.Regenerated = board.RegenerateTiles(out.Visited, r.factory, spawn)
	board.SetTile(player.Position, r.factory.CreateEmptyTile())

	for _, e := range displaced {
		from := e.Position
		to, ok := r.relocationTarget(board, out.Regenerated, player.Position)
		if !ok {
			Log.Warn("no free cell to relocate enemy", "enemy_id", e.ID)
			to = from
		}
		board.MoveEnemy(e.ID, to)
		out.Relocations = append(out.Relocations, Relocation{EnemyID: e.ID, From: from, To: to})
	}
	return out
}

// relocationTarget picks a regenerated cell other than the player's; failing
// that any free non-wall cell, and finally any free cell
func (r *TurnResolver) relocationTarget(board *Board, regenerated []Position, playerPos Position) (Position, bool) {
	free := func(pos Position, allowWall bool) bool {
		if pos == playerPos {
			return false
		}
		t := board.Tile(pos)
		if t == nil {
			return true
		}
		if t.Type == EnemyTile {
			return false
		}
		return allowWall || t.Type != Wall
	}

	var candidates []Position
	for _, pos := range regenerated {
		if free(pos, false) {
			candidates = append(candidates, pos)
		}
	}
	if pos, ok := r.rng.PickPosition(candidates); ok {
		return pos, true
	}

	for _, allowWall := range []bool{false, true} {
		candidates = candidates[:0]
		for _, pos := range AllPositions() {
			if free(pos, allowWall) {
				candidates = append(candidates, pos)
			}
		}
		if pos, ok := r.rng.PickPosition(candidates); ok {
			return pos, true
		}
	}
	return Position{}, false
}
