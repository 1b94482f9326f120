package engine

import (
	"encoding/json"
	"fmt"
)

// Board is the 5x5 arena of tiles plus the roster of live enemies. An enemy
// is in the roster iff exactly one enemy tile references its ID.
type Board struct {
	cells   [BoardSize][BoardSize]*Tile
	enemies map[EnemyID]*Enemy
	order   []EnemyID
	nextID  EnemyID
}

func NewBoard() *Board {
	return &Board{enemies: make(map[EnemyID]*Enemy), nextID: 1}
}

// IsValidPosition reports whether pos lies on the board
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.X >= 0 && pos.X < BoardSize && pos.Y >= 0 && pos.Y < BoardSize
}

// Tile returns the tile at pos, or nil when pos is off the board or unset
func (b *Board) Tile(pos Position) *Tile {
	if !b.IsValidPosition(pos) {
		return nil
	}
	return b.cells[pos.Y][pos.X]
}

// SetTile places tile at pos and stamps its position
func (b *Board) SetTile(pos Position, tile *Tile) {
	if !b.IsValidPosition(pos) {
		Log.Warn("set tile out of range", "pos", pos)
		return
	}
	if tile != nil {
		tile.Position = pos
	}
	b.cells[pos.Y][pos.X] = tile
}

// AddEnemy registers e in the roster and assigns its ID
func (b *Board) AddEnemy(e *Enemy) EnemyID {
	if e == nil {
		Log.Warn("add nil enemy ignored")
		return NoEnemy
	}
	if e.ID == NoEnemy {
		e.ID = b.nextID
	}
	if e.ID >= b.nextID {
		b.nextID = e.ID + 1
	}
	if _, exists := b.enemies[e.ID]; !exists {
		b.order = append(b.order, e.ID)
	}
	b.enemies[e.ID] = e
	return e.ID
}

// PlaceEnemy registers e and puts its tile at pos
func (b *Board) PlaceEnemy(pos Position, e *Enemy) EnemyID {
	if !b.IsValidPosition(pos) {
		Log.Warn("place enemy out of range", "pos", pos)
		return NoEnemy
	}
	id := b.AddEnemy(e)
	e.Position = pos
	b.SetTile(pos, &Tile{Type: EnemyTile, EnemyID: id})
	return id
}

// RemoveEnemy drops the enemy from the roster. Its tile is left to the
// caller to replace.
func (b *Board) RemoveEnemy(id EnemyID) {
	if _, ok := b.enemies[id]; !ok {
		return
	}
	delete(b.enemies, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// MoveEnemy relocates a live enemy, leaving its old cell untouched
func (b *Board) MoveEnemy(id EnemyID, to Position) bool {
	e, ok := b.enemies[id]
	if !ok || !b.IsValidPosition(to) {
		return false
	}
	e.Position = to
	b.SetTile(to, &Tile{Type: EnemyTile, EnemyID: id})
	return true
}

func (b *Board) Enemy(id EnemyID) *Enemy {
	return b.enemies[id]
}

// Enemies returns the roster in placement order
func (b *Board) Enemies() []*Enemy {
	out := make([]*Enemy, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.enemies[id])
	}
	return out
}

func (b *Board) EnemyCount() int {
	return len(b.order)
}

// EnemyAt returns the enemy referenced by the tile at pos
func (b *Board) EnemyAt(pos Position) *Enemy {
	t := b.Tile(pos)
	if t == nil || t.Type != EnemyTile {
		return nil
	}
	return b.enemies[t.EnemyID]
}

// PositionsOf lists positions holding tiles of type t in row-major order
func (b *Board) PositionsOf(t TileType) []Position {
	var out []Position
	for _, pos := range AllPositions() {
		if tile := b.Tile(pos); tile != nil && tile.Type == t {
			out = append(out, pos)
		}
	}
	return out
}

// RegenerateTiles replaces every non-wall tile at positions with a freshly
// sampled one and returns the positions that changed
func (b *Board) RegenerateTiles(positions []Position, factory *TileFactory, cfg SpawnConfig) []Position {
	var changed []Position
	for _, pos := range positions {
		if !b.IsValidPosition(pos) {
			Log.Warn("regenerate out of range", "pos", pos)
			continue
		}
		if t := b.Tile(pos); t != nil && t.Type == Wall {
			continue
		}
		b.SetTile(pos, factory.CreateRandomTile(cfg))
		changed = append(changed, pos)
	}
	return changed
}

// Fill sets every unset cell to a sampled tile
func (b *Board) Fill(factory *TileFactory, cfg SpawnConfig) {
	for _, pos := range AllPositions() {
		if b.Tile(pos) == nil {
			b.SetTile(pos, factory.CreateRandomTile(cfg))
		}
	}
}

// Clear drops all tiles and enemies
func (b *Board) Clear() {
	b.cells = [BoardSize][BoardSize]*Tile{}
	b.enemies = make(map[EnemyID]*Enemy)
	b.order = nil
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	c := NewBoard()
	c.nextID = b.nextID
	for _, pos := range AllPositions() {
		if t := b.Tile(pos); t != nil {
			c.cells[pos.Y][pos.X] = t.Clone()
		}
	}
	for _, id := range b.order {
		c.enemies[id] = b.enemies[id].Clone()
		c.order = append(c.order, id)
	}
	return c
}

// checkIntegrity verifies the roster/tile correspondence
func (b *Board) checkIntegrity() error {
	seen := make(map[EnemyID]int)
	for _, pos := range AllPositions() {
		t := b.Tile(pos)
		if t == nil || t.Type != EnemyTile {
			continue
		}
		e, ok := b.enemies[t.EnemyID]
		if !ok {
			return fmt.Errorf("enemy tile at %s references unknown enemy %d", pos, t.EnemyID)
		}
		if e.Position != pos {
			return fmt.Errorf("enemy %d at %s records position %s", e.ID, pos, e.Position)
		}
		seen[t.EnemyID]++
	}
	for _, id := range b.order {
		if seen[id] != 1 {
			return fmt.Errorf("enemy %d placed on %d tiles", id, seen[id])
		}
	}
	return nil
}

type boardJSON struct {
	Tiles   [][]*Tile `json:"tiles"`
	Enemies []*Enemy  `json:"enemies"`
	NextID  EnemyID   `json:"next_id"`
}

func (b *Board) MarshalJSON() ([]byte, error) {
	out := boardJSON{Tiles: make([][]*Tile, BoardSize), Enemies: b.Enemies(), NextID: b.nextID}
	for y := 0; y < BoardSize; y++ {
		out.Tiles[y] = b.cells[y][:]
	}
	return json.Marshal(out)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var in boardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Tiles) != BoardSize {
		return fmt.Errorf("board must have %d rows, got %d", BoardSize, len(in.Tiles))
	}
	*b = *NewBoard()
	for y, row := range in.Tiles {
		if len(row) != BoardSize {
			return fmt.Errorf("board row %d must have %d cells, got %d", y, BoardSize, len(row))
		}
		for x, t := range row {
			b.SetTile(Position{X: x, Y: y}, t)
		}
	}
	for _, e := range in.Enemies {
		b.AddEnemy(e)
	}
	if in.NextID > b.nextID {
		b.nextID = in.NextID
	}
	return b.checkIntegrity()
}
