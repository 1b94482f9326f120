package bot

import (
	"context"
	"errors"

	"github.com/inconshreveable/log15/v3"

	"github.com/wricardo/onestroke/game/engine"
)

var log = log15.New("module", "bot")

// ErrNoPath is returned when no enemy can be reached from the player
var ErrNoPath = errors.New("no enemy reachable")

const (
	DefaultMaxNodes = 20000
	DefaultMaxDepth = engine.FullStrokeLength
)

// Weights turns a stroke preview into a single score
type Weights struct {
	StageCleared float64
	Defeat       float64
	Attack       float64
	HP           float64
	Gold         float64
	DamageTaken  float64
	Death        float64
	OneStroke    float64
}

func DefaultWeights() Weights {
	return Weights{
		StageCleared: 1000,
		Defeat:       150,
		Attack:       4,
		HP:           30,
		Gold:         2,
		DamageTaken:  40,
		Death:        -100000,
		OneStroke:    50,
	}
}

// Planner searches strokes depth-first and keeps the best scoring one. It
// implements engine.PathSource.
type Planner struct {
	MaxNodes int
	MaxDepth int
	Weights  Weights
}

func NewPlanner() *Planner {
	return &Planner{
		MaxNodes: DefaultMaxNodes,
		MaxDepth: DefaultMaxDepth,
		Weights:  DefaultWeights(),
	}
}

// Plan is the chosen stroke with its preview
type Plan struct {
	Path    []engine.Position
	Preview *engine.PathPreview
	Score   float64
	Nodes   int
}

type search struct {
	ctx     context.Context
	p       *Planner
	state   *engine.GameState
	visited [engine.BoardSize][engine.BoardSize]bool
	path    []engine.Position
	nodes   int
	best    *Plan
	err     error
}

var steps = []engine.Position{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}}

// NextPath returns the best stroke found within the node budget
func (p *Planner) NextPath(ctx context.Context, state *engine.GameState) ([]engine.Position, error) {
	plan, err := p.Plan(ctx, state)
	if err != nil {
		return nil, err
	}
	return plan.Path, nil
}

// Plan runs the search and returns the best candidate
func (p *Planner) Plan(ctx context.Context, state *engine.GameState) (*Plan, error) {
	if state == nil || state.Board == nil || state.Player == nil {
		return nil, errors.New("plan: incomplete state")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &search{ctx: ctx, p: p, state: state}
	start := state.Player.Position
	if !state.Board.IsValidPosition(start) {
		return nil, engine.ErrInvalidPosition
	}

	s.path = append(s.path, start)
	s.visited[start.Y][start.X] = true
	s.walk(start)

	if s.err != nil {
		return nil, s.err
	}
	if s.best == nil {
		return nil, ErrNoPath
	}
	s.best.Nodes = s.nodes
	log.Debug("planned stroke", "stage", state.Stage, "len", len(s.best.Path), "score", s.best.Score,
		"attack", s.best.Preview.AttackPower, "nodes", s.nodes)
	return s.best, nil
}

func (s *search) exhausted() bool {
	if s.err != nil {
		return true
	}
	if s.nodes&1023 == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return true
		}
	}
	return s.p.MaxNodes > 0 && s.nodes >= s.p.MaxNodes
}

func (s *search) walk(cur engine.Position) {
	s.nodes++
	if s.exhausted() {
		return
	}

	if t := s.state.Board.Tile(cur); t != nil && t.Type == engine.EnemyTile && len(s.path) > 1 {
		s.consider()
	}
	if len(s.path) >= s.p.MaxDepth {
		return
	}

	for _, d := range steps {
		next := engine.Position{X: cur.X + d.X, Y: cur.Y + d.Y}
		if !s.open(next) {
			continue
		}
		s.visited[next.Y][next.X] = true
		s.path = append(s.path, next)
		if s.enemyReachable(next) {
			s.walk(next)
		}
		s.path = s.path[:len(s.path)-1]
		s.visited[next.Y][next.X] = false
		if s.exhausted() {
			return
		}
	}
}

func (s *search) open(pos engine.Position) bool {
	if !s.state.Board.IsValidPosition(pos) || s.visited[pos.Y][pos.X] {
		return false
	}
	t := s.state.Board.Tile(pos)
	return t == nil || t.Type != engine.Wall
}

// enemyReachable reports whether some enemy can still end the stroke from
// pos without crossing visited cells or walls
func (s *search) enemyReachable(pos engine.Position) bool {
	if t := s.state.Board.Tile(pos); t != nil && t.Type == engine.EnemyTile {
		return true
	}
	var seen [engine.BoardSize][engine.BoardSize]bool
	seen[pos.Y][pos.X] = true
	queue := []engine.Position{pos}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range steps {
			next := engine.Position{X: cur.X + d.X, Y: cur.Y + d.Y}
			if !s.open(next) || seen[next.Y][next.X] {
				continue
			}
			if t := s.state.Board.Tile(next); t != nil && t.Type == engine.EnemyTile {
				return true
			}
			seen[next.Y][next.X] = true
			queue = append(queue, next)
		}
	}
	return false
}

func (s *search) consider() {
	preview := engine.CalculatePathPreview(s.path, s.state.Player, s.state.Board, s.state.Stage, s.state.IsBossStage)
	if !preview.Valid {
		return
	}
	score := s.p.Weights.Score(preview)
	if s.best != nil && score <= s.best.Score {
		return
	}
	path := make([]engine.Position, len(s.path))
	copy(path, s.path)
	s.best = &Plan{Path: path, Preview: preview, Score: score}
}

// Score rates a preview; higher is better
func (w Weights) Score(p *engine.PathPreview) float64 {
	score := w.Attack*float64(p.AttackPower) +
		w.Defeat*float64(len(p.EnemiesDefeated)) +
		w.HP*float64(p.HPDelta) +
		w.Gold*float64(p.GoldDelta) -
		w.DamageTaken*float64(p.DamageTaken)
	if p.StageCleared {
		score += w.StageCleared
	}
	if p.OneStrokeBonus {
		score += w.OneStroke
	}
	if !p.PlayerSurvives {
		score += w.Death
	}
	return score
}
