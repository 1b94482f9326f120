package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/onestroke/game/engine"
)

const maxLogLines = 8

type action int

const (
	actNone action = iota
	actUp
	actDown
	actLeft
	actRight
	actBack
	actClear
	actSubmit
	actRestart
	actPick
	actQuit
)

var directions = map[action]engine.Position{
	actUp:    {X: 0, Y: -1},
	actDown:  {X: 0, Y: 1},
	actLeft:  {X: -1, Y: 0},
	actRight: {X: 1, Y: 0},
}

// keyToAction maps arrows, hjkl and digits. The int is the digit for actPick.
func keyToAction(ev *tcell.EventKey) (action, int) {
	switch ev.Key() {
	case tcell.KeyUp:
		return actUp, 0
	case tcell.KeyDown:
		return actDown, 0
	case tcell.KeyLeft:
		return actLeft, 0
	case tcell.KeyRight:
		return actRight, 0
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return actBack, 0
	case tcell.KeyEnter:
		return actSubmit, 0
	case tcell.KeyEscape:
		return actClear, 0
	case tcell.KeyCtrlC:
		return actQuit, 0
	case tcell.KeyRune:
		r := ev.Rune()
		switch r {
		case 'k', 'w':
			return actUp, 0
		case 'j', 's':
			return actDown, 0
		case 'h', 'a':
			return actLeft, 0
		case 'l', 'd':
			return actRight, 0
		case ' ':
			return actSubmit, 0
		case 'x':
			return actBack, 0
		case 'c':
			return actClear, 0
		case 'r':
			return actRestart, 0
		case 'q':
			return actQuit, 0
		}
		if r >= '1' && r <= '9' {
			return actPick, int(r - '1')
		}
	}
	return actNone, 0
}

// model is the local play session: the engine plus the stroke being drawn
type model struct {
	eng     *engine.GameEngine
	path    []engine.Position
	preview *engine.PathPreview
	reward  int
	message string
	log     []string
	quit    bool
}

func newModel(config *engine.GameConfig, seed int64) (*model, error) {
	m := &model{}
	events := engine.NewDispatcher()
	events.Subscribe("", engine.SinkFunc(m.onEvent))
	events.Subscribe(engine.EventRewardOffered, engine.SinkFunc(func(engine.Event) {
		m.reward = 0
	}))

	eng, err := engine.NewEngine(config, engine.WithSeed(seed), engine.WithEventSink(events))
	if err != nil {
		return nil, err
	}
	m.eng = eng
	m.message = config.Messages.Welcome
	m.resetPath()
	return m, nil
}

func (m *model) state() *engine.GameState {
	return m.eng.GetState()
}

func (m *model) cursor() engine.Position {
	return m.path[len(m.path)-1]
}

func (m *model) resetPath() {
	m.path = []engine.Position{m.state().Player.Position}
	m.preview = nil
}

func (m *model) onEvent(e engine.Event) {
	line := describeEvent(e)
	if line == "" {
		return
	}
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

// describeEvent returns a log line, or "" for events not worth showing
func describeEvent(e engine.Event) string {
	switch e.Type {
	case engine.EventStageStarted:
		return fmt.Sprintf("Stage %d begins", e.Stage)
	case engine.EventTileEffect:
		r, ok := e.Data.(engine.EffectResult)
		if !ok {
			return ""
		}
		switch {
		case r.DamageDealt > 0 && r.DefeatedEnemy != engine.NoEnemy:
			return fmt.Sprintf("Hit %s for %d, enemy %d defeated", r.Position, r.DamageDealt, r.DefeatedEnemy)
		case r.DamageDealt > 0:
			return fmt.Sprintf("Hit %s for %d, took %d back", r.Position, r.DamageDealt, r.DamageTaken)
		case r.DamageTaken > 0:
			return fmt.Sprintf("%s at %s hurt you for %d", r.TileType, r.Position, r.DamageTaken)
		}
		return ""
	case engine.EventEnemyAction:
		a, ok := e.Data.(engine.ActionReport)
		if !ok {
			return ""
		}
		return fmt.Sprintf("Enemy %d used %s(%d)", a.EnemyID, a.Action, a.Value)
	case engine.EventEnemyRelocated:
		return "An enemy moved"
	case engine.EventStageCleared:
		return fmt.Sprintf("Stage %d cleared!", e.Stage)
	case engine.EventRewardApplied:
		if o, ok := e.Data.(engine.RewardOffer); ok {
			return fmt.Sprintf("Took %s", o.Info.Name)
		}
		return "Reward taken"
	case engine.EventGameOver:
		return fmt.Sprintf("Game over on stage %d", e.Stage)
	}
	return ""
}

// apply runs one input against the model
func (m *model) apply(act action, arg int) {
	if act == actQuit {
		m.quit = true
		return
	}

	s := m.state()
	switch s.Phase {
	case engine.PhaseGameOver:
		if act == actRestart {
			if _, err := m.eng.Restart(); err != nil {
				m.message = err.Error()
				return
			}
			m.message = "Run restarted"
			m.resetPath()
		}

	case engine.PhaseRewardSelection:
		n := len(s.PendingRewards)
		if n == 0 {
			return
		}
		switch act {
		case actLeft, actUp:
			m.reward = (m.reward + n - 1) % n
		case actRight, actDown:
			m.reward = (m.reward + 1) % n
		case actPick:
			if arg < n {
				m.reward = arg
				m.chooseReward()
			}
		case actSubmit:
			m.chooseReward()
		}

	case engine.PhasePathDrawing:
		switch act {
		case actUp, actDown, actLeft, actRight:
			m.step(directions[act])
		case actBack:
			if len(m.path) > 1 {
				m.path = m.path[:len(m.path)-1]
				m.refreshPreview()
			}
		case actClear:
			m.resetPath()
		case actSubmit:
			m.submit()
		case actRestart:
			if _, err := m.eng.Restart(); err == nil {
				m.message = "Run restarted"
				m.resetPath()
			}
		}
	}
}

// step extends the stroke by d, or retracts it when d leads back onto the
// previous cell
func (m *model) step(d engine.Position) {
	cur := m.cursor()
	next := engine.Position{X: cur.X + d.X, Y: cur.Y + d.Y}
	board := m.state().Board

	switch {
	case !board.IsValidPosition(next):
		return
	case len(m.path) > 1 && next == m.path[len(m.path)-2]:
		m.path = m.path[:len(m.path)-1]
	case contains(m.path, next):
		m.message = "The stroke cannot cross itself"
		return
	case board.Tile(next) != nil && !board.Tile(next).IsTraversable():
		m.message = "Walls block the stroke"
		return
	default:
		m.path = append(m.path, next)
	}
	m.refreshPreview()
}

func (m *model) refreshPreview() {
	if len(m.path) < 2 {
		m.preview = nil
		return
	}
	m.preview = m.eng.PreviewPath(m.path)
}

func (m *model) submit() {
	res, err := m.eng.SubmitPath(m.path)
	if err != nil {
		m.message = err.Error()
		return
	}
	if !res.Accepted {
		m.message = "Rejected: " + res.Reason
		return
	}
	m.message = res.Message
	m.resetPath()
}

func (m *model) chooseReward() {
	res, err := m.eng.ChooseReward(m.reward)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.message = res.Message
	m.reward = 0
	m.resetPath()
}

func contains(path []engine.Position, p engine.Position) bool {
	for _, q := range path {
		if q == p {
			return true
		}
	}
	return false
}
