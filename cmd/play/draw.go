package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/onestroke/game/engine"
)

var (
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleGood   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBad    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleSelect = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

var tileStyles = map[engine.TileType]tcell.Style{
	engine.Empty:       styleDim,
	engine.AttackBoost: tcell.StyleDefault.Foreground(tcell.ColorOrange),
	engine.HPRecovery:  tcell.StyleDefault.Foreground(tcell.ColorGreen),
	engine.Gold:        tcell.StyleDefault.Foreground(tcell.ColorGold),
	engine.EnemyTile:   tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	engine.Thorn:       tcell.StyleDefault.Foreground(tcell.ColorPurple),
	engine.Wall:        tcell.StyleDefault.Foreground(tcell.ColorDarkGray),
}

// cellWidth is the number of columns used per board cell
const cellWidth = 4

func putText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// cellLabel is the glyph plus the tile value, e.g. "+2" for an attack boost
func cellLabel(t *engine.Tile, board *engine.Board) string {
	glyph := engine.TileGlyph(t, board)
	if t == nil {
		return glyph
	}
	switch t.Type {
	case engine.AttackBoost, engine.Gold:
		return fmt.Sprintf("%s%d", glyph, t.Value)
	case engine.EnemyTile:
		if e := board.Enemy(t.EnemyID); e != nil {
			return fmt.Sprintf("%s%d", glyph, e.CurrentHP)
		}
	}
	return glyph
}

// drawBoard draws the grid at (x0, y0). Cells on path are highlighted and
// numbered by order.
func drawBoard(s tcell.Screen, x0, y0 int, state *engine.GameState, path []engine.Position) {
	order := make(map[engine.Position]int, len(path))
	for i, p := range path {
		order[p] = i
	}

	for y := 0; y < engine.BoardSize; y++ {
		for x := 0; x < engine.BoardSize; x++ {
			pos := engine.Position{X: x, Y: y}
			t := state.Board.Tile(pos)
			label := cellLabel(t, state.Board)
			style := styleText
			if t != nil {
				if st, ok := tileStyles[t.Type]; ok {
					style = st
				}
			}
			if pos == state.Player.Position {
				label, style = "@", styleTitle
			}
			if i, ok := order[pos]; ok && len(path) > 1 {
				style = style.Background(tcell.ColorNavy)
				if i == len(path)-1 {
					style = style.Background(tcell.ColorTeal)
				}
			}
			putText(s, x0+x*cellWidth, y0+y, fmt.Sprintf("%-3s", label), style)
		}
	}
}

func drawHUD(s tcell.Screen, x, y int, state *engine.GameState) int {
	title := fmt.Sprintf("One Stroke - Stage %d", state.Stage)
	if state.IsBossStage {
		title += " (BOSS)"
	}
	putText(s, x, y, title, styleTitle)
	p := state.Player
	putText(s, x, y+1, fmt.Sprintf("HP %d/%d  Gold %d  One-stroke +%d  Turn %d",
		p.CurrentHP, p.MaxHP, p.Gold, p.OneStrokeBonus, state.Turn), styleText)
	return y + 3
}

func drawEnemies(s tcell.Screen, x, y int, state *engine.GameState) int {
	for _, e := range state.Board.Enemies() {
		line := fmt.Sprintf("Enemy %d %s hp %d/%d atk %d", e.ID, e.Position, e.CurrentHP, e.MaxHP, e.AttackPower)
		if next, ok := e.CurrentAction(); ok {
			line += fmt.Sprintf("  next %s(%d) in %d", next.Type, next.Value, e.TurnsUntilAction())
		}
		putText(s, x, y, line, styleText)
		y++
	}
	return y + 1
}

func drawPreview(s tcell.Screen, x, y int, preview *engine.PathPreview, length int) int {
	if preview == nil {
		putText(s, x, y, "Draw a stroke from @ to an enemy", styleDim)
		return y + 2
	}
	style := styleGood
	status := "valid"
	if !preview.Valid {
		style, status = styleBad, preview.Reason
	}
	putText(s, x, y, fmt.Sprintf("Stroke %d/%d: %s", length, engine.FullStrokeLength, status), style)
	line := fmt.Sprintf("ATK %d  HP %+d  Gold %+d", preview.AttackPower, preview.HPDelta, preview.GoldDelta)
	if preview.OneStrokeBonus {
		line += "  ONE STROKE!"
	}
	if preview.StageCleared {
		line += "  clears stage"
	}
	if !preview.PlayerSurvives {
		line += "  YOU DIE"
		style = styleBad
	}
	putText(s, x, y+1, line, style)
	return y + 3
}

func drawRewards(s tcell.Screen, x, y int, offers []engine.RewardOffer, selected int) int {
	putText(s, x, y, "Choose a reward (arrows + enter, or 1-9):", styleTitle)
	y++
	for i, o := range offers {
		style := styleText
		if i == selected {
			style = styleSelect
		}
		putText(s, x, y, fmt.Sprintf("[%d] %s %s (level %d) - %s", i+1, o.Info.Icon, o.Info.Name, o.Level, o.Info.Description), style)
		y++
	}
	return y + 1
}

func drawLog(s tcell.Screen, x, y int, lines []string) int {
	for _, line := range lines {
		putText(s, x, y, line, styleDim)
		y++
	}
	return y
}

// render draws the local play screen
func (m *model) render(s tcell.Screen) {
	s.Clear()
	state := m.state()

	y := drawHUD(s, 1, 0, state)
	drawBoard(s, 1, y, state, m.path)
	side := 2 + engine.BoardSize*cellWidth
	drawLog(s, side, y, m.log)
	y += engine.BoardSize + 1
	y = drawEnemies(s, 1, y, state)

	switch state.Phase {
	case engine.PhaseRewardSelection:
		y = drawRewards(s, 1, y, state.PendingRewards, m.reward)
	case engine.PhaseGameOver:
		putText(s, 1, y, fmt.Sprintf("GAME OVER on stage %d. r restarts, q quits.", state.Stage), styleBad)
		y += 2
	default:
		y = drawPreview(s, 1, y, m.preview, len(m.path))
	}

	putText(s, 1, y, m.message, styleText)
	putText(s, 1, y+1, "arrows/hjkl draw  x undo  c clear  enter submit  r restart  q quit", styleDim)
	s.Show()
}
