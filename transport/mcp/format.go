package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/onestroke/game/engine"
	"github.com/wricardo/onestroke/game/service"
)

const gameInstructions = `One Stroke - Complete Instructions

GAME OBJECTIVE:
Survive as many stages as you can. Every stage puts 1-3 enemies on a 5x5
board; defeat them all to clear it, then pick a reward. Every tenth stage
(by default) is a boss stage.

THE STROKE:
• Each turn you draw exactly one path (a list of cells)
• It starts on your own cell (@) and must END on an enemy
• Steps are orthogonal (up/down/left/right), no diagonals
• No cell may be visited twice and walls (#) cannot be crossed
• Invalid strokes are rejected with a reason and cost nothing

ATTACK POWER:
• Starts at 0 every stroke
• +1 for every cell in the path (its length)
• +one-stroke bonus when the path covers all 25 cells
• Attack boosts (A) on the way add their value
• Enemies on the path take your attack power AS IT IS when you reach them

BOARD LEGEND:
@ = You            . = Empty
A = Attack boost   H = HP recovery
$ = Gold           ^ = Thorn (damages you)
# = Wall           E = Enemy      B = Boss

GOLD AND COMBOS:
• A and H tiles cost 1 gold each; with no gold they do nothing
• Three or more A (or H) in a row form a combo: from the third one on
  they are free. Empty tiles do not break a combo, anything else does
• $ tiles always pay out

COMBAT:
• An enemy that survives your hit strikes back for its attack power
• After your stroke, enemies with an action pattern count down and act:
  attack, heal, spawn thorns or walls, weaken boosts, drain gold, block pickups
• Use game_state or describe_cell to see each enemy's next action and timer

AFTER EACH STROKE:
• Visited cells are refilled with fresh random tiles
• Your final cell is always empty
• Surviving enemies on visited cells are moved to a refilled cell

REWARDS:
• Clearing a stage offers a few upgrades; choose_reward picks one by index
• Upgrades raise spawn rates or values of tiles, the one-stroke bonus,
  or give instant gold or healing

STRATEGY:
• Preview before you submit: preview_path shows attack, gold, HP and kills
• Chain several enemies in one stroke when your attack is high enough
• Keep some gold for boosts, or route through combos
• Check the threat line: CRITICAL means the next enemy hit can kill you

TOOLS:
create_session, game_state, preview_path, submit_path, choose_reward,
restart_run, turn_history, describe_cell, list_configs, list_sessions

Good luck, and make every stroke count!`

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nSeed: %d\nCreated: %s\nLast Accessed: %s\n",
		session.ID, session.ConfigName, session.Seed,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"))
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return result
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state"
	}

	var sb strings.Builder
	stage := fmt.Sprintf("Stage %d", state.Stage)
	if state.IsBossStage {
		stage += " (BOSS)"
	}
	fmt.Fprintf(&sb, "%s | Turn %d | Phase: %s\n", stage, state.Turn, state.Phase)

	if p := state.Player; p != nil {
		fmt.Fprintf(&sb, "HP: %d/%d | Gold: %d | One-stroke bonus: %d | Position: %s\n",
			p.CurrentHP, p.MaxHP, p.Gold, p.OneStrokeBonus, p.Position)
	}

	if state.Board != nil && state.Player != nil {
		sb.WriteString("\nBoard (@ = you):\n")
		sb.WriteString(engine.RenderBoard(state))
		fmt.Fprintf(&sb, "\nThreat: %s\n", engine.AnalyzeThreat(state))
	}

	if len(state.PendingRewards) > 0 {
		sb.WriteString("\nRewards on offer (choose_reward index):\n")
		sb.WriteString(formatOffers(state.PendingRewards))
	}

	if state.Message != "" {
		fmt.Fprintf(&sb, "\n%s\n", state.Message)
	}

	if state.GameOver {
		fmt.Fprintf(&sb, "\n💀 GAME OVER on stage %d. Use restart_run to try again.\n", state.Stage)
	}

	return sb.String()
}

func formatOffers(offers []engine.RewardOffer) string {
	var sb strings.Builder
	for i, o := range offers {
		name := o.Info.Name
		if name == "" {
			name = string(o.Kind)
		}
		fmt.Fprintf(&sb, "  [%d] %s (level %d) - %s\n", i, name, o.Level, o.Info.Description)
	}
	return sb.String()
}

func formatPreview(p *engine.PathPreview) string {
	if !p.Valid {
		return fmt.Sprintf("✗ Invalid stroke: %s", p.Reason)
	}

	var sb strings.Builder
	sb.WriteString("Stroke preview (nothing applied):\n")
	fmt.Fprintf(&sb, "  Attack power: %d", p.AttackPower)
	if p.OneStrokeBonus {
		sb.WriteString(" (includes one-stroke bonus)")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  Gold: -%d +%d (net %+d)\n", p.GoldSpent, p.GoldGained, p.GoldDelta)
	fmt.Fprintf(&sb, "  HP: %+d (damage taken %d)\n", p.HPDelta, p.DamageTaken)
	if len(p.EnemiesDefeated) > 0 {
		fmt.Fprintf(&sb, "  Defeats enemies: %v\n", p.EnemiesDefeated)
	}
	if p.StageCleared {
		sb.WriteString("  ✓ Clears the stage\n")
	}
	if !p.PlayerSurvives {
		sb.WriteString("  ⚠ You would die on this stroke\n")
	}
	tiles := make([]string, len(p.TileSequence))
	for i, t := range p.TileSequence {
		tiles[i] = string(t)
	}
	fmt.Fprintf(&sb, "  Tiles: %s\n", strings.Join(tiles, " → "))
	return sb.String()
}

func formatTurnResult(result *service.TurnResult) string {
	if result.TurnResult == nil {
		return "No result"
	}
	if !result.Accepted {
		return fmt.Sprintf("✗ Stroke rejected: %s\nNothing changed, draw another stroke.", result.Reason)
	}

	var sb strings.Builder
	sb.WriteString("✓ Stroke executed\n")
	if o := result.Outcome; o != nil {
		fmt.Fprintf(&sb, "Attack power: %d", o.AttackPower)
		if o.OneStrokeBonus {
			sb.WriteString(" (ONE STROKE!)")
		}
		sb.WriteString("\n")
		for _, e := range o.Effects {
			if line := formatEffect(e); line != "" {
				sb.WriteString("  " + line + "\n")
			}
		}
		for _, r := range o.Relocations {
			fmt.Fprintf(&sb, "  enemy %d moved %s → %s\n", r.EnemyID, r.From, r.To)
		}
	}
	for _, a := range result.EnemyActions {
		sb.WriteString("  " + formatAction(a) + "\n")
	}

	if result.StageCleared {
		fmt.Fprintf(&sb, "\n🎉 Stage %d cleared!\n", result.Stage)
	}
	if len(result.Rewards) > 0 {
		sb.WriteString("Choose a reward with choose_reward:\n")
		sb.WriteString(formatOffers(result.Rewards))
	}
	if result.Message != "" {
		fmt.Fprintf(&sb, "%s\n", result.Message)
	}

	sb.WriteString("\n")
	sb.WriteString(formatGameState(result.GameState))
	return sb.String()
}

func formatEffect(e engine.EffectResult) string {
	at := e.Position.String()
	switch {
	case e.DefeatedEnemy != 0:
		return fmt.Sprintf("%s hit for %d, enemy %d defeated", at, e.DamageDealt, e.DefeatedEnemy)
	case e.DamageDealt > 0:
		if e.DamageTaken > 0 {
			return fmt.Sprintf("%s hit for %d, counter-attack %d", at, e.DamageDealt, e.DamageTaken)
		}
		return fmt.Sprintf("%s hit for %d", at, e.DamageDealt)
	case e.DamageTaken > 0:
		return fmt.Sprintf("%s %s: -%d HP", at, e.TileType, e.DamageTaken)
	case e.AttackGained > 0:
		return fmt.Sprintf("%s attack +%d%s", at, e.AttackGained, comboNote(e))
	case e.HPGained > 0:
		return fmt.Sprintf("%s healed %d%s", at, e.HPGained, comboNote(e))
	case e.GoldGained > 0:
		return fmt.Sprintf("%s gold +%d", at, e.GoldGained)
	case !e.Applied && (e.TileType == engine.AttackBoost || e.TileType == engine.HPRecovery):
		return fmt.Sprintf("%s %s skipped (no gold)", at, e.TileType)
	}
	return ""
}

func comboNote(e engine.EffectResult) string {
	if e.ComboActive {
		return " (combo, free)"
	}
	if e.GoldSpent > 0 {
		return fmt.Sprintf(" (-%d gold)", e.GoldSpent)
	}
	return ""
}

func formatAction(a engine.ActionReport) string {
	line := fmt.Sprintf("enemy %d: %s(%d)", a.EnemyID, a.Action, a.Value)
	if a.DamageDealt > 0 {
		line += fmt.Sprintf(", you take %d", a.DamageDealt)
	}
	if a.Healed > 0 {
		line += fmt.Sprintf(", heals %d", a.Healed)
	}
	if len(a.Changed) > 0 {
		line += fmt.Sprintf(", changed %d cells", len(a.Changed))
	}
	return line
}

func formatRewardResult(result *service.RewardResult) string {
	var sb strings.Builder
	if result.RewardResult != nil {
		name := result.Applied.Info.Name
		if name == "" {
			name = string(result.Applied.Kind)
		}
		fmt.Fprintf(&sb, "✓ Reward applied: %s (level %d)\n", name, result.Applied.Level)
		if result.Message != "" {
			fmt.Fprintf(&sb, "%s\n", result.Message)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(formatGameState(result.GameState))
	return sb.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Turn History (Page %d/%d, %d turns):\n\n", history.Page, history.TotalPages, history.TotalTurns)
	for _, t := range history.Turns {
		fmt.Fprintf(&sb, "#%d stage %d: len %d atk %d", t.Turn, t.Stage, len(t.Path), t.AttackPower)
		if t.OneStrokeBonus {
			sb.WriteString(" ONE STROKE")
		}
		fmt.Fprintf(&sb, " | HP %d→%d | Gold %d→%d", t.HPBefore, t.HPAfter, t.GoldBefore, t.GoldAfter)
		if len(t.Defeated) > 0 {
			fmt.Fprintf(&sb, " | defeated %v", t.Defeated)
		}
		if t.StageCleared {
			sb.WriteString(" | CLEARED")
		}
		if t.GameOver {
			sb.WriteString(" | DIED")
		}
		sb.WriteString("\n")
	}
	if history.HasNext {
		fmt.Fprintf(&sb, "\nMore turns on page %d.\n", history.Page+1)
	}
	return sb.String()
}

func formatCellInfo(info *engine.CellInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cell %s\n", info.Position)
	if info.IsPlayer {
		sb.WriteString("Your current position\n")
	}
	if info.Tile != nil {
		fmt.Fprintf(&sb, "Tile: %s", info.Tile.Type)
		if info.Tile.Value != 0 {
			fmt.Fprintf(&sb, " (value %d)", info.Tile.Value)
		}
		sb.WriteString("\n")
		sb.WriteString(tileHint(info.Tile.Type) + "\n")
	}
	if e := info.Enemy; e != nil {
		kind := "Enemy"
		if e.IsBoss {
			kind = "BOSS"
		}
		fmt.Fprintf(&sb, "%s %d: HP %d/%d, attack %d\n", kind, e.ID, e.CurrentHP, e.MaxHP, e.AttackPower)
		if info.NextAction != nil {
			fmt.Fprintf(&sb, "Next action: %s(%d) in %d turn(s)\n", info.NextAction.Type, info.NextAction.Value, info.TurnsUntilAction)
		}
	}
	return sb.String()
}

func tileHint(t engine.TileType) string {
	switch t {
	case engine.Empty:
		return "Passable, no effect, keeps a combo going"
	case engine.AttackBoost:
		return "Adds attack for this stroke, costs 1 gold unless in a combo"
	case engine.HPRecovery:
		return "Heals 1 HP, costs 1 gold unless in a combo"
	case engine.Gold:
		return "Adds gold"
	case engine.Thorn:
		return "Damages you when crossed"
	case engine.Wall:
		return "Impassable"
	case engine.EnemyTile:
		return "Takes your current attack power; strikes back if it survives"
	}
	return ""
}
