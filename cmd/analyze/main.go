// Command analyze prints quick, human-readable difficulty heuristics about
// configuration files. For every stage table entry it estimates the attack of
// a typical full stroke, how many strokes each enemy needs, and flags enemies
// whose counter-attacks can kill a full-HP player before they fall.
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/onestroke/game/engine"
)

// EnemyAnalysis summarizes one enemy descriptor. Strokes is the number of
// typical full strokes needed to defeat it and CounterDamage what the player
// takes from the hits that do not kill.
type EnemyAnalysis struct {
	Descriptor    engine.EnemyDescriptor
	Strokes       int
	CounterDamage int
	Lethal        bool
}

// StageAnalysis summarizes one stage table entry
type StageAnalysis struct {
	Stage   int
	Boss    bool
	TotalHP int
	Enemies []EnemyAnalysis
}

// ConfigAnalysis is the full report for a configuration
type ConfigAnalysis struct {
	Name          string
	PlayerMaxHP   int
	TypicalAttack int // expected attack of a full stroke
	MaxAttack     int // every free cell a maximal attack boost
	BossStages    []int
	Stages        []StageAnalysis
	Warnings      []string
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "print difficulty heuristics for game configs",
		ArgsUsage: "[config files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "directory scanned when no files are given"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				if files, err = configFiles(cmd.String("dir")); err != nil {
					return err
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found in %s", cmd.String("dir"))
			}
			for _, f := range files {
				fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(f))
				analyzeConfig(out, f)
			}
			return nil
		},
	}
}

func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func analyzeConfig(w io.Writer, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error reading file: %v\n", err)
		return
	}

	config, err := engine.ParseGameConfig(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		fmt.Fprintf(w, "Error parsing config: %v\n", err)
		return
	}

	printAnalysis(w, analyze(config))
}

// strokeAttack estimates the attack of a full stroke with the given number of
// enemies on the board. Boosts are assumed affordable.
func strokeAttack(c *engine.GameConfig, enemies int, maximal bool) int {
	free := engine.FullStrokeLength - 1 - enemies
	attack := engine.FullStrokeLength + c.StartingOneStrokeBonus()
	if maximal {
		return attack + free*c.Spawn.AttackBoostRange.Max
	}
	sum := c.Spawn.Sum()
	if sum <= 0 {
		return attack
	}
	boosts := float64(free) * c.Spawn.AttackBoostRate / sum
	mean := float64(c.Spawn.AttackBoostRange.Min+c.Spawn.AttackBoostRange.Max) / 2
	return attack + int(math.Round(boosts*mean))
}

func analyze(c *engine.GameConfig) ConfigAnalysis {
	a := ConfigAnalysis{
		Name:          c.Name,
		PlayerMaxHP:   c.PlayerMaxHP,
		TypicalAttack: strokeAttack(c, 1, false),
		MaxAttack:     strokeAttack(c, 1, true),
	}

	entries := append([]engine.StageEntry(nil), c.Stages...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Stage < entries[j].Stage })

	last := 0
	for _, entry := range entries {
		typical := strokeAttack(c, len(entry.Enemies), false)
		sa := StageAnalysis{Stage: entry.Stage, Boss: c.IsBossStage(entry.Stage)}
		for i, d := range entry.Enemies {
			if d.IsBoss {
				sa.Boss = true
			}
			ea := EnemyAnalysis{Descriptor: d, Strokes: 1}
			if typical > 0 {
				ea.Strokes = (d.MaxHP + typical - 1) / typical
			}
			ea.CounterDamage = (ea.Strokes - 1) * d.AttackPower
			ea.Lethal = ea.CounterDamage >= c.PlayerMaxHP
			if ea.Lethal {
				a.Warnings = append(a.Warnings, fmt.Sprintf(
					"stage %d enemy %d (hp %d, atk %d) needs %d strokes and deals %d counter damage to a %d HP player",
					entry.Stage, i+1, d.MaxHP, d.AttackPower, ea.Strokes, ea.CounterDamage, c.PlayerMaxHP))
			}
			if d.MaxHP > strokeAttack(c, len(entry.Enemies), true) {
				a.Warnings = append(a.Warnings, fmt.Sprintf(
					"stage %d enemy %d has %d HP, more than the best possible stroke", entry.Stage, i+1, d.MaxHP))
			}
			sa.TotalHP += d.MaxHP
			sa.Enemies = append(sa.Enemies, ea)
		}
		if entry.Stage > last {
			last = entry.Stage
		}
		a.Stages = append(a.Stages, sa)
	}

	if len(entries) > 0 && entries[0].Stage > 1 {
		a.Warnings = append(a.Warnings, fmt.Sprintf("no entry for stage 1; stages before %d reuse it", entries[0].Stage))
	}

	if c.BossStageInterval > 0 {
		for s := c.BossStageInterval; s <= last+c.BossStageInterval; s += c.BossStageInterval {
			a.BossStages = append(a.BossStages, s)
			if entry, ok := c.EntryForStage(s); ok && !hasBoss(entry) {
				a.Warnings = append(a.Warnings, fmt.Sprintf(
					"boss stage %d uses the stage %d entry, which has no boss enemy", s, entry.Stage))
			}
		}
	}
	return a
}

func hasBoss(entry *engine.StageEntry) bool {
	for _, d := range entry.Enemies {
		if d.IsBoss {
			return true
		}
	}
	return false
}

func printAnalysis(w io.Writer, a ConfigAnalysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Player HP: %d\n", a.PlayerMaxHP)
	fmt.Fprintf(w, "Full stroke attack: typical %d, max %d\n", a.TypicalAttack, a.MaxAttack)
	if len(a.BossStages) > 0 {
		stages := make([]string, len(a.BossStages))
		for i, s := range a.BossStages {
			stages[i] = fmt.Sprint(s)
		}
		fmt.Fprintf(w, "Boss stages: %s\n", strings.Join(stages, ", "))
	}

	for _, s := range a.Stages {
		tag := ""
		if s.Boss {
			tag = " (BOSS)"
		}
		fmt.Fprintf(w, "Stage %d%s: %d enemies, %d total HP\n", s.Stage, tag, len(s.Enemies), s.TotalHP)
		for i, e := range s.Enemies {
			pattern := "-"
			if len(e.Descriptor.ActionPattern) > 0 {
				steps := make([]string, len(e.Descriptor.ActionPattern))
				for j, step := range e.Descriptor.ActionPattern {
					steps[j] = fmt.Sprintf("%s(%d)/%d", step.Type, step.Value, step.TurnCount)
				}
				pattern = strings.Join(steps, " ")
			}
			fmt.Fprintf(w, "   %d. hp %d atk %d, ~%d strokes, pattern %s\n",
				i+1, e.Descriptor.MaxHP, e.Descriptor.AttackPower, e.Strokes, pattern)
		}
	}

	if len(a.Warnings) == 0 {
		fmt.Fprintf(w, "✅ Every enemy can be defeated before its counter-attacks kill a full-HP player\n")
		return
	}
	fmt.Fprintf(w, "⚠️  WARNING: %d issues found\n", len(a.Warnings))
	for _, warn := range a.Warnings {
		fmt.Fprintf(w, "   %s\n", warn)
	}
}
