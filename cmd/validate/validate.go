// Command validate checks game configuration files (JSON or YAML). It reports:
//   - parse errors
//   - every rule violation found by the engine's config validation
//   - spawn rates that do not sum to 1
//   - rewards that can never be offered
//   - boss stages whose table entry has no boss enemy
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/wricardo/onestroke/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Warnings never make a file invalid; Info is only filled for valid files.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

// validateConfig loads and validates a single configuration file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	config, err := engine.ParseGameConfig(data, format)
	if err != nil {
		result.Valid = false
		kind := "JSON"
		if format == "yaml" || format == "yml" {
			kind = "YAML"
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid %s: %v", kind, err))
		return result
	}

	for _, err := range multierr.Errors(engine.ValidateGameConfig(config)) {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
	}

	result.Warnings = append(result.Warnings, checkSpawn(config)...)
	result.Warnings = append(result.Warnings, checkRewards(config)...)
	result.Warnings = append(result.Warnings, checkBosses(config)...)

	if result.Valid {
		result.Info = append(result.Info, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Info = append(result.Info, fmt.Sprintf("✓ Stage entries: %d", len(config.Stages)))
		result.Info = append(result.Info, fmt.Sprintf("✓ Boss every %d stages", config.BossStageInterval))
		result.Info = append(result.Info, fmt.Sprintf("✓ Player: %d HP, %d gold, +%d one-stroke bonus",
			config.PlayerMaxHP, config.StartingGold(), config.StartingOneStrokeBonus()))
		result.Info = append(result.Info, fmt.Sprintf("✓ Rewards: %d kinds, %d offered per clear",
			len(config.Rewards), config.RewardChoices))
	}

	return result
}

func checkSpawn(config *engine.GameConfig) []string {
	sum := config.Spawn.Sum()
	switch {
	case sum <= 0 || math.Abs(sum-1) <= 1e-6:
		return nil
	case sum < 1:
		return []string{fmt.Sprintf("spawn rates sum to %.3f; the missing %.3f falls back to empty tiles", sum, 1-sum)}
	default:
		return []string{fmt.Sprintf("spawn rates sum to %.3f; rates past 1.0 are never drawn, starting with gold", sum)}
	}
}

func checkRewards(config *engine.GameConfig) []string {
	var warnings []string
	for _, d := range config.Rewards {
		if !d.Kind.IsValid() {
			continue
		}
		total := 0.0
		for _, l := range d.Levels {
			total += l.AppearanceWeight
		}
		if len(d.Levels) > 0 && total == 0 {
			warnings = append(warnings, fmt.Sprintf("reward %s has zero appearance weight and is never offered", d.Kind))
		}
	}
	if config.RewardChoices > len(config.Rewards) {
		warnings = append(warnings, fmt.Sprintf("reward_choices is %d but only %d reward kinds exist",
			config.RewardChoices, len(config.Rewards)))
	}
	return warnings
}

// checkBosses looks at every boss stage up to the last table entry
func checkBosses(config *engine.GameConfig) []string {
	if config.BossStageInterval <= 0 {
		return nil
	}
	last := 0
	for _, st := range config.Stages {
		if st.Stage > last {
			last = st.Stage
		}
	}

	var warnings []string
	for s := config.BossStageInterval; s <= last; s += config.BossStageInterval {
		entry, ok := config.EntryForStage(s)
		if !ok {
			continue
		}
		boss := false
		for _, e := range entry.Enemies {
			boss = boss || e.IsBoss
		}
		if !boss {
			warnings = append(warnings, fmt.Sprintf("boss stage %d uses the stage %d entry, which has no boss enemy", s, entry.Stage))
		}
	}
	return warnings
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

// report prints one block per file and returns whether all were valid
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
		for _, warn := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warn)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}

var errInvalid = errors.New("some configurations have errors")

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate game configuration files",
		ArgsUsage: "[config files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "directory scanned when no files are given"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				if files, err = configFiles(cmd.String("dir")); err != nil {
					return fmt.Errorf("finding config files: %w", err)
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found in %s", cmd.String("dir"))
			}

			results := make([]ValidationResult, 0, len(files))
			for _, f := range files {
				results = append(results, validateConfig(f))
			}
			if !report(out, results) {
				return errInvalid
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
