// Command simulate plays One Stroke runs with the search bot, either
// locally against the engine or remotely against a running server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/inconshreveable/log15/v3"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/onestroke/game/bot"
	"github.com/wricardo/onestroke/game/config"
	"github.com/wricardo/onestroke/game/engine"
)

var log = log15.New("module", "simulate")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "play seeded One Stroke runs with the search bot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory holding game configs"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config name (empty for the default)"},
			&cli.IntFlag{Name: "games", Aliases: []string{"n"}, Value: 10, Usage: "number of games to play"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "seed of the first game; game i uses seed+i"},
			&cli.IntFlag{Name: "max-turns", Value: 200, Usage: "stop a game after this many strokes (0 = no limit)"},
			&cli.IntFlag{Name: "max-nodes", Value: bot.DefaultMaxNodes, Usage: "search budget per stroke"},
			&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Value: 4, Usage: "games played at once"},
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameConfig, err := loadConfig(cmd.String("config-dir"), cmd.String("config"))
			if err != nil {
				return err
			}
			games := cmd.Int("games")
			if games < 1 {
				return fmt.Errorf("games must be at least 1, got %d", games)
			}

			log.Info("Starting simulation", "config", gameConfig.Name, "games", games, "seed", cmd.Int64("seed"))
			results, err := runBatch(ctx, gameConfig, cmd.Int64("seed"), games, cmd.Int("parallel"), simOptions{
				MaxTurns: cmd.Int("max-turns"),
				MaxNodes: cmd.Int("max-nodes"),
			})
			if err != nil {
				return err
			}

			stats := summarize(results)
			if cmd.Bool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"config": gameConfig.Name, "stats": stats, "games": results})
			}
			printResults(out, gameConfig.Name, results, stats)
			return nil
		},
		Commands: []*cli.Command{remoteCommand(out)},
	}
}

func remoteCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "play one session on a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config id for a new session"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for a new session (0 = random)"},
			&cli.StringFlag{Name: "continue", Usage: "resume an existing session by ID"},
			&cli.BoolFlag{Name: "restart", Usage: "restart the run before playing"},
			&cli.IntFlag{Name: "max-turns", Value: 200, Usage: "stop after this many strokes (0 = no limit)"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between actions, e.g. 250ms"},
			&cli.BoolFlag{Name: "v", Usage: "log every stroke"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := NewClient(cmd.String("url"))

			var (
				state *engine.GameState
				err   error
			)
			if id := cmd.String("continue"); id != "" {
				state, err = client.Resume(ctx, id)
				if err != nil {
					return fmt.Errorf("resume session %s: %w", id, err)
				}
				log.Info("Resumed session", "session", id, "stage", state.Stage)
			} else {
				state, err = client.CreateSession(ctx, cmd.String("config"), cmd.Int64("seed"))
				if err != nil {
					return err
				}
				log.Info("Session created", "session", client.SessionID(), "config", state.ConfigName, "seed", state.Seed)
			}

			if cmd.Bool("restart") || state.GameOver {
				if state, err = client.Restart(ctx); err != nil {
					return err
				}
			}

			summary, err := playRemote(ctx, client, state, bot.NewPlanner(), bot.DefaultRewardPriority(), remoteOptions{
				MaxTurns: cmd.Int("max-turns"),
				Delay:    cmd.Duration("delay"),
				Verbose:  cmd.Bool("v"),
			})
			if err != nil && !errors.Is(err, engine.ErrTurnLimit) {
				return err
			}
			fmt.Fprintf(out, "Session %s: stage %d after %d turns (hp %d, gold %d)\n",
				client.SessionID(), summary.StageReached, summary.Turns, summary.FinalHP, summary.FinalGold)
			return nil
		},
	}
}

func setupLogging(debug bool) {
	lvl := log15.LvlInfo
	if debug {
		lvl = log15.LvlDebug
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
}

// loadConfig resolves name in dir, falling back to the built-in config
func loadConfig(dir, name string) (*engine.GameConfig, error) {
	if _, err := os.Stat(dir); err != nil {
		if name != "" {
			return nil, fmt.Errorf("config directory %s: %w", dir, err)
		}
		return engine.DefaultGameConfig(), nil
	}
	mgr, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return mgr.GetDefault(), nil
	}
	return mgr.LoadConfig(name)
}

func printResults(w io.Writer, configName string, results []*GameResult, stats BatchStats) {
	fmt.Fprintf(w, "Config: %s\n\n", configName)
	fmt.Fprintf(w, "%8s %6s %6s %6s %4s %5s  %s\n", "SEED", "STAGE", "TURNS", "REJECT", "HP", "GOLD", "END")
	for _, r := range results {
		end := r.Cause
		if r.Err != "" {
			end = "error: " + r.Err
		}
		if end == "" {
			end = "-"
		}
		fmt.Fprintf(w, "%8d %6d %6d %6d %4d %5d  %s\n",
			r.Seed, r.StageReached, r.Turns, r.RejectedPaths, r.FinalHP, r.FinalGold, end)
	}

	fmt.Fprintf(w, "\nGames: %d | Deaths: %d | Best stage: %d | Mean stage: %.1f | Median stage: %d | Mean turns: %.1f\n",
		stats.Games, stats.Deaths, stats.BestStage, stats.MeanStage, stats.MedianStage, stats.MeanTurns)
	if len(stats.Causes) > 0 {
		var parts []string
		for cause, n := range stats.Causes {
			parts = append(parts, fmt.Sprintf("%s=%d", cause, n))
		}
		sort.Strings(parts)
		fmt.Fprintf(w, "Causes: %s\n", strings.Join(parts, ", "))
	}
}
