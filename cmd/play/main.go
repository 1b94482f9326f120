// Command play is a terminal client for One Stroke. By default it runs a
// local engine; the watch subcommand follows a session on a running server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/inconshreveable/log15/v3"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/onestroke/game/config"
	"github.com/wricardo/onestroke/game/engine"
)

var log = log15.New("module", "play")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play One Stroke in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory holding game configs"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config name (empty for the default)"},
			&cli.Int64Flag{Name: "seed", Usage: "board seed (0 = random)"},
			&cli.StringFlag{Name: "log", Usage: "write debug logs to this file"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, setupLogging(cmd.String("log"))
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameConfig, err := loadConfig(cmd.String("config-dir"), cmd.String("config"))
			if err != nil {
				return err
			}
			m, err := newModel(gameConfig, cmd.Int64("seed"))
			if err != nil {
				return err
			}
			log.Info("Starting local game", "config", gameConfig.Name, "seed", m.state().Seed)

			screen, err := openScreen()
			if err != nil {
				return err
			}
			defer screen.Fini()

			return runScreen(ctx, screen, m.render, func(ev *tcell.EventKey) bool {
				m.apply(keyToAction(ev))
				return m.quit
			})
		},
		Commands: []*cli.Command{
			{
				Name:  "watch",
				Usage: "follow a session on a running server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
					&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Required: true, Usage: "session ID to watch"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					screen, err := openScreen()
					if err != nil {
						return err
					}
					defer screen.Fini()

					ctx, cancel := context.WithCancel(ctx)
					defer cancel()

					w := newWatcher(cmd.String("url"), cmd.String("session"), func() {
						screen.PostEvent(tcell.NewEventInterrupt(nil))
					})
					if err := w.fetchState(ctx); err != nil {
						w.addLog(err.Error())
					}
					go w.run(ctx)

					return runScreen(ctx, screen, w.render, func(ev *tcell.EventKey) bool {
						act, _ := keyToAction(ev)
						return act == actQuit
					})
				},
			},
		},
	}
}

func setupLogging(path string) error {
	if path == "" {
		log15.Root().SetHandler(log15.DiscardHandler())
		return nil
	}
	h, err := log15.FileHandler(path, log15.LogfmtFormat())
	if err != nil {
		return err
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(log15.LvlDebug, h))
	return nil
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

func openScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// runScreen renders and dispatches key events until onKey returns true, the
// screen closes, or ctx is done. Interrupt events only trigger a redraw.
func runScreen(ctx context.Context, s tcell.Screen, render func(tcell.Screen), onKey func(*tcell.EventKey) bool) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		render(s)

		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventKey:
			if onKey(ev) {
				return nil
			}
		}
	}
}
