package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/olivierh59500/gravity-puzzle-go/audio"
	"github.com/olivierh59500/gravity-puzzle-go/config"
	"github.com/olivierh59500/gravity-puzzle-go/driver"
	"github.com/olivierh59500/gravity-puzzle-go/game"
	"github.com/olivierh59500/gravity-puzzle-go/simulation"
	"github.com/olivierh59500/gravity-puzzle-go/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

var (
	replayLevel   int
	replaySeed    int64
	replayTicks   int
	replayPointer string

	forceInit bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Run a level headless and print the final state as YAML",
	Long: `Builds a level from the configured seed, steps it for a fixed number of
ticks without a window and prints the resulting snapshot. The same seed,
level and pointer always produce the same output.

Example:
  gravity replay --level 3 --seed 42 --ticks 600 --pointer 400,300`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runConfigInit,
}

func init() {
	replayCmd.Flags().IntVar(&replayLevel, "level", 0, "Level to replay (default: configured start level)")
	replayCmd.Flags().Int64Var(&replaySeed, "seed", 0, "Level seed (default: configured seed)")
	replayCmd.Flags().IntVar(&replayTicks, "ticks", 600, "Number of ticks to run")
	replayCmd.Flags().StringVar(&replayPointer, "pointer", "", "Hold the pointer at x,y for the whole run")

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

func newAudio() *audio.Player {
	player := audio.NewPlayer(cfg.Audio, logger)
	if err := player.Init(); err != nil {
		logger.Warn("Audio unavailable, continuing without sound", zap.Error(err))
	}
	return player
}

func runPlay(cmd *cobra.Command, args []string) error {
	session, err := game.NewSession(sessionOptions(cfg), logger)
	if err != nil {
		return err
	}
	player := newAudio()
	defer player.Close()

	logger.Info("Starting window", zap.String("run", session.RunID()))
	w := NewWindow(session, cfg.Level.Palette, logger, game.NewLogSink(logger), player)

	ebiten.SetWindowSize(int(cfg.Arena.Width), int(cfg.Arena.Height))
	ebiten.SetWindowTitle("Gravity Puzzle")
	ebiten.SetTPS(cfg.Game.TPS)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("game loop failed: %w", err)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The terminal belongs to tcell, so only log when writing to a file
	log := logger
	if cfg.Logging.File == "" {
		log = zap.NewNop()
	}

	session, err := game.NewSession(sessionOptions(cfg), log)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	player := audio.NewPlayer(cfg.Audio, log)
	if err := player.Init(); err != nil {
		log.Warn("Audio unavailable, continuing without sound", zap.Error(err))
	}
	defer player.Close()

	view := tui.NewView(screen, session, log, game.NewLogSink(log), player)
	return view.Run(cmd.Context(), driver.NewLoop(cfg.Game.TPS, log))
}

// replayReport is what replay prints
type replayReport struct {
	Seed     int64         `yaml:"seed"`
	Ticks    int           `yaml:"ticks"`
	Merges   int           `yaml:"merges"`
	Outcome  string        `yaml:"outcome"`
	Snapshot game.Snapshot `yaml:"snapshot"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	if replayTicks < 0 {
		return fmt.Errorf("ticks must be non-negative, got %d", replayTicks)
	}

	opts := sessionOptions(cfg)
	opts.WinAdvanceTicks = 0
	if cmd.Flags().Changed("level") {
		opts.StartLevel = replayLevel
	}
	if cmd.Flags().Changed("seed") {
		opts.Level.Seed = replaySeed
	}

	session, err := game.NewSession(opts, logger)
	if err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return err
	}

	if replayPointer != "" {
		p, err := parsePointer(replayPointer)
		if err != nil {
			return err
		}
		session.SetPointer(p.X, p.Y)
	}

	report := replayReport{Seed: opts.Level.Seed, Ticks: replayTicks, Outcome: simulation.OutcomeNone.String()}
	sinks := []game.Sink{
		game.NewLogSink(logger),
		game.SinkFunc(func(ev game.Event) {
			switch ev.Type {
			case game.EventMerge:
				report.Merges++
			case game.EventLevelComplete:
				report.Outcome = simulation.OutcomeLevelComplete.String()
			case game.EventGameComplete:
				report.Outcome = simulation.OutcomeGameComplete.String()
			}
		}),
	}
	driver.RunTicks(driver.StepperFunc(func() {
		session.Tick()
		game.Dispatch(session.Drain(), sinks...)
	}), replayTicks)

	report.Snapshot = session.Snapshot()
	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal replay: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", configPath, err)
	}
	// Defaults only: cfg already carries the existing file and GRAVITY_* overrides
	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}

// parsePointer reads an "x,y" pair
func parsePointer(s string) (r2.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return r2.Vec{}, fmt.Errorf("pointer %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("pointer %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("pointer %q: %w", s, err)
	}
	return r2.Vec{X: x, Y: y}, nil
}
