package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/olivierh59500/gravity-puzzle-go/config"
	"github.com/olivierh59500/gravity-puzzle-go/game"
	"github.com/olivierh59500/gravity-puzzle-go/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gravity",
	Short: "Gravity Puzzle - merge every particle into one",
	Long: `Gravity Puzzle is a 2D particle game. Attractors pull particles together,
the pointer pushes them apart, and touching particles merge. Clear a level by
reducing the field to a single particle. Ten levels make a game.

Run without arguments to open the game window.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runPlay,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the game window",
	RunE:  runPlay,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Play in the terminal",
	Long: `Runs the game in the terminal. Particles are drawn as o, O and @ by size,
attractors as +. Move the mouse to push particles and click to pull them.

Keys: enter start/next, space pause, r menu, q quit.`,
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")

	rootCmd.AddCommand(playCmd, tuiCmd, replayCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sessionOptions maps the loaded configuration onto session options
func sessionOptions(c *config.Config) game.Options {
	return game.Options{
		Arena:           c.Arena,
		Params:          c.Physics,
		Level:           c.Level,
		StartLevel:      c.Game.StartLevel,
		MergeBonus:      c.Scoring.MergeBonus,
		LevelBonus:      c.Scoring.LevelBonus,
		WinAdvanceTicks: c.Game.WinAdvanceTicks,
	}
}
