package cmd

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxsim/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fxsim",
	Short: "A multi-pair FX strategy simulator",
	Long: `fxsim replays daily FX quotes through a position engine.

It provides tools for:
  - Running candle-direction and moving-average strategies across pairs
  - Fixed-lot and risk-fraction position sizing with stops and targets
  - Skipping high-impact news days
  - Journaling runs, trades and equity to CSV or SQLite

Configuration comes from a preset or a YAML/JSON file. A .env file and
FXSIM_* environment variables override file values.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnv()
	},
}

var (
	logLevel   string
	configPath string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML or JSON)")
}

// newLogger builds the stderr logger. The --log-level flag wins over the
// configured level.
func newLogger(w io.Writer, cfg *config.Config) (zerolog.Logger, zerolog.Level, error) {
	lc := cfg.Log
	if logLevel != "" {
		lc.Level = logLevel
	}
	lvl, err := lc.ZerologLevel()
	if err != nil {
		return zerolog.Nop(), lvl, err
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), lvl, nil
}
