package cmd

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxsim/backtest"
	"github.com/rustyeddy/fxsim/config"
	"github.com/rustyeddy/fxsim/feed"
	"github.com/rustyeddy/fxsim/journal"
	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/report"
	"github.com/rustyeddy/fxsim/sim"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Run a simulation from a preset or a config file and print each event
followed by the final report.

Examples:
  fxsim run --preset multi-pair
  fxsim run --preset trend --journal sqlite --db runs.sqlite
  fxsim run --config my.yaml --csv ticks.csv`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runPreset  string
	runDataset string
	runCSV     string
	runJournal string
	runDB      string
	runTrades  string
	runEquity  string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runPreset, "preset", "p", "multi-pair", "built-in configuration (ignored with --config)")
	runCmd.Flags().StringVar(&runDataset, "dataset", "", "embedded dataset name")
	runCmd.Flags().StringVar(&runCSV, "csv", "", "tick CSV (date,instrument,open,price[,news])")
	runCmd.Flags().StringVarP(&runJournal, "journal", "j", "", "journal type: none, csv or sqlite")
	runCmd.Flags().StringVarP(&runDB, "db", "d", "", "SQLite journal path")
	runCmd.Flags().StringVar(&runTrades, "trades", "", "CSV journal trades file")
	runCmd.Flags().StringVar(&runEquity, "equity", "", "CSV journal equity file")
	runCmd.MarkFlagsMutuallyExclusive("dataset", "csv")
}

// loadConfig reads --config, or the named preset, then applies the
// environment overlay.
func loadConfig(preset string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Preset(preset)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runPreset)
	if err != nil {
		return err
	}

	switch {
	case runDataset != "":
		cfg.Data = config.DataConfig{Dataset: runDataset}
	case runCSV != "":
		cfg.Data = config.DataConfig{CSV: runCSV}
	}
	if runJournal != "" {
		cfg.Journal.Type = runJournal
	}
	if runDB != "" {
		cfg.Journal.DBPath = runDB
	}
	if runTrades != "" {
		cfg.Journal.TradesFile = runTrades
	}
	if runEquity != "" {
		cfg.Journal.EquityFile = runEquity
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, lvl, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return err
	}

	src, insts, err := openSource(cfg)
	if err != nil {
		return err
	}

	strat, err := cfg.Strategy.Build()
	if err != nil {
		src.Close()
		return err
	}
	engine, err := sim.NewEngine(decimal.NewFromFloat(cfg.Account.Balance), insts, strat)
	if err != nil {
		src.Close()
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		src.Close()
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	out := cmd.OutOrStdout()
	r := &backtest.Runner{
		Engine:    engine,
		Source:    src,
		SMAPeriod: cfg.Strategy.SMAPeriod,
		Journal:   j,
		Logger:    &log,
		Dataset:   dataName(cfg.Data),
	}
	s, err := r.Run(cmd.Context(), printEvents(out, lvl))
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	report.Print(out, s)
	printJournalLocation(out, cfg.Journal)
	return nil
}

// openSource opens the configured tick source and works out the
// instrument set. A CSV without an explicit instrument list is read in
// full first.
func openSource(cfg *config.Config) (market.TickSource, []market.Instrument, error) {
	insts, err := cfg.InstrumentList()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Data.CSV != "" {
		f, err := feed.OpenCSV(cfg.Data.CSV)
		if err != nil {
			return nil, nil, err
		}
		if len(insts) > 0 {
			return f, insts, nil
		}
		ticks, err := feed.Collect(f)
		if err != nil {
			return nil, nil, err
		}
		return feed.NewSlice(ticks), feed.Instruments(ticks), nil
	}

	name := cfg.Data.Dataset
	if name == "" {
		name = "multi-pair"
	}
	ds, err := feed.LoadDataset(name)
	if err != nil {
		return nil, nil, err
	}
	src, err := ds.Source()
	if err != nil {
		return nil, nil, err
	}
	if len(insts) == 0 {
		if insts, err = ds.Instruments(); err != nil {
			return nil, nil, err
		}
	}
	return src, insts, nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	}
	return journal.Nop{}, nil
}

func dataName(d config.DataConfig) string {
	if d.CSV != "" {
		return d.CSV
	}
	if d.Dataset == "" {
		return "multi-pair"
	}
	return d.Dataset
}

// printEvents writes one line per event. Warm-up lines only show at debug.
func printEvents(w io.Writer, lvl zerolog.Level) func(sim.Event) {
	return func(e sim.Event) {
		if e.Kind == sim.EventWarmup && lvl > zerolog.DebugLevel {
			return
		}
		fmt.Fprintln(w, report.FormatEvent(e))
	}
}

func printJournalLocation(w io.Writer, jc config.JournalConfig) {
	switch jc.Type {
	case "csv":
		fmt.Fprintf(w, "Results saved to:\n  - %s\n  - %s\n  - %s\n", jc.TradesFile, jc.EquityFile, journal.RunsPath(jc.TradesFile))
	case "sqlite":
		fmt.Fprintf(w, "Results saved to: %s\n", jc.DBPath)
	}
}
