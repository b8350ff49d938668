package cmd

import (
	"fmt"

	"github.com/rustyeddy/fxsim/journal"
	"github.com/rustyeddy/fxsim/pkg/id"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query a SQLite run journal",
	Long: `Query and display records written by "fxsim run --journal sqlite".

Subcommands:
  runs   - List recorded runs, newest first
  trades - List the trades of a run as Org-mode blocks
  trade  - Show a single trade by ID
  pairs  - Realized profit per instrument for a run

Examples:
  fxsim journal runs --db runs.sqlite
  fxsim journal trades <run-id>
  fxsim journal pairs <run-id>`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the trades of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalPairsCmd = &cobra.Command{
	Use:   "pairs <run-id>",
	Short: "Realized profit per instrument for a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalPairs,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalPairsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./fxsim.sqlite", "path to SQLite journal DB")
}

func openJournalDB() (*journal.SQLiteJournal, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %-28s %-12s %3d trades  %s -> %s\n",
			r.RunID, r.Created.Local().Format("2006-01-02 15:04"), r.Strategy, r.Dataset,
			r.Trades, r.InitialBalance.StringFixed(2), r.FinalBalance.StringFixed(2))
	}
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesByRun(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func runJournalPairs(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	run, err := j.GetRun(args[0])
	if err != nil {
		return err
	}
	pairs, err := j.ProfitByInstrument(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s, started %s)\n", id.Short(run.RunID), run.Strategy, run.Created.Local().Format("2006-01-02 15:04"))
	for _, p := range pairs {
		fmt.Fprintf(out, "%-10s %3d  %s\n", p.Instrument, p.Trades, p.Profit.StringFixed(2))
	}
	return nil
}
