package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal appends trades and equity snapshots to two CSV files. Run
// records go to the trades file's sibling "<trades>.runs.csv".
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	runs   *csv.Writer

	files []*os.File
}

var (
	tradesHeader = []string{"run_id", "trade_id", "instrument", "volume", "entry_price", "exit_price", "entry_date", "close_date", "profit", "reason"}
	equityHeader = []string{"run_id", "seq", "date", "balance"}
	runsHeader   = []string{"run_id", "created", "strategy", "dataset", "initial_balance", "final_balance", "trades"}
)

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	j := &CSVJournal{}

	var err error
	if j.trades, err = j.create(tradesPath, tradesHeader); err != nil {
		j.Close()
		return nil, err
	}
	if j.equity, err = j.create(equityPath, equityHeader); err != nil {
		j.Close()
		return nil, err
	}
	if j.runs, err = j.create(RunsPath(tradesPath), runsHeader); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

// RunsPath is where a CSV journal writes run records for tradesPath.
func RunsPath(tradesPath string) string {
	return tradesPath + ".runs.csv"
}

func (j *CSVJournal) create(path string, header []string) (*csv.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	j.files = append(j.files, f)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	w.Flush()
	return w, w.Error()
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	return write(j.runs, []string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339),
		r.Strategy,
		r.Dataset,
		r.InitialBalance.String(),
		r.FinalBalance.String(),
		strconv.Itoa(r.Trades),
	})
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return write(j.trades, []string{
		t.RunID,
		t.TradeID,
		t.Instrument,
		t.Volume.String(),
		t.EntryPrice.String(),
		t.ExitPrice.String(),
		t.EntryDate,
		t.CloseDate,
		t.Profit.String(),
		t.Reason,
	})
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	return write(j.equity, []string{
		e.RunID,
		strconv.Itoa(e.Seq),
		e.Date,
		e.Balance.String(),
	})
}

func (j *CSVJournal) Close() error {
	var first error
	for _, w := range []*csv.Writer{j.trades, j.equity, j.runs} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && first == nil {
			first = err
		}
	}
	for _, f := range j.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}

func write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
