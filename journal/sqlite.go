package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

// RecordRun inserts or replaces the run, so a runner may record it once at
// start and again with final figures.
func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, strategy, dataset, initial_balance, final_balance, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Strategy, r.Dataset,
		r.InitialBalance, r.FinalBalance, r.Trades,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, instrument, volume, entry_price, exit_price, entry_date, close_date, profit, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Instrument, t.Volume, t.EntryPrice,
		t.ExitPrice, t.EntryDate, t.CloseDate, t.Profit, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, seq, date, balance)
		VALUES (?, ?, ?, ?)`,
		e.RunID, e.Seq, e.Date, e.Balance,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
