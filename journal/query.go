package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

const tradeColumns = `trade_id, run_id, instrument, volume, entry_price, exit_price, entry_date, close_date, profit, reason`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.RunID,
		&rec.Instrument,
		&rec.Volume,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.EntryDate,
		&rec.CloseDate,
		&rec.Profit,
		&rec.Reason,
	)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLiteJournal) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesByRun returns a run's trades in closing order. Trade IDs are
// ULIDs, so ordering by ID is ordering by close.
func (j *SQLiteJournal) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`SELECT `+tradeColumns+` FROM trades WHERE run_id = ? ORDER BY trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLiteJournal) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, seq, date, balance
		FROM equity
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Date, &e.Balance); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLiteJournal) GetRun(runID string) (RunRecord, error) {
	var r RunRecord
	err := j.db.QueryRow(`
		SELECT run_id, created, strategy, dataset, initial_balance, final_balance, trades
		FROM runs WHERE run_id = ?`, runID).Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Dataset, &r.InitialBalance, &r.FinalBalance, &r.Trades,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}

// ListRuns returns all runs, newest first.
func (j *SQLiteJournal) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, strategy, dataset, initial_balance, final_balance, trades
		FROM runs
		ORDER BY run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.Created, &r.Strategy, &r.Dataset, &r.InitialBalance, &r.FinalBalance, &r.Trades); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type InstrumentProfit struct {
	Instrument string
	Trades     int
	Profit     decimal.Decimal
}

// ProfitByInstrument sums a run's realized profit per instrument. The sum
// is done here rather than in SQL since SQLite would add the TEXT columns
// as floats.
func (j *SQLiteJournal) ProfitByInstrument(runID string) ([]InstrumentProfit, error) {
	trades, err := j.ListTradesByRun(runID)
	if err != nil {
		return nil, err
	}

	byInst := map[string]*InstrumentProfit{}
	for _, t := range trades {
		ip, ok := byInst[t.Instrument]
		if !ok {
			ip = &InstrumentProfit{Instrument: t.Instrument}
			byInst[t.Instrument] = ip
		}
		ip.Trades++
		ip.Profit = ip.Profit.Add(t.Profit)
	}

	out := make([]InstrumentProfit, 0, len(byInst))
	for _, ip := range byInst {
		out = append(out, *ip)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Instrument < out[b].Instrument })
	return out, nil
}
