package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxsim/indicators"
	"github.com/rustyeddy/fxsim/journal"
	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/pkg/id"
	"github.com/rustyeddy/fxsim/report"
	"github.com/rustyeddy/fxsim/risk"
	"github.com/rustyeddy/fxsim/sim"
	"github.com/rustyeddy/fxsim/strategies"
)

// Runner drives an engine forward using a tick source.
type Runner struct {
	Engine *sim.Engine
	Source market.TickSource

	// SMAPeriod overrides the moving-average period. When zero the period
	// comes from the engine's signal; signals that do not read an
	// indicator get none.
	SMAPeriod int

	Journal journal.Journal
	Logger  *zerolog.Logger

	RunID   string
	Dataset string
}

// Run executes the loop:
//  1. read next tick
//  2. feed the price to the instrument's moving average
//  3. engine.ProcessTick with the average attached
//  4. emit the event and journal closed trades
//
// The source is closed when Run returns. emit may be nil.
func (r *Runner) Run(ctx context.Context, emit func(sim.Event)) (report.Summary, error) {
	if r.Engine == nil {
		return report.Summary{}, fmt.Errorf("backtest: Engine is required")
	}
	if r.Source == nil {
		return report.Summary{}, fmt.Errorf("backtest: Source is required")
	}
	defer r.Source.Close()

	log := zerolog.Nop()
	if r.Logger != nil {
		log = *r.Logger
	}
	j := r.Journal
	if j == nil {
		j = journal.Nop{}
	}
	if r.RunID == "" {
		r.RunID = id.New()
	}

	period := r.SMAPeriod
	if period == 0 {
		period, _ = strategies.NeedsIndicator(r.Engine.Strategy().Signal)
	}
	mas := map[market.Instrument]*indicators.SimpleMA{}

	strat := r.Engine.Strategy().String()
	log.Info().Str("run", r.RunID).Str("strategy", strat).Str("dataset", r.Dataset).
		Str("balance", r.Engine.InitialBalance().String()).Msg("run started")

	var ticks, closes int
	for {
		if err := ctx.Err(); err != nil {
			return report.Summary{}, err
		}

		t, ok, err := r.Source.Next()
		if err != nil {
			return report.Summary{}, fmt.Errorf("backtest: read tick: %w", err)
		}
		if !ok {
			break
		}
		ticks++

		q := sim.QuoteFromTick(t)
		if period > 0 {
			ma, ok := mas[t.Instrument]
			if !ok {
				if ma, err = indicators.NewSMA(period); err != nil {
					return report.Summary{}, err
				}
				mas[t.Instrument] = ma
			}
			ma.Update(t.Price)
			q.Indicator = indicators.Current(ma)
		}

		ev, err := r.Engine.ProcessTick(q)
		if err != nil {
			return report.Summary{}, fmt.Errorf("backtest: %w", err)
		}
		if ev == nil {
			continue
		}

		switch ev.Kind {
		case sim.EventSkipped, sim.EventWarmup:
			log.Debug().Str("instrument", ev.Instrument.String()).Str("date", ev.Date).Msg("tick " + ev.Kind.String())
		case sim.EventOpened:
			if ev.StopLoss.Valid {
				planned := risk.PlannedRisk(ev.Volume, ev.Price, ev.StopLoss.Decimal)
				log.Debug().Str("instrument", ev.Instrument.String()).Str("date", ev.Date).
					Str("planned_risk", planned.StringFixed(2)).
					Str("risk_pct", risk.RiskPct(planned, r.Engine.Balance()).Shift(2).StringFixed(2)).
					Str("rr", risk.RR(ev.Price, ev.StopLoss.Decimal, ev.TakeProfit.Decimal).StringFixed(2)).
					Msg("position opened")
			}
		case sim.EventClosed:
			closes++
			if err := j.RecordTrade(journal.FromClosedTrade(r.RunID, *ev.Trade)); err != nil {
				return report.Summary{}, fmt.Errorf("backtest: journal trade: %w", err)
			}
			err := j.RecordEquity(journal.EquitySnapshot{
				RunID:   r.RunID,
				Seq:     closes,
				Date:    ev.Date,
				Balance: r.Engine.Balance(),
			})
			if err != nil {
				return report.Summary{}, fmt.Errorf("backtest: journal equity: %w", err)
			}
		}

		if emit != nil {
			emit(*ev)
		}
	}

	s := report.FromEngine(r.Engine)
	s.RunID = r.RunID
	s.Dataset = r.Dataset

	err := j.RecordRun(journal.RunRecord{
		RunID:          r.RunID,
		Created:        time.Now(),
		Strategy:       strat,
		Dataset:        r.Dataset,
		InitialBalance: s.InitialBalance,
		FinalBalance:   s.FinalBalance,
		Trades:         len(s.Trades),
	})
	if err != nil {
		return report.Summary{}, fmt.Errorf("backtest: journal run: %w", err)
	}

	log.Info().Str("run", r.RunID).Int("ticks", ticks).Int("trades", len(s.Trades)).
		Str("balance", s.FinalBalance.StringFixed(2)).Int("open", len(s.Open)).Msg("run finished")
	return s, nil
}
