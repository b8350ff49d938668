package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/sim"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var reasonLabel = map[sim.CloseReason]string{
	sim.StopLoss:       "STOP LOSS",
	sim.TakeProfit:     "TAKE PROFIT",
	sim.SignalReversal: "CLOSE",
}

// FormatEvent renders one event as a console line, for example
//
//	EUR/USD [Feb 25]: BUY at 1.1811 | SL: 1.1757 | TP: 1.1919
func FormatEvent(e sim.Event) string {
	prefix := fmt.Sprintf("%s [%s]: ", e.Instrument, e.Date)
	prec := market.Lookup(e.Instrument).DisplayPrecision()

	switch e.Kind {
	case sim.EventSkipped:
		return prefix + "SKIP (high-impact news)"

	case sim.EventWarmup:
		return prefix + "WAIT (indicator warming up)"

	case sim.EventOpened:
		var b strings.Builder
		b.WriteString(prefix)
		fmt.Fprintf(&b, "BUY at %s", e.Price)
		if e.StopLoss.Valid {
			fmt.Fprintf(&b, " | SL: %s", e.StopLoss.Decimal.StringFixed(prec))
		}
		if e.TakeProfit.Valid {
			fmt.Fprintf(&b, " | TP: %s", e.TakeProfit.Decimal.StringFixed(prec))
		}
		if e.StopLoss.Valid {
			fmt.Fprintf(&b, " | Volume: %s", e.Volume.StringFixed(2))
		}
		return b.String()

	case sim.EventClosed:
		label, ok := reasonLabel[e.Reason]
		if !ok {
			label = strings.ToUpper(string(e.Reason))
		}
		return fmt.Sprintf("%s%s at %s | P/L: %s (%s)", prefix, label, e.Price, money(e.Profit), outcome(e.Profit))
	}
	return prefix + e.Kind.String()
}

func outcome(pl decimal.Decimal) string {
	switch {
	case pl.IsPositive():
		return "WIN"
	case pl.IsNegative():
		return "LOSS"
	}
	return "FLAT"
}

func money(x decimal.Decimal) string {
	s := x.StringFixed(2)
	if x.IsNegative() {
		return "-$" + strings.TrimPrefix(s, "-")
	}
	return "$" + s
}

// Print writes the end-of-run report.
func Print(w io.Writer, s Summary) {
	p := message.NewPrinter(language.English)
	title := cases.Title(language.English)

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Simulation Report")
	fmt.Fprintln(w, "==================================================")
	if s.RunID != "" {
		fmt.Fprintf(w, "Run ID:          %s\n", s.RunID)
	}
	if s.Strategy != "" {
		fmt.Fprintf(w, "Strategy:        %s\n", s.Strategy)
	}
	if s.Dataset != "" {
		fmt.Fprintf(w, "Dataset:         %s\n", title.String(s.Dataset))
	}

	fmt.Fprintln(w)
	p.Fprintf(w, "Initial Balance: $%.2f\n", s.InitialBalance.InexactFloat64())
	p.Fprintf(w, "Final Balance:   $%.2f\n", s.FinalBalance.InexactFloat64())
	p.Fprintf(w, "Net P/L:         $%.2f\n", s.NetProfit.InexactFloat64())
	fmt.Fprintf(w, "ROI:             %s%%\n", s.ReturnPct.StringFixed(1))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Trades:          %d\n", len(s.Trades))
	if len(s.Trades) > 0 {
		fmt.Fprintf(w, "Wins / Losses:   %d / %d\n", s.Wins, s.Losses)
		fmt.Fprintf(w, "Win Rate:        %s%%\n", s.WinRate.StringFixed(1))
	}

	if len(s.PerInstrument) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Performance by Pair")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, ip := range s.PerInstrument {
			p.Fprintf(w, "%-10s %3d  $%.2f\n", ip.Instrument, ip.Trades, ip.Profit.InexactFloat64())
		}
	}

	if len(s.Open) > 0 {
		insts := make([]market.Instrument, 0, len(s.Open))
		for inst := range s.Open {
			insts = append(insts, inst)
		}
		sort.Slice(insts, func(i, j int) bool { return insts[i] < insts[j] })

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Open Positions")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, inst := range insts {
			pos := s.Open[inst]
			fmt.Fprintf(w, "%-10s since %s at %s\n", inst, pos.EntryDate, pos.EntryPrice)
		}
	}
	fmt.Fprintln(w)
}
