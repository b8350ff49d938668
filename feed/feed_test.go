package feed

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rustyeddy/fxsim/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	t.Parallel()

	ticks := []market.Tick{
		{Instrument: "EUR/USD", Date: "d1"},
		{Instrument: "USD/JPY", Date: "d1"},
		{Instrument: "EUR/USD", Date: "d2"},
	}
	src := NewSlice(ticks)

	got, err := Collect(src)
	require.NoError(t, err)
	assert.Equal(t, ticks, got)

	_, ok, err := src.Next()
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []market.Instrument{"EUR/USD", "USD/JPY"}, Instruments(ticks))
}

func TestCSV_Parse(t *testing.T) {
	t.Parallel()

	in := `date,instrument,open,price,news
"Feb 25, 2026",EUR/USD,1.1773,1.1811,true
# comment
"Feb 26, 2026",eur_usd,1.1816,1.1795

short,row
"Feb 27, 2026",USDJPY,150.25,149.80,no
`
	got, err := Collect(NewCSV(strings.NewReader(in)))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Feb 25, 2026", got[0].Date)
	assert.Equal(t, market.Instrument("EUR/USD"), got[0].Instrument)
	assert.True(t, got[0].Open.Equal(decimal.RequireFromString("1.1773")))
	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("1.1811")))
	assert.True(t, got[0].News)

	assert.Equal(t, market.Instrument("EUR/USD"), got[1].Instrument)
	assert.False(t, got[1].News)

	assert.Equal(t, market.Instrument("USD/JPY"), got[2].Instrument)
	assert.False(t, got[2].News)
}

func TestCSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"bad instrument", "d1,EURO,1.1,1.2\n"},
		{"bad open", "d1,EUR/USD,x,1.2\n"},
		{"bad price", "d1,EUR/USD,1.1,-1\n"},
		{"bad news", "d1,EUR/USD,1.1,1.2,maybe\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Collect(NewCSV(strings.NewReader(tt.in)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "csv row 1")
		})
	}
}

func TestCSV_RoundTripFile(t *testing.T) {
	t.Parallel()

	ds, err := LoadDataset("eurusd-v2")
	require.NoError(t, err)
	ticks, err := ds.Ticks()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ticks))

	path := filepath.Join(t.TempDir(), "ticks.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	src, err := OpenCSV(path)
	require.NoError(t, err)
	got, err := Collect(src)
	require.NoError(t, err)

	require.Len(t, got, len(ticks))
	for i := range ticks {
		assert.Equal(t, ticks[i].Date, got[i].Date)
		assert.Equal(t, ticks[i].Instrument, got[i].Instrument)
		assert.True(t, ticks[i].Price.Equal(got[i].Price))
		assert.Equal(t, ticks[i].News, got[i].News)
	}
}

func TestOpenCSV_Missing(t *testing.T) {
	t.Parallel()

	_, err := OpenCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestDatasets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"eurusd-v2", "multi-pair"}, Datasets())

	_, err := LoadDataset("nope")
	assert.ErrorContains(t, err, "unknown dataset")
}

func TestMultiPairDataset(t *testing.T) {
	t.Parallel()

	ds, err := LoadDataset("multi-pair")
	require.NoError(t, err)
	assert.Equal(t, 10000.0, ds.InitialBalance)

	insts, err := ds.Instruments()
	require.NoError(t, err)
	assert.Equal(t, []market.Instrument{"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD", "USD/CAD"}, insts)

	ticks, err := ds.Ticks()
	require.NoError(t, err)
	require.Len(t, ticks, 10)

	// day by day, pairs interleaved
	assert.Equal(t, "Feb 25", ticks[4].Date)
	assert.Equal(t, "Feb 26", ticks[5].Date)
	assert.Equal(t, market.Instrument("EUR/USD"), ticks[5].Instrument)

	var news int
	for _, tk := range ticks {
		if tk.News {
			news++
		}
	}
	assert.Equal(t, 3, news)
	assert.Equal(t, "149.5", ticks[2].Open.String())
}

func TestEurUsdDataset(t *testing.T) {
	t.Parallel()

	ds, err := LoadDataset("eurusd-v2")
	require.NoError(t, err)

	src, err := ds.Source()
	require.NoError(t, err)
	ticks, err := Collect(src)
	require.NoError(t, err)
	require.Len(t, ticks, 8)

	assert.Equal(t, "Feb 17, 2026", ticks[0].Date)
	assert.Equal(t, "Feb 25, 2026", ticks[6].Date)
	assert.True(t, ticks[6].News)
	assert.False(t, ticks[7].News)
}

func TestParseDataset_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"not yaml", "days: [:"},
		{"no days", "name: empty\n"},
		{"no date", "name: x\ndays:\n  - ticks: [{instrument: EUR/USD, open: 1, price: 1}]\n"},
		{"bad instrument", "name: x\ndays:\n  - date: d1\n    ticks: [{instrument: GOLD, open: 1, price: 1}]\n"},
		{"zero price", "name: x\ndays:\n  - date: d1\n    ticks: [{instrument: EUR/USD, open: 1, price: 0}]\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDataset([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}
