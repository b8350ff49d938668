package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rustyeddy/fxsim/market"
)

// CSV reads tick rows:
//
//	date,instrument,open,price[,news]
//
// A single header row ("date,...") is allowed. Empty and short rows are
// skipped. news accepts anything strconv.ParseBool does plus yes/no and
// defaults to false.
type CSV struct {
	c io.Closer
	r *csv.Reader

	line     int
	sawFirst bool
}

func OpenCSV(path string) (*CSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src := NewCSV(f)
	src.c = f
	return src, nil
}

// NewCSV reads from r. Close is a no-op unless r was opened by OpenCSV.
func NewCSV(r io.Reader) *CSV {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return &CSV{r: cr}
}

func (f *CSV) Close() error {
	if f.c != nil {
		return f.c.Close()
	}
	return nil
}

func (f *CSV) Next() (market.Tick, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return market.Tick{}, false, nil
		}
		if err != nil {
			return market.Tick{}, false, err
		}
		f.line++
		if len(row) == 0 {
			continue
		}

		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		t, ok, err := parseTickRow(row)
		if err != nil {
			return market.Tick{}, false, fmt.Errorf("csv row %d: %w", f.line, err)
		}
		if !ok {
			continue
		}
		return t, true, nil
	}
}

func parseTickRow(row []string) (market.Tick, bool, error) {
	if len(row) < 4 {
		return market.Tick{}, false, nil
	}

	date := strings.TrimSpace(row[0])
	if date == "" {
		return market.Tick{}, false, nil
	}

	inst, err := market.Normalize(row[1])
	if err != nil {
		return market.Tick{}, false, err
	}

	open, err := market.ParsePrice(strings.TrimSpace(row[2]))
	if err != nil {
		return market.Tick{}, false, fmt.Errorf("open: %w", err)
	}
	price, err := market.ParsePrice(strings.TrimSpace(row[3]))
	if err != nil {
		return market.Tick{}, false, fmt.Errorf("price: %w", err)
	}

	var news bool
	if len(row) > 4 {
		if news, err = parseFlag(row[4]); err != nil {
			return market.Tick{}, false, fmt.Errorf("news: %w", err)
		}
	}

	return market.Tick{Instrument: inst, Date: date, Open: open, Price: price, News: news}, true, nil
}

func parseFlag(s string) (bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return false, nil
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// WriteCSV writes ticks in the format NewCSV reads, with a header.
func WriteCSV(w io.Writer, ticks []market.Tick) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "instrument", "open", "price", "news"}); err != nil {
		return err
	}
	for _, t := range ticks {
		err := cw.Write([]string{
			t.Date,
			t.Instrument.String(),
			t.Open.String(),
			t.Price.String(),
			strconv.FormatBool(t.News),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
