package feed

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/rustyeddy/fxsim/market"
	"gopkg.in/yaml.v3"
)

//go:embed datasets/*.yaml
var datasetFS embed.FS

// Dataset is a named, ordered set of ticks grouped by day. Within a day
// ticks are replayed in file order, so several instruments advance
// together one day at a time.
type Dataset struct {
	Name           string       `yaml:"name"`
	Description    string       `yaml:"description"`
	InitialBalance float64      `yaml:"initial_balance"`
	Days           []DatasetDay `yaml:"days"`
}

type DatasetDay struct {
	Date  string        `yaml:"date"`
	Ticks []DatasetTick `yaml:"ticks"`
}

type DatasetTick struct {
	Instrument string  `yaml:"instrument"`
	Open       float64 `yaml:"open"`
	Price      float64 `yaml:"price"`
	News       bool    `yaml:"news"`
}

// Datasets lists the embedded dataset names.
func Datasets() []string {
	entries, err := datasetFS.ReadDir("datasets")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(out)
	return out
}

// LoadDataset returns an embedded dataset by name.
func LoadDataset(name string) (*Dataset, error) {
	data, err := datasetFS.ReadFile("datasets/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown dataset %q (available: %s)", name, strings.Join(Datasets(), ", "))
	}
	return ParseDataset(data)
}

func ParseDataset(data []byte) (*Dataset, error) {
	ds := &Dataset{}
	if err := yaml.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(ds.Days) == 0 {
		return nil, fmt.Errorf("dataset %q has no days", ds.Name)
	}
	if _, err := ds.Ticks(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Ticks flattens the dataset day by day.
func (ds *Dataset) Ticks() ([]market.Tick, error) {
	var out []market.Tick
	for _, day := range ds.Days {
		if strings.TrimSpace(day.Date) == "" {
			return nil, fmt.Errorf("dataset %q: day without a date", ds.Name)
		}
		for _, dt := range day.Ticks {
			inst, err := market.Normalize(dt.Instrument)
			if err != nil {
				return nil, fmt.Errorf("dataset %q %s: %w", ds.Name, day.Date, err)
			}
			if dt.Open <= 0 || dt.Price <= 0 {
				return nil, fmt.Errorf("dataset %q %s %s: prices must be positive", ds.Name, day.Date, inst)
			}
			out = append(out, market.Tick{
				Instrument: inst,
				Date:       day.Date,
				Open:       market.FromFloat(dt.Open),
				Price:      market.FromFloat(dt.Price),
				News:       dt.News,
			})
		}
	}
	return out, nil
}

// Source returns a tick source over the dataset.
func (ds *Dataset) Source() (*Slice, error) {
	ticks, err := ds.Ticks()
	if err != nil {
		return nil, err
	}
	return NewSlice(ticks), nil
}

// Instruments returns the dataset's instruments in order of first
// appearance.
func (ds *Dataset) Instruments() ([]market.Instrument, error) {
	ticks, err := ds.Ticks()
	if err != nil {
		return nil, err
	}
	return Instruments(ticks), nil
}
