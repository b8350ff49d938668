package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/risk"
	"github.com/rustyeddy/fxsim/sim"
	"github.com/rustyeddy/fxsim/strategies"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete simulation configuration
type Config struct {
	Account     AccountConfig  `json:"account" yaml:"account"`
	Strategy    StrategyConfig `json:"strategy" yaml:"strategy"`
	Instruments []string       `json:"instruments,omitempty" yaml:"instruments,omitempty"`
	Data        DataConfig     `json:"data" yaml:"data"`
	Journal     JournalConfig  `json:"journal" yaml:"journal"`
	Log         LogConfig      `json:"log" yaml:"log"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// StrategyConfig selects an entry/exit signal and a sizing rule.
type StrategyConfig struct {
	Signal    string `json:"signal" yaml:"signal"` // "candle" or "sma"
	SMAPeriod int    `json:"sma_period,omitempty" yaml:"sma_period,omitempty"`

	Sizing             string  `json:"sizing" yaml:"sizing"` // "fixed" or "risk"
	LotSize            float64 `json:"lot_size,omitempty" yaml:"lot_size,omitempty"`
	RiskFraction       float64 `json:"risk_fraction,omitempty" yaml:"risk_fraction,omitempty"`
	StopLossOffset     float64 `json:"stop_loss_offset,omitempty" yaml:"stop_loss_offset,omitempty"`
	TakeProfitMultiple float64 `json:"take_profit_multiple,omitempty" yaml:"take_profit_multiple,omitempty"`
	DegenerateSizing   string  `json:"degenerate_sizing,omitempty" yaml:"degenerate_sizing,omitempty"`
}

// DataConfig names the tick source. Dataset and CSV are exclusive.
type DataConfig struct {
	Dataset string `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	CSV     string `json:"csv,omitempty" yaml:"csv,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// ZerologLevel parses Level; empty means info.
func (l LogConfig) ZerologLevel() (zerolog.Level, error) {
	if l.Level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if _, err := c.Strategy.Build(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if _, err := c.InstrumentList(); err != nil {
		return err
	}
	if c.Data.Dataset != "" && c.Data.CSV != "" {
		return fmt.Errorf("data.dataset and data.csv are mutually exclusive")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if _, err := c.Log.ZerologLevel(); err != nil {
		return err
	}
	return nil
}

// InstrumentList normalizes Instruments. An empty list means "whatever
// the data contains".
func (c *Config) InstrumentList() ([]market.Instrument, error) {
	out := make([]market.Instrument, 0, len(c.Instruments))
	for _, s := range c.Instruments {
		inst, err := market.Normalize(s)
		if err != nil {
			return nil, fmt.Errorf("instruments: %w", err)
		}
		out = append(out, inst)
	}
	return out, nil
}

// Build turns the strategy section into an engine strategy.
func (s StrategyConfig) Build() (sim.Strategy, error) {
	sig, err := strategies.SignalByName(s.Signal, s.SMAPeriod)
	if err != nil {
		return sim.Strategy{}, err
	}

	var sizer sim.Sizer
	switch strings.ToLower(s.Sizing) {
	case "fixed", "":
		sizer, err = risk.NewFixedLot(s.LotSize)
	case "risk":
		var policy risk.DegeneratePolicy
		policy, err = risk.ParseDegeneratePolicy(s.DegenerateSizing)
		if err != nil {
			return sim.Strategy{}, err
		}
		sizer, err = risk.NewRiskFraction(s.RiskFraction, s.StopLossOffset, s.TakeProfitMultiple, policy)
	default:
		err = fmt.Errorf("%w: sizing must be 'fixed' or 'risk', got %q", sim.ErrInvalidConfiguration, s.Sizing)
	}
	if err != nil {
		return sim.Strategy{}, err
	}

	return sim.Strategy{Signal: sig, Sizer: sizer}, nil
}

var presets = map[string]func() *Config{
	"multi-pair": func() *Config {
		c := base("multi-pair")
		c.Strategy = StrategyConfig{Signal: "candle", Sizing: "fixed", LotSize: 20000}
		return c
	},
	"risk-managed": func() *Config {
		c := base("multi-pair")
		c.Strategy = StrategyConfig{
			Signal:             "candle",
			Sizing:             "risk",
			RiskFraction:       0.10,
			StopLossOffset:     0.005,
			TakeProfitMultiple: 2,
			DegenerateSizing:   string(risk.DegenerateOpenZero),
		}
		return c
	},
	"trend": func() *Config {
		c := base("eurusd-v2")
		c.Strategy = StrategyConfig{Signal: "sma", SMAPeriod: 3, Sizing: "fixed", LotSize: 100000}
		return c
	},
}

func base(dataset string) *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "SIM-001",
			Currency: "USD",
			Balance:  10000,
		},
		Data:    DataConfig{Dataset: dataset},
		Journal: JournalConfig{Type: "none"},
		Log:     LogConfig{Level: "info"},
	}
}

// Presets lists the built-in configuration names.
func Presets() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Preset returns a fresh copy of a built-in configuration.
func Preset(name string) (*Config, error) {
	mk, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(Presets(), ", "))
	}
	return mk(), nil
}

// Default returns the multi-pair preset.
func Default() *Config {
	c, _ := Preset("multi-pair")
	return c
}

// LoadEnv reads a .env file into the process environment. A missing file
// is not an error.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values with FXSIM_* environment variables.
func (c *Config) ApplyEnv() error {
	v := viper.New()
	v.SetEnvPrefix("FXSIM")
	v.AutomaticEnv()

	if v.IsSet("LOG_LEVEL") {
		c.Log.Level = v.GetString("LOG_LEVEL")
	}
	if v.IsSet("JOURNAL_TYPE") {
		c.Journal.Type = v.GetString("JOURNAL_TYPE")
	}
	if v.IsSet("JOURNAL_DB") {
		c.Journal.DBPath = v.GetString("JOURNAL_DB")
	}
	if v.IsSet("BALANCE") {
		b, err := strconv.ParseFloat(v.GetString("BALANCE"), 64)
		if err != nil {
			return fmt.Errorf("FXSIM_BALANCE: %w", err)
		}
		c.Account.Balance = b
	}
	return nil
}
