package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"coindash/internal/chart"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log       LoggingConfig   `yaml:"log"`
	Binance   BinanceConfig   `yaml:"binance"`
	Cache     CacheConfig     `yaml:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Server    ServerConfig    `yaml:"server"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type BinanceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// SymbolConfig maps a trading pair to its display name, line color and
// metric column slot.
type SymbolConfig struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
	Color  string `yaml:"color"`
	Slot   int    `yaml:"slot"`
}

type DashboardConfig struct {
	Interval    string         `yaml:"interval"`
	DefaultDays int            `yaml:"default_days"`
	Windows     []int          `yaml:"windows"`
	Symbols     []SymbolConfig `yaml:"symbols"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RefreshConfig struct {
	Spec string `yaml:"spec"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads the yaml config at path, fills defaults and validates. A
// missing file is not an error: the built-in defaults describe a complete
// dashboard.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		}
	}
	applyDefaults(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Binance.BaseURL == "" {
		cfg.Binance.BaseURL = "https://api.binance.com"
	}
	if cfg.Binance.Timeout == 0 {
		cfg.Binance.Timeout = 10 * time.Second
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	if cfg.Dashboard.Interval == "" {
		cfg.Dashboard.Interval = "1d"
	}
	if cfg.Dashboard.DefaultDays == 0 {
		cfg.Dashboard.DefaultDays = 30
	}
	if len(cfg.Dashboard.Windows) == 0 {
		cfg.Dashboard.Windows = []int{7, 30, 90}
	}
	if len(cfg.Dashboard.Symbols) == 0 {
		cfg.Dashboard.Symbols = defaultSymbols()
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Refresh.Spec == "" {
		cfg.Refresh.Spec = "@every 5m"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func defaultSymbols() []SymbolConfig {
	return []SymbolConfig{
		{Symbol: "BTC/USDT", Name: "Bitcoin", Color: "#f7931a", Slot: 0},
		{Symbol: "ETH/USDT", Name: "Ethereum", Color: "#62688f", Slot: 1},
		{Symbol: "SOL/USDT", Name: "Solana", Color: "#00ff9d", Slot: 2},
	}
}

func validate(cfg *Config) error {
	if len(cfg.Dashboard.Symbols) == 0 {
		return errors.New("dashboard.symbols must not be empty")
	}
	seenSymbols := make(map[string]bool, len(cfg.Dashboard.Symbols))
	seenSlots := make(map[int]bool, len(cfg.Dashboard.Symbols))
	for _, s := range cfg.Dashboard.Symbols {
		if !strings.Contains(s.Symbol, "/") {
			return fmt.Errorf("symbol %q must be in BASE/QUOTE form", s.Symbol)
		}
		if seenSymbols[s.Symbol] {
			return fmt.Errorf("symbol %s is configured twice", s.Symbol)
		}
		seenSymbols[s.Symbol] = true
		if s.Name == "" {
			return fmt.Errorf("symbol %s is missing a display name", s.Symbol)
		}
		if _, err := chart.NewStyle(s.Name, s.Color); err != nil {
			return fmt.Errorf("symbol %s: %w", s.Symbol, err)
		}
		if s.Slot < 0 || s.Slot >= len(cfg.Dashboard.Symbols) {
			return fmt.Errorf("symbol %s: slot %d out of range", s.Symbol, s.Slot)
		}
		if seenSlots[s.Slot] {
			return fmt.Errorf("symbol %s: slot %d is already taken", s.Symbol, s.Slot)
		}
		seenSlots[s.Slot] = true
	}
	windows := make(map[int]bool, len(cfg.Dashboard.Windows))
	for _, d := range cfg.Dashboard.Windows {
		if d <= 0 {
			return fmt.Errorf("dashboard.windows entry %d must be positive", d)
		}
		windows[d] = true
	}
	if !windows[cfg.Dashboard.DefaultDays] {
		return fmt.Errorf("dashboard.default_days %d is not one of dashboard.windows", cfg.Dashboard.DefaultDays)
	}
	if cfg.Cache.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	if cfg.Binance.Timeout < 0 {
		return errors.New("binance.timeout must not be negative")
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}
