package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Feed struct {
		Endpoint   string  `toml:"endpoint"`
		IntervalMs int     `toml:"interval_ms"`
		PriceMin   float64 `toml:"price_min"`
		PriceMax   float64 `toml:"price_max"`
		DeltaMax   float64 `toml:"delta_max"`
		PriceFloor float64 `toml:"price_floor"`
	} `toml:"feed"`

	Symbols struct {
		List []string `toml:"list"`
	} `toml:"symbols"`

	Storage struct {
		Backend string `toml:"backend"` // none | sqlite | redis | postgres

		SQLite struct {
			Path string `toml:"path"`
		} `toml:"sqlite"`

		Redis struct {
			Addr   string `toml:"addr"`
			Prefix string `toml:"prefix"`
			TTLSec int    `toml:"ttl_sec"`
		} `toml:"redis"`

		Postgres struct {
			DSN string `toml:"dsn"`
		} `toml:"postgres"`
	} `toml:"storage"`
}

// Load reads the TOML file at path. A missing file is not an error:
// every option has a default, so the client runs unconfigured.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.Feed.IntervalMs) * time.Millisecond
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Feed.Endpoint) == "" {
		cfg.Feed.Endpoint = "wss://ws.postman-echo.com/raw"
	}
	if cfg.Feed.IntervalMs <= 0 {
		cfg.Feed.IntervalMs = 2000
	}
	if cfg.Feed.PriceMin <= 0 {
		cfg.Feed.PriceMin = 50
	}
	if cfg.Feed.PriceMax <= 0 {
		cfg.Feed.PriceMax = 300
	}
	if cfg.Feed.DeltaMax <= 0 {
		cfg.Feed.DeltaMax = 3
	}
	if cfg.Feed.PriceFloor <= 0 {
		cfg.Feed.PriceFloor = 1
	}
	if len(cfg.Symbols.List) == 0 {
		cfg.Symbols.List = []string{
			"AAPL", "GOOG", "TSLA", "AMZN", "MSFT",
			"NVDA", "META", "NFLX", "ORCL", "ADBE",
			"INTC", "CSCO", "IBM", "CRM", "PYPL",
		}
	}
	if strings.TrimSpace(cfg.Storage.Backend) == "" {
		cfg.Storage.Backend = "none"
	}
	if strings.TrimSpace(cfg.Storage.SQLite.Path) == "" {
		cfg.Storage.SQLite.Path = "data/prices.db"
	}
	if strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		cfg.Storage.Redis.Addr = "localhost:6379"
	}
	if strings.TrimSpace(cfg.Storage.Redis.Prefix) == "" {
		cfg.Storage.Redis.Prefix = "pricetracker"
	}
}

func validate(cfg *Config) error {
	cfg.Symbols.List = normalizeSymbols(cfg.Symbols.List)
	if len(cfg.Symbols.List) == 0 {
		return errors.New("symbols.list is empty")
	}
	if cfg.Feed.PriceMax <= cfg.Feed.PriceMin {
		return errors.New("feed.price_max must exceed feed.price_min")
	}
	switch cfg.Storage.Backend {
	case "none", "sqlite", "redis", "postgres":
	default:
		return errors.New("storage.backend must be none, sqlite, redis or postgres")
	}
	if cfg.Storage.Backend == "postgres" && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but backend is postgres")
	}
	return nil
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" || strings.Contains(u, ";") {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
