package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Feed.Endpoint != "wss://ws.postman-echo.com/raw" {
		t.Errorf("unexpected default endpoint %q", cfg.Feed.Endpoint)
	}
	if cfg.Feed.IntervalMs != 2000 || cfg.Feed.PriceFloor != 1 {
		t.Errorf("unexpected feed defaults: %+v", cfg.Feed)
	}
	if len(cfg.Symbols.List) != 15 {
		t.Errorf("expected 15 default symbols, got %d", len(cfg.Symbols.List))
	}
	if cfg.Storage.Backend != "none" {
		t.Errorf("expected storage backend none, got %q", cfg.Storage.Backend)
	}
}

func TestLoadNormalizesSymbols(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[symbols]
list = [" aapl ", "GOOG", "goog", "", "BAD;SYM"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []string{"AAPL", "GOOG"}
	if len(cfg.Symbols.List) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Symbols.List)
	}
	for i, s := range want {
		if cfg.Symbols.List[i] != s {
			t.Errorf("position %d: expected %s, got %s", i, s, cfg.Symbols.List[i])
		}
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[storage]
backend = "cassandra"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected unknown backend to be rejected")
	}
}

func TestLoadRejectsInvertedPriceRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[feed]
price_min = 300.0
price_max = 50.0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected inverted price range to be rejected")
	}
}
