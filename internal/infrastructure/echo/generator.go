package echo

import (
	"math/rand"
	"time"

	"pricetracker/internal/application/port"
)

// GeneratorConfig bounds the synthetic random walk.
type GeneratorConfig struct {
	Symbols    []string
	Interval   time.Duration // pacing between outbound frames
	PriceMin   float64       // initial price range lower bound
	PriceMax   float64       // initial price range upper bound
	DeltaMax   float64       // per-tick walk is drawn from [-DeltaMax, DeltaMax)
	PriceFloor float64       // prices never drop below this
}

// DefaultGeneratorConfig matches the stock universe and pacing the
// remote demo expects.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbols: []string{
			"AAPL", "GOOG", "TSLA", "AMZN", "MSFT",
			"NVDA", "META", "NFLX", "ORCL", "ADBE",
			"INTC", "CSCO", "IBM", "CRM", "PYPL",
		},
		Interval:   2 * time.Second,
		PriceMin:   50,
		PriceMax:   300,
		DeltaMax:   3,
		PriceFloor: 1,
	}
}

// Generator produces an infinite synthetic update sequence: each call
// to Next walks one randomly chosen instrument from its current
// generator-side price. State is mutated in place, so the sequence is
// not restartable; each session constructs a fresh Generator with
// fresh random initial prices.
type Generator struct {
	cfg    GeneratorConfig
	prices map[string]float64
}

func NewGenerator(cfg GeneratorConfig) *Generator {
	prices := make(map[string]float64, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		prices[s] = cfg.PriceMin + rand.Float64()*(cfg.PriceMax-cfg.PriceMin)
	}
	return &Generator{cfg: cfg, prices: prices}
}

// Interval returns the configured pacing interval.
func (g *Generator) Interval() time.Duration { return g.cfg.Interval }

// Next advances the walk by one tick and returns the resulting update.
func (g *Generator) Next() port.Update {
	symbol := g.cfg.Symbols[rand.Intn(len(g.cfg.Symbols))]
	delta := -g.cfg.DeltaMax + rand.Float64()*2*g.cfg.DeltaMax
	price := g.prices[symbol] + delta
	if price < g.cfg.PriceFloor {
		price = g.cfg.PriceFloor
	}
	g.prices[symbol] = price
	return port.Update{Symbol: symbol, Price: price}
}
