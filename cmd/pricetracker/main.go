package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"pricetracker/internal/application/port"
	"pricetracker/internal/application/usecase/stream"
	"pricetracker/internal/infrastructure/config"
	"pricetracker/internal/infrastructure/echo"
	"pricetracker/internal/infrastructure/logger"
	"pricetracker/internal/infrastructure/storage"
	"pricetracker/internal/interfaces/console"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// repository (infrastructure -> application port)
	var repo port.Repository
	if cfg.Storage.Backend == "none" {
		repo = stream.NewNoopRepo()
	} else {
		repo, err = storage.Open(cfg)
		if err != nil {
			log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("storage init failed")
		}
	}
	defer repo.Close()

	genCfg := echo.GeneratorConfig{
		Symbols:    cfg.Symbols.List,
		Interval:   cfg.Interval(),
		PriceMin:   cfg.Feed.PriceMin,
		PriceMax:   cfg.Feed.PriceMax,
		DeltaMax:   cfg.Feed.DeltaMax,
		PriceFloor: cfg.Feed.PriceFloor,
	}
	newSession := func() port.Session {
		return echo.NewSession(cfg.Feed.Endpoint, echo.NewGenerator(genCfg))
	}

	controller := stream.NewController(newSession, repo)
	sink := console.NewSink()
	formatter := stream.NewFormatter()

	log.Info().
		Str("config", *configPath).
		Str("endpoint", cfg.Feed.Endpoint).
		Int("symbols", len(cfg.Symbols.List)).
		Int64("interval_ms", cfg.Interval().Milliseconds()).
		Str("storage", cfg.Storage.Backend).
		Msg("pricetracker started")

	sub, unsubscribe := controller.Subscribe()
	defer unsubscribe()
	go func() {
		for st := range sub {
			_ = sink.WriteLive(formatter.Render(st))
		}
	}()

	controller.Start()

	<-ctx.Done()
	controller.Stop()
	_ = sink.NewLine()
	log.Warn().Msg("exit")
}
