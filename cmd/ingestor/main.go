package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/bootstrap"
	"flex_reviews/internal/shared"
)

// ingestor loads both review sources once and replaces the cached snapshot,
// so API replicas sharing the cache pick it up without hitting upstream.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("source", cfg.SourceMode).
		Str("base", cfg.ReviewsBase).
		Strs("places", cfg.PlaceRefs).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("state backend unavailable")
	}
	defer stores.Close()

	src, err := bootstrap.NewSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review source")
	}

	start := time.Now()
	snap, err := bootstrap.NewIngestion(cfg, src, stores.Cache).Refresh(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}
	log.Info().
		Int("reviews", len(snap.Reviews)).
		Int("listings", len(snap.Listings)).
		Dur("took", time.Since(start)).
		Msg("ingestion completed")
}
