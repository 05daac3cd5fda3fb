package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "flex_reviews/internal/adapters/http_server"
	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/bootstrap"
	"flex_reviews/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StateBackend).Msg("state backend unavailable")
	}
	defer stores.Close()

	src, err := bootstrap.NewSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review source")
	}
	d := bootstrap.NewDashboard(ctx, cfg, src, stores)

	// warm the snapshot; a cold upstream is not fatal, requests retry the load
	if _, err := d.Q.Snapshot(ctx); err != nil {
		log.Warn().Err(err).Msg("initial snapshot load failed")
	}

	// http
	srv := server.New(cfg.CORSOrigins...)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{D: d})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("source", cfg.SourceMode).
		Str("backend", cfg.StateBackend).
		Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
