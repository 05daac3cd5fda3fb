// Package bootstrap assembles the dashboard from configuration. Shared by
// the API server, the ingestor and reviewctl.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/mockfile"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
	"flex_reviews/internal/storage/memory"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

// statePrefix namespaces overlay and view keys in Redis.
const statePrefix = "state:"

// Stores is the persistence pair behind a dashboard. Close releases
// connections.
type Stores struct {
	KV    domain.KVStore
	Cache domain.Cache
	Close func()
}

// OpenStores selects the overlay backend. Redis holds both state and the
// snapshot cache; MySQL holds state with Redis as cache; memory keeps
// everything in-process.
func OpenStores(ctx context.Context, cfg shared.Config) (Stores, error) {
	switch cfg.StateBackend {
	case shared.BackendMemory:
		return Stores{KV: memory.NewStore(), Cache: memory.NewCache(), Close: func() {}}, nil

	case shared.BackendRedis:
		rc, err := pingRedis(ctx, cfg)
		if err != nil {
			return Stores{}, err
		}
		return Stores{
			KV:    redisad.NewStateStore(rc, statePrefix),
			Cache: redisad.FromClient(rc),
			Close: func() { _ = rc.Close() },
		}, nil

	case shared.BackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return Stores{}, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return Stores{}, fmt.Errorf("db ping: %w", err)
		}
		log.Info().Msg("database connection ok")
		repo := mysqlrepo.New(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return Stores{}, err
		}
		rc, err := pingRedis(ctx, cfg)
		if err != nil {
			db.Close()
			return Stores{}, err
		}
		return Stores{
			KV:    repo,
			Cache: redisad.FromClient(rc),
			Close: func() { _ = rc.Close(); _ = db.Close() },
		}, nil
	}
	return Stores{}, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
}

func pingRedis(ctx context.Context, cfg shared.Config) (*redis.Client, error) {
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
	return rc, nil
}

// NewSource picks the upstream: the review API over HTTP, or exports on disk.
func NewSource(cfg shared.Config) (domain.ReviewSource, error) {
	if cfg.SourceMode == shared.SourceFile {
		return mockfile.New(cfg.MockDataDir), nil
	}
	return hostaway.New(cfg.ReviewsBase, cfg.ReviewsKey, cfg.UpstreamRPS)
}

// NewIngestion wires the ingestion service for cfg.
func NewIngestion(cfg shared.Config, src domain.ReviewSource, cache domain.Cache) *app.IngestionService {
	return app.NewIngestionService(src, cache, cfg.PlaceRefs, cfg.Workers, cfg.SnapshotTTL)
}

// NewDashboard loads persisted overlay state and returns a ready session over
// the given stores.
func NewDashboard(ctx context.Context, cfg shared.Config, src domain.ReviewSource, st Stores) *app.Dashboard {
	ing := NewIngestion(cfg, src, st.Cache)
	q := app.NewQueryService(ing, st.Cache)
	return app.NewDashboard(q, app.LoadOverlay(ctx, st.KV), app.NewViewRegistry(st.KV), cfg.PageSize)
}
