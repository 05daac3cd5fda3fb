package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"flex_reviews/internal/domain"
)

const SnapshotKey = "snapshot:v1"

type IngestionService struct {
	src       domain.ReviewSource
	cache     domain.Cache
	placeRefs []string
	workers   int64
	ttl       time.Duration
	now       domain.Clock
}

func NewIngestionService(src domain.ReviewSource, cache domain.Cache, placeRefs []string, workers int, ttl time.Duration) *IngestionService {
	if workers <= 0 {
		workers = 4
	}
	return &IngestionService{
		src:       src,
		cache:     cache,
		placeRefs: placeRefs,
		workers:   int64(workers),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Load fetches the primary source and every secondary place concurrently and
// normalizes the results. A primary failure fails the load; secondary
// failures are logged and that place is left out.
func (s *IngestionService) Load(ctx context.Context) (domain.Snapshot, error) {
	g, gctx := errgroup.WithContext(ctx)

	var primary domain.PrimaryPayload
	g.Go(func() error {
		p, err := s.src.FetchPrimary(gctx)
		if err != nil {
			return fmt.Errorf("fetch primary reviews: %w", err)
		}
		primary = p
		return nil
	})

	secondaries := make([]*domain.SecondaryPayload, len(s.placeRefs))
	sem := semaphore.NewWeighted(s.workers)
	for i, ref := range s.placeRefs {
		i, ref := i, ref
		g.Go(func() error {
			// acquire only fails once the primary fetch has already failed
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			p, err := s.src.FetchSecondary(gctx, ref)
			if err != nil {
				log.Warn().Err(err).Str("place", ref).Msg("secondary reviews unavailable")
				return nil
			}
			if !p.OK() {
				log.Warn().Str("place", ref).Str("status", p.Status).Msg("secondary reviews returned non-success status")
				return nil
			}
			secondaries[i] = &p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	snap := BuildSnapshot(primary, secondaries, s.now())
	log.Info().
		Int("reviews", len(snap.Reviews)).
		Int("listings", len(snap.Listings)).
		Msg("snapshot loaded")
	return snap, nil
}

// Refresh loads a fresh snapshot and replaces the cached one.
func (s *IngestionService) Refresh(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, SnapshotKey, snap, int(s.ttl.Seconds())); err != nil {
			log.Warn().Err(err).Msg("snapshot cache write failed")
		}
	}
	return snap, nil
}

// BuildSnapshot normalizes the primary payload followed by each usable
// secondary payload, in place-reference order. Nil entries are skipped.
func BuildSnapshot(primary domain.PrimaryPayload, secondaries []*domain.SecondaryPayload, now time.Time) domain.Snapshot {
	snap := domain.Snapshot{
		Reviews:  Normalize(primary, nil),
		Listings: MergeListings(primary, nil),
		LoadedAt: now.UTC(),
	}
	for _, sec := range secondaries {
		if sec == nil {
			continue
		}
		snap.Reviews = append(snap.Reviews, Normalize(domain.PrimaryPayload{}, sec)...)
		snap.Listings = append(snap.Listings, MergeListings(domain.PrimaryPayload{}, sec)...)
	}
	return snap
}
