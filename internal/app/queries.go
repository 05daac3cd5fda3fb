package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

type SnapshotLoader interface {
	Refresh(ctx context.Context) (domain.Snapshot, error)
}

// QueryService serves the current snapshot, read-through the cache.
type QueryService struct {
	ing   SnapshotLoader
	cache domain.Cache
}

func NewQueryService(ing SnapshotLoader, c domain.Cache) *QueryService {
	return &QueryService{ing: ing, cache: c}
}

func (s *QueryService) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, SnapshotKey, &snap)
		if err == nil && ok {
			return snap, nil
		}
		if ok {
			// undecodable entry; evict it so a failed reload does not serve it again
			log.Warn().Err(err).Msg("cached snapshot unreadable, evicting")
			if err := s.cache.Del(ctx, SnapshotKey); err != nil {
				log.Warn().Err(err).Msg("snapshot cache evict failed")
			}
		}
	}
	return s.ing.Refresh(ctx)
}

func (s *QueryService) Refresh(ctx context.Context) (domain.Snapshot, error) {
	return s.ing.Refresh(ctx)
}

// Dashboard is the per-process session: it owns the overlay store and view
// registry and answers every operator query against the current snapshot.
// Queries reload the overlay first, so writes from other processes sharing
// the KV store are visible.
type Dashboard struct {
	Q        *QueryService
	Overlay  *OverlayStore
	Views    *ViewRegistry
	PageSize int
	Now      domain.Clock
}

func NewDashboard(q *QueryService, ov *OverlayStore, views *ViewRegistry, pageSize int) *Dashboard {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Dashboard{Q: q, Overlay: ov, Views: views, PageSize: pageSize, Now: time.Now}
}

func (d *Dashboard) Listings(ctx context.Context) ([]domain.ListingSummary, error) {
	snap, err := d.Q.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ListingHealth(snap.Listings, snap.Reviews), nil
}

// Reviews returns one page; pageSize <= 0 uses the dashboard default.
func (d *Dashboard) Reviews(ctx context.Context, f domain.FilterConfig, page, pageSize int) (domain.ReviewPage, error) {
	snap, err := d.Q.Snapshot(ctx)
	if err != nil {
		return domain.ReviewPage{}, err
	}
	if pageSize <= 0 {
		pageSize = d.PageSize
	}
	d.Overlay.Reload(ctx)
	return FilterAndPaginate(snap.Reviews, d.Overlay, f, page, pageSize, d.Now()), nil
}

// Export renders the whole filtered set as CSV. domain.ErrNothingToExport
// signals an empty result.
func (d *Dashboard) Export(ctx context.Context, f domain.FilterConfig) (string, int, error) {
	snap, err := d.Q.Snapshot(ctx)
	if err != nil {
		return "", 0, err
	}
	d.Overlay.Reload(ctx)
	rows := Filter(snap.Reviews, d.Overlay, f, d.Now())
	out, err := ExportCSV(rows)
	if err != nil {
		return "", 0, err
	}
	observability.ObserveExport(len(rows))
	return out, len(rows), nil
}

// PublicReviews lists the approved reviews of one listing, as shown on its
// public page.
func (d *Dashboard) PublicReviews(ctx context.Context, listingID string) (string, []domain.ReviewView, error) {
	snap, err := d.Q.Snapshot(ctx)
	if err != nil {
		return "", nil, err
	}
	f := domain.DefaultFilters()
	f.ListingID = listingID
	f.OnlyApproved = true
	name := ""
	for _, r := range snap.Reviews {
		if r.ListingID == listingID {
			name = r.ListingName
			break
		}
	}
	d.Overlay.Reload(ctx)
	return name, Filter(snap.Reviews, d.Overlay, f, d.Now()), nil
}

// Channels lists the distinct channel labels in first-seen order, for filter options.
func (d *Dashboard) Channels(ctx context.Context) ([]string, error) {
	snap, err := d.Q.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []string
	for _, r := range snap.Reviews {
		if _, ok := seen[r.Channel]; ok {
			continue
		}
		seen[r.Channel] = struct{}{}
		out = append(out, r.Channel)
	}
	return out, nil
}

// Lookup finds a review by id; with cross-source duplicates the first wins.
func (d *Dashboard) Lookup(ctx context.Context, id string) (domain.ReviewView, error) {
	snap, err := d.Q.Snapshot(ctx)
	if err != nil {
		return domain.ReviewView{}, err
	}
	for _, r := range snap.Reviews {
		if r.ID == id {
			e := d.Entry(ctx, id)
			return domain.ReviewView{Review: r, ApprovedForWeb: e.Approved, Status: e.Status, Note: e.Note}, nil
		}
	}
	return domain.ReviewView{}, domain.ErrNotFound
}

// SetStatus parses status before storing it, so free-form input from an
// adapter is rejected with domain.ErrInvalidStatus.
func (d *Dashboard) SetStatus(ctx context.Context, id, status string) error {
	st, err := domain.ParseStatus(strings.TrimSpace(status))
	if err != nil {
		return err
	}
	return d.Overlay.SetStatus(ctx, id, st)
}

// Entry returns the current persisted overlay for id.
func (d *Dashboard) Entry(ctx context.Context, id string) domain.Overlay {
	d.Overlay.Reload(ctx)
	return d.Overlay.Entry(id)
}
