package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"flex_reviews/internal/domain"
)

const KeyViews = "flex-filter-views"

// ViewRegistry is the ordered, persisted list of saved filter views. Views are
// addressed by position. Nothing is held in memory: every call reads the KV
// store, and mutations are read-modify-writes of the whole list.
type ViewRegistry struct {
	kv domain.KVStore
}

func NewViewRegistry(kv domain.KVStore) *ViewRegistry { return &ViewRegistry{kv: kv} }

// viewsFrom decodes a persisted list, skipping items that are not views. An
// absent or malformed key yields an empty list.
func viewsFrom(b []byte) []domain.SavedView {
	var raw []json.RawMessage
	if !decodeKey(KeyViews, b, &raw) {
		return []domain.SavedView{}
	}
	out := make([]domain.SavedView, 0, len(raw))
	for _, item := range raw {
		var v domain.SavedView
		if err := json.Unmarshal(item, &v); err != nil || strings.TrimSpace(v.Name) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (r *ViewRegistry) List(ctx context.Context) []domain.SavedView {
	return viewsFrom(readKey(ctx, r.kv, KeyViews))
}

// Save upserts by case-insensitive name: an existing entry is replaced in
// place, otherwise the view is appended. Returns the view's index and the
// stored view.
func (r *ViewRegistry) Save(ctx context.Context, name string, filters domain.FilterConfig) (int, domain.SavedView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1, domain.SavedView{}, domain.ErrEmptyViewName
	}
	view := domain.SavedView{Name: name, Filters: filters.Normalized()}

	idx := -1
	err := r.kv.Update(ctx, KeyViews, func(cur []byte) ([]byte, error) {
		views := viewsFrom(cur)
		idx = -1
		for i, v := range views {
			if strings.EqualFold(v.Name, name) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			views[idx] = view
		} else {
			views = append(views, view)
			idx = len(views) - 1
		}
		return json.Marshal(views)
	})
	if err != nil {
		return -1, domain.SavedView{}, fmt.Errorf("persist views: %w", err)
	}
	return idx, view, nil
}

// Apply returns the stored filters at index for the caller to apply.
func (r *ViewRegistry) Apply(ctx context.Context, index int) (domain.FilterConfig, error) {
	views := r.List(ctx)
	if index < 0 || index >= len(views) {
		return domain.FilterConfig{}, fmt.Errorf("%w: index %d", domain.ErrViewNotFound, index)
	}
	return views[index].Filters, nil
}

func (r *ViewRegistry) Delete(ctx context.Context, index int) error {
	err := r.kv.Update(ctx, KeyViews, func(cur []byte) ([]byte, error) {
		views := viewsFrom(cur)
		if index < 0 || index >= len(views) {
			return nil, fmt.Errorf("%w: index %d", domain.ErrViewNotFound, index)
		}
		views = append(views[:index], views[index+1:]...)
		return encodeKey(len(views), views)
	})
	if err != nil && !errors.Is(err, domain.ErrViewNotFound) {
		return fmt.Errorf("persist views: %w", err)
	}
	return err
}
