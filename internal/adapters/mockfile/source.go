// Package mockfile serves review payloads from JSON exports on disk, the
// same shapes the review backend reads before normalizing.
package mockfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

const (
	HostawayFile = "hostaway_mock.json"
	GoogleFile   = "google_mock.json"
)

// Source implements domain.ReviewSource over a directory holding
// hostaway_mock.json ({"result": [...]}) and google_mock.json
// ({"result": {...}}).
type Source struct {
	dir string
}

func New(dir string) *Source { return &Source{dir: dir} }

func (s *Source) FetchPrimary(ctx context.Context) (domain.PrimaryPayload, error) {
	if err := ctx.Err(); err != nil {
		return domain.PrimaryPayload{}, err
	}
	var doc struct {
		Result []map[string]any `json:"result"`
	}
	if err := s.read(HostawayFile, &doc); err != nil {
		return domain.PrimaryPayload{}, err
	}
	return app.MapHostawayExport(doc.Result), nil
}

// FetchSecondary returns the single Google export for any place ref, keyed
// by that ref.
func (s *Source) FetchSecondary(ctx context.Context, placeRef string) (domain.SecondaryPayload, error) {
	if err := ctx.Err(); err != nil {
		return domain.SecondaryPayload{}, err
	}
	var doc struct {
		Result map[string]any `json:"result"`
	}
	if err := s.read(GoogleFile, &doc); err != nil {
		return domain.SecondaryPayload{}, err
	}
	if doc.Result == nil {
		doc.Result = map[string]any{}
	}
	return app.MapGooglePlace(placeRef, doc.Result), nil
}

func (s *Source) read(name string, dst any) error {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
