// internal/adapters/hostaway/client.go
package hostaway

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// Client talks to the review backend that fronts the Hostaway and Google
// review feeds.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

// New builds a client. key is optional and sent as X-API-Key when set.
func New(base, key string, rps int) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

// Wire shapes keep records raw so one bad record cannot fail its batch.
type primaryWire struct {
	Listings []json.RawMessage `json:"listings"`
	Reviews  []json.RawMessage `json:"reviews"`
}

type secondaryWire struct {
	Listing json.RawMessage   `json:"listing"`
	Reviews []json.RawMessage `json:"reviews"`
}

// FetchPrimary loads the Hostaway reviews and listing summaries. Records that
// do not decode are dropped.
func (c *Client) FetchPrimary(ctx context.Context) (domain.PrimaryPayload, error) {
	var out envelope[primaryWire]
	if err := c.get(ctx, "hostaway", c.base+"/api/reviews/hostaway", &out); err != nil {
		return domain.PrimaryPayload{}, err
	}
	if out.Status != domain.StatusSuccess {
		return domain.PrimaryPayload{}, fmt.Errorf("%w: %q", domain.ErrSourceStatus, out.Status)
	}
	return domain.PrimaryPayload{
		Listings: decodeEach[domain.Listing]("hostaway", "listing", out.Data.Listings),
		Reviews:  decodeEach[domain.RawHostawayReview]("hostaway", "review", out.Data.Reviews),
	}, nil
}

// FetchSecondary loads Google reviews for one place. A non-success status is
// returned as-is for the caller to judge.
func (c *Client) FetchSecondary(ctx context.Context, placeRef string) (domain.SecondaryPayload, error) {
	u := c.base + "/api/reviews/google?place_id=" + url.QueryEscape(placeRef)
	var out envelope[secondaryWire]
	if err := c.get(ctx, "google", u, &out); err != nil {
		return domain.SecondaryPayload{}, err
	}
	p := domain.SecondaryPayload{
		Status: out.Status,
		Data:   domain.SecondaryData{Reviews: decodeEach[domain.RawGoogleReview]("google", "review", out.Data.Reviews)},
	}
	if l := decodeEach[domain.Listing]("google", "listing", []json.RawMessage{out.Data.Listing}); len(l) == 1 {
		p.Data.Listing = &l[0]
	}
	return p, nil
}

// decodeEach decodes each raw record into T, skipping absent and malformed ones.
func decodeEach[T any](endpoint, kind string, raw []json.RawMessage) []T {
	var out []T
	for i, r := range raw {
		if len(r) == 0 || string(r) == "null" {
			continue
		}
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			log.Debug().Err(err).Str("endpoint", endpoint).Str("kind", kind).Int("index", i).Msg("dropping malformed record")
			continue
		}
		out = append(out, v)
	}
	return out
}

// ---- Internals ----

var (
	ErrNotFound     = fmt.Errorf("reviews api: %w", domain.ErrNotFound)
	ErrUnauthorized = fmt.Errorf("reviews api: %w", domain.ErrUnauthorized)
	ErrForbidden    = fmt.Errorf("reviews api: %w", domain.ErrForbidden)
)

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "flex-reviews/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("reviews_api", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Debug().Str("endpoint", endpoint).Str("err_type", observability.LabelErr(err)).Int("attempt", i).Msg("upstream request failed")
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("reviews_api", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode %s: %w", endpoint, err)
			}
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) plus up to
// 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
