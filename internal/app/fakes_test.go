package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"flex_reviews/internal/domain"
)

// ---- fakes ----

var errWrite = errors.New("write failed")

type fakeKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet bool
	sets    int
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string][]byte{}} }

func (k *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[key]
	return v, ok, nil
}

// Update applies fn under the fake's lock; failSet rejects the write after fn ran.
func (k *fakeKV) Update(_ context.Context, key string, fn func([]byte) ([]byte, error)) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	next, err := fn(k.data[key])
	if err != nil {
		return err
	}
	if k.failSet {
		return errWrite
	}
	k.sets++
	if next == nil {
		delete(k.data, key)
		return nil
	}
	k.data[key] = append([]byte(nil), next...)
	return nil
}

// fakeCache round-trips through JSON so cached values never alias the caller's.
type fakeCache struct {
	store map[string][]byte
	gets  int
	dels  int
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.gets++
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.dels++
	delete(c.store, key)
	return nil
}

type fakeSource struct {
	mu           sync.Mutex
	primary      domain.PrimaryPayload
	primaryErr   error
	secondary    map[string]domain.SecondaryPayload
	secondaryErr map[string]error
	primaryCalls int
}

func (f *fakeSource) FetchPrimary(ctx context.Context) (domain.PrimaryPayload, error) {
	f.mu.Lock()
	f.primaryCalls++
	f.mu.Unlock()
	return f.primary, f.primaryErr
}

func (f *fakeSource) FetchSecondary(ctx context.Context, ref string) (domain.SecondaryPayload, error) {
	if err := f.secondaryErr[ref]; err != nil {
		return domain.SecondaryPayload{}, err
	}
	return f.secondary[ref], nil
}

// noOverlay is an empty overlay for pure filter tests.
type noOverlay struct{}

func (noOverlay) Entry(string) domain.Overlay { return domain.Overlay{Status: domain.StatusNew} }

// mapOverlay approves a fixed set of ids.
type mapOverlay map[string]bool

func (m mapOverlay) Entry(id string) domain.Overlay {
	return domain.Overlay{Approved: m[id], Status: domain.StatusNew}
}

// ---- builders ----

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func daysAgo(d int) string {
	return testNow.AddDate(0, 0, -d).Format(time.RFC3339)
}

func review(id string, opts ...func(*domain.Review)) domain.Review {
	r := domain.Review{
		ID:          id,
		Source:      domain.SourceHostaway,
		Channel:     "hostaway",
		Type:        domain.GuestToHost,
		ListingID:   "l1",
		ListingName: "Shoreditch Heights",
		Topics:      []string{"Other"},
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func withRating(v float64) func(*domain.Review) {
	return func(r *domain.Review) { r.RatingOutOf5 = &v }
}

func withSentiment(s domain.Sentiment) func(*domain.Review) {
	return func(r *domain.Review) { r.SentimentLabel = s }
}

func withListing(id string) func(*domain.Review) {
	return func(r *domain.Review) { r.ListingID = id }
}

func withSource(s domain.Source) func(*domain.Review) {
	return func(r *domain.Review) { r.Source = s }
}

func withSubmitted(s string) func(*domain.Review) {
	return func(r *domain.Review) { r.SubmittedAt = s }
}

func withTopics(t ...string) func(*domain.Review) {
	return func(r *domain.Review) { r.Topics = t }
}

func ids(views []domain.ReviewView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
