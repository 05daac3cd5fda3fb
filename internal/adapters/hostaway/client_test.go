package hostaway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/domain"
)

func TestClient_FetchPrimary_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reviews/hostaway" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "success",
				"data": map[string]any{
					"reviews":  []map[string]any{{"id": "7453", "listingId": "2b-n1-a-29", "ratingOutOf10": 10.0}},
					"listings": []map[string]any{{"listingId": "2b-n1-a-29", "listingName": "2B N1 A - 29 Shoreditch Heights", "reviewCount": 1}},
				},
			})
		}
	}))
	defer ts.Close()

	cl, err := hostaway.New(ts.URL, "", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got, err := cl.FetchPrimary(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got.Reviews) != 1 || got.Reviews[0].ID != "7453" {
		t.Fatalf("unexpected reviews: %+v", got.Reviews)
	}
	if len(got.Listings) != 1 || got.Listings[0].ReviewCount != 1 {
		t.Fatalf("unexpected listings: %+v", got.Listings)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_FetchPrimary_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "boom"})
	}))
	defer ts.Close()

	cl, _ := hostaway.New(ts.URL, "", 100)
	_, err := cl.FetchPrimary(context.Background())
	if !errors.Is(err, domain.ErrSourceStatus) {
		t.Fatalf("want ErrSourceStatus, got %v", err)
	}
}

func TestClient_FetchSecondary_PassesPlaceRef(t *testing.T) {
	var gotPlace string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPlace = r.URL.Query().Get("place_id")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": map[string]any{
				"listing": map[string]any{"listingId": "flex-shoreditch", "listingName": "Flex Shoreditch"},
				"reviews": []map[string]any{{"id": "flex-shoreditch-0", "ratingOutOf5": 4.0}},
			},
		})
	}))
	defer ts.Close()

	cl, _ := hostaway.New(ts.URL, "", 100)
	got, err := cl.FetchSecondary(context.Background(), "flex shoreditch")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotPlace != "flex shoreditch" {
		t.Fatalf("place_id = %q", gotPlace)
	}
	if !got.OK() || got.Data.Listing == nil || got.Data.Listing.ListingID != "flex-shoreditch" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestClient_404MapsToNotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := hostaway.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.FetchSecondary(ctx, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClient_SendsAPIKey(t *testing.T) {
	var key string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("X-API-Key")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	cl, _ := hostaway.New(ts.URL, "secret", 100)
	_, err := cl.FetchPrimary(context.Background())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
	if key != "secret" {
		t.Fatalf("api key header = %q", key)
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := hostaway.New("  ", "", 1); err == nil {
		t.Fatal("expected error for empty base")
	}
}

func TestClient_DropsMalformedRecords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/reviews/google" {
			_, _ = w.Write([]byte(`{"status":"success","data":{
				"listing":{"listingId":"p1","reviewCount":"two"},
				"reviews":[{"id":"p1-0","ratingOutOf5":5},{"id":"p1-1","ratingOutOf5":"five"}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","data":{
			"listings":[{"listingId":"l1","listingName":"Shoreditch"},{"listingId":7}],
			"reviews":[{"id":"7453","listingId":"l1","ratingOutOf10":10},{"id":2,"listingId":"l1"},null]}}`))
	}))
	defer ts.Close()

	cl, _ := hostaway.New(ts.URL, "", 100)
	ctx := context.Background()

	got, err := cl.FetchPrimary(ctx)
	if err != nil {
		t.Fatalf("one bad record must not fail the batch: %v", err)
	}
	if len(got.Reviews) != 1 || got.Reviews[0].ID != "7453" {
		t.Fatalf("unexpected reviews: %+v", got.Reviews)
	}
	if len(got.Listings) != 1 || got.Listings[0].ListingID != "l1" {
		t.Fatalf("unexpected listings: %+v", got.Listings)
	}

	sec, err := cl.FetchSecondary(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !sec.OK() || len(sec.Data.Reviews) != 1 || sec.Data.Reviews[0].ID != "p1-0" {
		t.Fatalf("unexpected secondary reviews: %+v", sec)
	}
	if sec.Data.Listing != nil {
		t.Fatalf("malformed listing should be dropped, got %+v", sec.Data.Listing)
	}
}
