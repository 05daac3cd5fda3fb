package mockfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flex_reviews/internal/domain"
)

const hostawayFixture = `{"status":"success","result":[
 {"id":7453,"type":"host-to-guest","status":"published","rating":null,
  "publicReview":"Shane and family are wonderful! Would definitely host again :)",
  "reviewCategory":[{"category":"cleanliness","rating":10},{"category":"communication","rating":10},{"category":"respect_house_rules","rating":10}],
  "submittedAt":"2020-08-21 22:45:14","guestName":"Shane Finkelstein","listingName":"2B N1 A - 29 Shoreditch Heights"},
 {"id":7454,"type":"guest-to-host","status":"published","rating":4,
  "publicReview":"The room was dirty and noisy.",
  "submittedAt":"2021-03-02 10:00:00","guestName":"Ana","listingName":"2B N1 A - 29 Shoreditch Heights"},
 {"type":"guest-to-host","publicReview":"no id","listingName":"Somewhere"}
]}`

const googleFixture = `{"result":{"name":"Flex Living Shoreditch","reviews":[
 {"author_name":"Maria","rating":5,"text":"Great location and very clean","time":1700000000},
 {"author_name":"Tom","rating":2,"text":"Noisy at night","time":1700100000}
]}}`

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, HostawayFile), []byte(hostawayFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GoogleFile), []byte(googleFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestFetchPrimary_MapsExport(t *testing.T) {
	src := New(writeFixtures(t))
	p, err := src.FetchPrimary(context.Background())
	if err != nil {
		t.Fatalf("FetchPrimary: %v", err)
	}
	if len(p.Reviews) != 2 {
		t.Fatalf("want 2 reviews (record without id skipped), got %d", len(p.Reviews))
	}
	r := p.Reviews[0]
	if r.ID != "7453" || r.ListingID != "2b-n1-a---29-shoreditch-heights" {
		t.Fatalf("unexpected ids: %q %q", r.ID, r.ListingID)
	}
	if r.RatingOutOf10 == nil || *r.RatingOutOf10 != 10 || *r.RatingOutOf5 != 5 {
		t.Fatalf("rating from categories: %+v %+v", r.RatingOutOf10, r.RatingOutOf5)
	}
	if r.SubmittedAt != "2020-08-21T22:45:14Z" {
		t.Fatalf("submittedAt = %q", r.SubmittedAt)
	}
	if len(p.Listings) != 1 || p.Listings[0].ReviewCount != 2 {
		t.Fatalf("listings: %+v", p.Listings)
	}
	if got := *p.Listings[0].LastReviewDate; got != "2021-03-02T10:00:00Z" {
		t.Fatalf("lastReviewDate = %q", got)
	}
}

func TestFetchSecondary_KeyedByPlaceRef(t *testing.T) {
	src := New(writeFixtures(t))
	p, err := src.FetchSecondary(context.Background(), "flex-shoreditch")
	if err != nil {
		t.Fatalf("FetchSecondary: %v", err)
	}
	if !p.OK() {
		t.Fatalf("status = %q", p.Status)
	}
	if p.Data.Listing == nil || p.Data.Listing.ListingName != "Flex Living Shoreditch" {
		t.Fatalf("listing: %+v", p.Data.Listing)
	}
	if len(p.Data.Reviews) != 2 || p.Data.Reviews[1].ID != "flex-shoreditch-1" {
		t.Fatalf("reviews: %+v", p.Data.Reviews)
	}
	if *p.Data.Reviews[0].RatingOutOf10 != 10 {
		t.Fatalf("rating10 = %v", *p.Data.Reviews[0].RatingOutOf10)
	}
}

func TestMissingFileIsNotFound(t *testing.T) {
	src := New(t.TempDir())
	_, err := src.FetchPrimary(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
