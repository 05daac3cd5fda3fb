package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func negatives(listing string, n int) []domain.Review {
	out := make([]domain.Review, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, review(listing+"-neg", withListing(listing), withSentiment(domain.SentimentNegative)))
	}
	return out
}

func TestEvaluateHealth(t *testing.T) {
	tests := []struct {
		name     string
		avg      *float64
		negative int
		want     domain.HealthStatus
	}{
		{"A: high average, no negatives", ptr(4.6), 0, domain.HealthHealthy},
		{"B: low average, no negatives", ptr(3.9), 0, domain.HealthNeedsAttention},
		{"B: low average, one negative", ptr(3.9), 1, domain.HealthNeedsAttention},
		{"C: high average, two negatives", ptr(4.7), 2, domain.HealthNeedsAttention},
		{"high average, one negative", ptr(4.7), 1, domain.HealthMonitor},
		{"middle average", ptr(4.2), 0, domain.HealthMonitor},
		{"boundary 4.5 is healthy", ptr(4.5), 0, domain.HealthHealthy},
		{"boundary 4.0 is monitor", ptr(4.0), 0, domain.HealthMonitor},
		{"absent average counts as 0", nil, 0, domain.HealthNeedsAttention},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := domain.Listing{ListingID: "x", AvgRatingOutOf5: tt.avg}
			reviews := append(negatives("x", tt.negative), negatives("other", 3)...)
			assert.Equal(t, tt.want, app.EvaluateHealth(l, reviews))
		})
	}
}

func TestListingHealth_CountsNegativesPerListing(t *testing.T) {
	listings := []domain.Listing{
		{ListingID: "a", AvgRatingOutOf5: ptr(4.6)},
		{ListingID: "c", AvgRatingOutOf5: ptr(4.7)},
	}
	reviews := append(negatives("c", 2), review("ok", withListing("a"), withSentiment(domain.SentimentPositive)))

	got := app.ListingHealth(listings, reviews)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].NegativeCount)
	assert.Equal(t, domain.HealthHealthy, got[0].Health)
	assert.Equal(t, 2, got[1].NegativeCount)
	assert.Equal(t, domain.HealthNeedsAttention, got[1].Health)
}
