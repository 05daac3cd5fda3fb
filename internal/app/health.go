package app

import "flex_reviews/internal/domain"

// EvaluateHealth derives a triage label for a listing. Rules are checked in
// order: Healthy, then Needs attention, then Monitor. An absent average counts as 0.
func EvaluateHealth(l domain.Listing, reviews []domain.Review) domain.HealthStatus {
	st, _ := evaluate(l, reviews)
	return st
}

func evaluate(l domain.Listing, reviews []domain.Review) (domain.HealthStatus, int) {
	negative := 0
	for _, r := range reviews {
		if r.ListingID == l.ListingID && r.Sentiment() == domain.SentimentNegative {
			negative++
		}
	}
	avg := 0.0
	if l.AvgRatingOutOf5 != nil {
		avg = *l.AvgRatingOutOf5
	}
	switch {
	case avg >= 4.5 && negative == 0:
		return domain.HealthHealthy, negative
	case avg < 4 || negative >= 2:
		return domain.HealthNeedsAttention, negative
	default:
		return domain.HealthMonitor, negative
	}
}

// ListingHealth builds a summary card per listing, in listing order.
func ListingHealth(listings []domain.Listing, reviews []domain.Review) []domain.ListingSummary {
	out := make([]domain.ListingSummary, 0, len(listings))
	for _, l := range listings {
		st, neg := evaluate(l, reviews)
		out = append(out, domain.ListingSummary{Listing: l, NegativeCount: neg, Health: st})
	}
	return out
}
