package app

import (
	"math"
	"strings"

	"flex_reviews/internal/domain"
)

// Normalize merges both sources into one ordered review set: primary first,
// then secondary. Records without an id or listing reference are dropped.
// A nil or non-success secondary payload contributes nothing. Ids are not
// de-duplicated across sources.
func Normalize(primary domain.PrimaryPayload, secondary *domain.SecondaryPayload) []domain.Review {
	out := make([]domain.Review, 0, len(primary.Reviews))
	for _, r := range primary.Reviews {
		if rv, ok := normalizeHostaway(r); ok {
			out = append(out, rv)
		}
	}
	if secondary == nil || !secondary.OK() {
		return out
	}
	for _, r := range secondary.Data.Reviews {
		if rv, ok := normalizeGoogle(r); ok {
			out = append(out, rv)
		}
	}
	return out
}

// MergeListings returns the primary listings followed by the secondary
// listing when the secondary payload is usable.
func MergeListings(primary domain.PrimaryPayload, secondary *domain.SecondaryPayload) []domain.Listing {
	out := make([]domain.Listing, 0, len(primary.Listings)+1)
	out = append(out, primary.Listings...)
	if secondary != nil && secondary.OK() && secondary.Data.Listing != nil {
		out = append(out, *secondary.Data.Listing)
	}
	return out
}

func normalizeHostaway(r domain.RawHostawayReview) (domain.Review, bool) {
	id, listingID := strings.TrimSpace(r.ID), strings.TrimSpace(r.ListingID)
	if id == "" || listingID == "" {
		return domain.Review{}, false
	}
	return domain.Review{
		ID:             id,
		Source:         domain.SourceHostaway,
		Channel:        orDefault(r.Channel, "hostaway"),
		Type:           domain.ReviewType(orDefault(r.Type, string(domain.GuestToHost))),
		ListingID:      listingID,
		ListingName:    r.ListingName,
		GuestName:      r.GuestName,
		RatingOutOf5:   rating5(r.RatingOutOf5, r.RatingOutOf10),
		SentimentLabel: parseSentiment(r.SentimentLabel),
		PublicReview:   r.PublicReview,
		SubmittedAt:    strings.TrimSpace(r.SubmittedAt),
		Topics:         ExtractTopics(r.PublicReview),
	}, true
}

func normalizeGoogle(r domain.RawGoogleReview) (domain.Review, bool) {
	id, listingID := strings.TrimSpace(r.ID), strings.TrimSpace(r.ListingID)
	if id == "" || listingID == "" {
		return domain.Review{}, false
	}
	return domain.Review{
		ID:             id,
		Source:         domain.SourceGoogle,
		Channel:        orDefault(r.Channel, "google"),
		Type:           domain.ReviewType(orDefault(r.Type, string(domain.GuestToHost))),
		ListingID:      listingID,
		ListingName:    r.ListingName,
		GuestName:      r.GuestName,
		RatingOutOf5:   rating5(r.RatingOutOf5, r.RatingOutOf10),
		SentimentLabel: parseSentiment(r.SentimentLabel),
		PublicReview:   r.PublicReview,
		SubmittedAt:    strings.TrimSpace(r.SubmittedAt),
		Topics:         ExtractTopics(r.PublicReview),
	}, true
}

// rating5 prefers the /5 value, falls back to half the /10 value, and clamps to [0,5].
func rating5(out5, out10 *float64) *float64 {
	var v float64
	switch {
	case out5 != nil:
		v = *out5
	case out10 != nil:
		v = round1(*out10 / 2)
	default:
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v = math.Max(0, math.Min(5, v))
	return &v
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func orDefault(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return def
}
