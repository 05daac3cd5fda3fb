package app

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"flex_reviews/internal/domain"
)

/********** alias registries (single source of truth) **********/

var hostawayAliases = map[string][]string{
	"id":        {"id", "reviewId", "review_id"},
	"listing":   {"listingName", "listing_name", "listing.name"},
	"text":      {"publicReview", "public_review", "comment", "text"},
	"guest":     {"guestName", "guest_name", "reviewer.name"},
	"channel":   {"channel", "channelName", "channel_name"},
	"type":      {"type", "reviewType", "review_type"},
	"status":    {"status", "reviewStatus"},
	"submitted": {"submittedAt", "submitted_at", "date"},
}

var googleAliases = map[string][]string{
	"place":  {"name", "place.name"},
	"author": {"author_name", "authorName", "author.name"},
	"text":   {"text", "comment", "originalText.text"},
}

// hostawayTimeLayout is the upstream "submittedAt" format, always UTC.
const hostawayTimeLayout = "2006-01-02 15:04:05"

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstIDFlexible: id from several paths as a string (float64/int/string).
func firstIDFlexible(m map[string]any, paths ...string) string {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			if v == math.Trunc(v) {
				return strconv.FormatInt(int64(v), 10)
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// categoryRatings reads [{category, rating}] entries that carry a numeric rating.
func categoryRatings(m map[string]any, paths ...string) []domain.ReviewCategory {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]domain.ReviewCategory, 0, len(raw))
		for _, it := range raw {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, domain.ReviewCategory{
				Category: lookupStr(obj, "category"),
				Rating:   getFloatFlexible(obj, "rating"),
			})
		}
		return out
	}
	return nil
}

// ListingSlug derives a listing id from its display name:
// "2B N1 A - 29 Shoreditch Heights" -> "2b-n1-a---29-shoreditch-heights".
func ListingSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}

func isoZ(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05") + "Z"
}

/********** hostaway export mapper **********/

// overallRating10 prefers the explicit overall rating and falls back to the
// mean of category ratings. Both are out of 10.
func overallRating10(rating *float64, cats []domain.ReviewCategory) *float64 {
	if rating != nil {
		return rating
	}
	var sum float64
	var n int
	for _, c := range cats {
		if c.Rating != nil {
			sum += *c.Rating
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func parseHostawayTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(hostawayTimeLayout, s); err == nil {
		return isoZ(t)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return isoZ(t)
	}
	return ""
}

type listingAcc struct {
	listing domain.Listing
	ratings []float64
}

// MapHostawayExport converts raw Hostaway review records into the primary
// payload: reviews with /10 and /5 ratings, ISO timestamps and lexicon
// sentiment, plus one summary per listing in first-seen order. Records
// without an id or listing name are skipped.
func MapHostawayExport(records []map[string]any) domain.PrimaryPayload {
	out := domain.PrimaryPayload{Reviews: make([]domain.RawHostawayReview, 0, len(records))}
	acc := map[string]*listingAcc{}
	var order []string

	for _, r := range records {
		id := firstIDFlexible(r, hostawayAliases["id"]...)
		listingName := deref(firstNonEmptyAlias(r, hostawayAliases, "listing"))
		if id == "" || listingName == "" {
			continue
		}
		listingID := ListingSlug(listingName)
		cats := categoryRatings(r, "reviewCategory", "categories")
		r10 := overallRating10(getFloatFlexible(r, "rating"), cats)
		var r5 *float64
		if r10 != nil {
			v := round1(*r10 / 2)
			r5 = &v
		}
		text := lookupStr(r, "publicReview")
		if text == "" {
			text = deref(firstNonEmptyAlias(r, hostawayAliases, "text"))
		}
		score, label := AnalyzeSentiment(text)
		submitted := parseHostawayTime(deref(firstNonEmptyAlias(r, hostawayAliases, "submitted")))

		out.Reviews = append(out.Reviews, domain.RawHostawayReview{
			ID:             id,
			Source:         string(domain.SourceHostaway),
			ListingID:      listingID,
			ListingName:    listingName,
			Type:           deref(firstNonEmptyAlias(r, hostawayAliases, "type")),
			Status:         deref(firstNonEmptyAlias(r, hostawayAliases, "status")),
			Channel:        orDefault(deref(firstNonEmptyAlias(r, hostawayAliases, "channel")), "hostaway"),
			GuestName:      firstNonEmptyAlias(r, hostawayAliases, "guest"),
			PublicReview:   text,
			Categories:     cats,
			RatingOutOf10:  r10,
			RatingOutOf5:   r5,
			SubmittedAt:    submitted,
			SentimentScore: &score,
			SentimentLabel: string(label),
		})

		a, ok := acc[listingID]
		if !ok {
			a = &listingAcc{listing: domain.Listing{ListingID: listingID, ListingName: listingName}}
			acc[listingID] = a
			order = append(order, listingID)
		}
		a.listing.ReviewCount++
		if submitted != "" && (a.listing.LastReviewDate == nil || submitted > *a.listing.LastReviewDate) {
			s := submitted
			a.listing.LastReviewDate = &s
		}
		if r5 != nil {
			a.ratings = append(a.ratings, *r5)
		}
	}

	out.Listings = make([]domain.Listing, 0, len(order))
	for _, id := range order {
		a := acc[id]
		a.listing.AvgRatingOutOf5 = mean1(a.ratings)
		out.Listings = append(out.Listings, a.listing)
	}
	return out
}

func mean1(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	avg := round1(sum / float64(len(vals)))
	return &avg
}

/********** google place mapper **********/

// MapGooglePlace converts a raw place result ({name, reviews:[{author_name,
// rating, text, time}]}) into a successful secondary payload keyed by placeRef.
func MapGooglePlace(placeRef string, result map[string]any) domain.SecondaryPayload {
	name := deref(firstNonEmptyAlias(result, googleAliases, "place"))
	if name == "" {
		name = "Google Place"
	}
	raw, _ := lookupAny(result, "reviews").([]any)

	reviews := make([]domain.RawGoogleReview, 0, len(raw))
	var ratings []float64
	var last *string
	for idx, it := range raw {
		r, ok := it.(map[string]any)
		if !ok {
			continue
		}
		r5 := 0.0
		if f := getFloatFlexible(r, "rating"); f != nil {
			r5 = *f
		}
		r10 := r5 * 2
		submitted := ""
		if ts := getFloatFlexible(r, "time"); ts != nil {
			submitted = isoZ(time.Unix(int64(*ts), 0))
		}
		text := lookupStr(r, "text")
		if text == "" {
			text = deref(firstNonEmptyAlias(r, googleAliases, "text"))
		}
		score, label := AnalyzeSentiment(text)

		reviews = append(reviews, domain.RawGoogleReview{
			ID:             placeRef + "-" + strconv.Itoa(idx),
			ListingID:      placeRef,
			ListingName:    name,
			Type:           string(domain.GuestToHost),
			Channel:        "google",
			GuestName:      firstNonEmptyAlias(r, googleAliases, "author"),
			PublicReview:   text,
			RatingOutOf10:  &r10,
			RatingOutOf5:   &r5,
			SubmittedAt:    submitted,
			SentimentScore: &score,
			SentimentLabel: string(label),
		})
		if r5 != 0 {
			ratings = append(ratings, r5)
		}
		if submitted != "" && (last == nil || submitted > *last) {
			s := submitted
			last = &s
		}
	}

	return domain.SecondaryPayload{
		Status: domain.StatusSuccess,
		Data: domain.SecondaryData{
			Listing: &domain.Listing{
				ListingID:       placeRef,
				ListingName:     name,
				AvgRatingOutOf5: mean1(ratings),
				ReviewCount:     len(reviews),
				LastReviewDate:  last,
			},
			Reviews: reviews,
		},
	}
}
