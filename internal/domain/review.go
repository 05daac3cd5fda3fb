package domain

import (
	"strings"
	"time"
)

type Source string

const (
	SourceHostaway Source = "hostaway"
	SourceGoogle   Source = "google"
)

type ReviewType string

const (
	GuestToHost ReviewType = "guest-to-host"
	HostToGuest ReviewType = "host-to-guest"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// Review is the normalized, source-tagged record. Immutable once built.
type Review struct {
	ID             string     `json:"id"`
	Source         Source     `json:"source"`
	Channel        string     `json:"channel"`
	Type           ReviewType `json:"type"`
	ListingID      string     `json:"listingId"`
	ListingName    string     `json:"listingName"`
	GuestName      *string    `json:"guestName,omitempty"`
	RatingOutOf5   *float64   `json:"ratingOutOf5"`
	SentimentLabel Sentiment  `json:"sentimentLabel,omitempty"` // "" when upstream sent none
	PublicReview   string     `json:"publicReview"`
	SubmittedAt    string     `json:"submittedAt,omitempty"`
	Topics         []string   `json:"topics"`
}

// Sentiment returns the label with the absent case made explicit as Neutral.
func (r Review) Sentiment() Sentiment {
	if r.SentimentLabel == "" {
		return SentimentNeutral
	}
	return r.SentimentLabel
}

// Rating returns the rating with absent treated as 0.
func (r Review) Rating() float64 {
	if r.RatingOutOf5 == nil {
		return 0
	}
	return *r.RatingOutOf5
}

func (r Review) HasTopic(topic string) bool {
	for _, t := range r.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

var submittedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SubmittedTime parses SubmittedAt; ok is false when it is missing or unparsable.
func (r Review) SubmittedTime() (time.Time, bool) {
	s := strings.TrimSpace(r.SubmittedAt)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range submittedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReviewView is a Review joined with its overlay fields for one query.
type ReviewView struct {
	Review
	ApprovedForWeb bool         `json:"approvedForWeb"`
	Status         ReviewStatus `json:"status"`
	Note           string       `json:"note"`
}

type ReviewPage struct {
	Items      []ReviewView `json:"items"`
	Total      int          `json:"totalCount"`
	TotalPages int          `json:"totalPages"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
}

// Snapshot is one load of both sources, replaced wholesale on refresh.
type Snapshot struct {
	Reviews  []Review  `json:"reviews"`
	Listings []Listing `json:"listings"`
	LoadedAt time.Time `json:"loadedAt"`
}
