package domain

// Upstream payload shapes as served by the review backend. Records are loose:
// any field may be missing and the normalizer decides what survives.

type ReviewCategory struct {
	Category string   `json:"category"`
	Rating   *float64 `json:"rating"`
}

type RawHostawayReview struct {
	ID             string           `json:"id"`
	Source         string           `json:"source"`
	ListingID      string           `json:"listingId"`
	ListingName    string           `json:"listingName"`
	Type           string           `json:"type"`
	Status         string           `json:"status"`
	Channel        string           `json:"channel"`
	GuestName      *string          `json:"guestName"`
	PublicReview   string           `json:"publicReview"`
	Categories     []ReviewCategory `json:"categories"`
	RatingOutOf10  *float64         `json:"ratingOutOf10"`
	RatingOutOf5   *float64         `json:"ratingOutOf5"`
	SubmittedAt    string           `json:"submittedAt"`
	SentimentScore *float64         `json:"sentimentScore"`
	SentimentLabel string           `json:"sentimentLabel"`
}

type RawGoogleReview struct {
	ID             string   `json:"id"`
	ListingID      string   `json:"listingId"`
	ListingName    string   `json:"listingName"`
	Type           string   `json:"type"`
	Channel        string   `json:"channel"`
	GuestName      *string  `json:"guestName"`
	PublicReview   string   `json:"publicReview"`
	RatingOutOf10  *float64 `json:"ratingOutOf10"`
	RatingOutOf5   *float64 `json:"ratingOutOf5"`
	SubmittedAt    string   `json:"submittedAt"`
	SentimentScore *float64 `json:"sentimentScore"`
	SentimentLabel string   `json:"sentimentLabel"`
}

type PrimaryPayload struct {
	Listings []Listing           `json:"listings"`
	Reviews  []RawHostawayReview `json:"reviews"`
}

const StatusSuccess = "success"

type SecondaryData struct {
	Listing *Listing          `json:"listing"`
	Reviews []RawGoogleReview `json:"reviews"`
}

type SecondaryPayload struct {
	Status string        `json:"status"`
	Data   SecondaryData `json:"data"`
}

func (p SecondaryPayload) OK() bool { return p.Status == StatusSuccess }
