package domain

type Listing struct {
	ListingID       string   `json:"listingId"`
	ListingName     string   `json:"listingName"`
	AvgRatingOutOf5 *float64 `json:"avgRatingOutOf5"`
	ReviewCount     int      `json:"reviewCount"`
	LastReviewDate  *string  `json:"lastReviewDate"`
}

type HealthStatus string

const (
	HealthHealthy        HealthStatus = "Healthy"
	HealthNeedsAttention HealthStatus = "Needs attention"
	HealthMonitor        HealthStatus = "Monitor"
)

// ListingSummary is a listing card: the upstream aggregate plus its derived health.
type ListingSummary struct {
	Listing
	NegativeCount int          `json:"negativeCount"`
	Health        HealthStatus `json:"health"`
}
