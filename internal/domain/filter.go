package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

const All = "all"

type TimeRange string

const (
	TimeAll    TimeRange = "all"
	TimeLast30 TimeRange = "last_30"
	TimeLast90 TimeRange = "last_90"
)

// Days is the window length, 0 for TimeAll or unknown values.
func (t TimeRange) Days() float64 {
	switch t {
	case TimeLast30:
		return 30
	case TimeLast90:
		return 90
	}
	return 0
}

// FilterConfig is a value object; "all" is the wildcard for every string field.
type FilterConfig struct {
	ListingID    string    `json:"listingId"`
	Channel      string    `json:"channel"`
	Type         string    `json:"type"`
	MinRating    *float64  `json:"minRating"`
	OnlyApproved bool      `json:"onlyApproved"`
	Source       string    `json:"source"`
	Sentiment    string    `json:"sentiment"`
	Topic        string    `json:"topic"`
	TimeRange    TimeRange `json:"timeRange"`
}

func DefaultFilters() FilterConfig {
	return FilterConfig{
		ListingID: All,
		Channel:   All,
		Type:      All,
		Source:    All,
		Sentiment: All,
		Topic:     All,
		TimeRange: TimeAll,
	}
}

// Normalized fills blank fields with wildcards.
func (f FilterConfig) Normalized() FilterConfig {
	wild := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return All
		}
		return s
	}
	f.ListingID = wild(f.ListingID)
	f.Channel = wild(f.Channel)
	f.Type = wild(f.Type)
	f.Source = wild(f.Source)
	f.Sentiment = wild(f.Sentiment)
	f.Topic = wild(f.Topic)
	if f.TimeRange == "" {
		f.TimeRange = TimeAll
	}
	return f
}

// ParseMinRating returns nil for blank or non-numeric input.
func ParseMinRating(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// UnmarshalJSON accepts minRating as a number, a numeric string, or anything
// else (treated as no constraint).
func (f *FilterConfig) UnmarshalJSON(b []byte) error {
	type plain FilterConfig
	var aux struct {
		plain
		MinRating json.RawMessage `json:"minRating"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*f = FilterConfig(aux.plain)
	f.MinRating = nil
	if raw := strings.TrimSpace(string(aux.MinRating)); raw != "" && raw != "null" {
		var n float64
		var s string
		switch {
		case json.Unmarshal(aux.MinRating, &n) == nil:
			f.MinRating = &n
		case json.Unmarshal(aux.MinRating, &s) == nil:
			f.MinRating = ParseMinRating(s)
		}
	}
	*f = f.Normalized()
	return nil
}

type SavedView struct {
	Name    string       `json:"name"`
	Filters FilterConfig `json:"filters"`
}
