package app

import (
	"strconv"
	"strings"

	"flex_reviews/internal/domain"
)

var csvHeader = []string{
	"id", "listingName", "channel", "type", "ratingOutOf5", "sentimentLabel",
	"topics", "submittedAt", "publicReview", "status", "note", "approvedForWeb",
}

// ExportCSV renders the filtered (unpaged) set. listingName, topics,
// publicReview and note are always quoted; the other columns are written
// as-is. An empty set returns domain.ErrNothingToExport rather than a
// header-only document.
func ExportCSV(rows []domain.ReviewView) (string, error) {
	if len(rows) == 0 {
		return "", domain.ErrNothingToExport
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for _, r := range rows {
		rating := ""
		if r.RatingOutOf5 != nil {
			rating = strconv.FormatFloat(*r.RatingOutOf5, 'f', -1, 64)
		}
		approved := "no"
		if r.ApprovedForWeb {
			approved = "yes"
		}
		lines = append(lines, strings.Join([]string{
			r.ID,
			quote(r.ListingName),
			r.Channel,
			string(r.Type),
			rating,
			string(r.SentimentLabel),
			quote(strings.Join(r.Topics, "|")),
			r.SubmittedAt,
			quote(r.PublicReview),
			string(r.Status),
			quote(r.Note),
			approved,
		}, ","))
	}
	return strings.Join(lines, "\n"), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
