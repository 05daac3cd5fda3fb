package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"flex_reviews/internal/domain"
)

// printJSON marshals v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return strconv.FormatFloat(*r, 'f', 1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printListingTable(w io.Writer, ls []domain.ListingSummary) error {
	if len(ls) == 0 {
		_, err := fmt.Fprintln(w, "No listings found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAVG\tREVIEWS\tNEGATIVE\tHEALTH")
	for _, l := range ls {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			l.ListingID, truncate(l.ListingName, 40), formatRating(l.AvgRatingOutOf5), l.ReviewCount, l.NegativeCount, l.Health)
	}
	return tw.Flush()
}

func printReviewTable(w io.Writer, p domain.ReviewPage) error {
	if p.Total == 0 {
		_, err := fmt.Fprintln(w, "No reviews match the current filters.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tLISTING\tRATING\tSENTIMENT\tSTATUS\tAPPROVED\tTOPICS")
	for _, r := range p.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Source, truncate(r.ListingName, 30), formatRating(r.RatingOutOf5),
			r.Sentiment(), r.Status, yesNo(r.ApprovedForWeb), strings.Join(r.Topics, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npage %d/%d (%d reviews)\n", p.Page, p.TotalPages, p.Total)
	return err
}

func printViewTable(w io.Writer, views []domain.SavedView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No saved views.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tFILTERS")
	for i, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, v.Name, describeFilters(v.Filters))
	}
	return tw.Flush()
}

// describeFilters lists only the constrained fields.
func describeFilters(f domain.FilterConfig) string {
	var parts []string
	add := func(k, v string) {
		if v != domain.All && v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("listing", f.ListingID)
	add("channel", f.Channel)
	add("type", f.Type)
	if f.MinRating != nil {
		parts = append(parts, "minRating="+strconv.FormatFloat(*f.MinRating, 'f', -1, 64))
	}
	if f.OnlyApproved {
		parts = append(parts, "approved")
	}
	add("source", f.Source)
	add("sentiment", f.Sentiment)
	add("topic", f.Topic)
	add("timeRange", string(f.TimeRange))
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}
