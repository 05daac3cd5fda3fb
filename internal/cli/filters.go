package cli

import (
	"context"

	"github.com/spf13/cobra"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

// filterFlags binds the filter fields to command flags. Unset flags are
// wildcards.
type filterFlags struct {
	listing      string
	channel      string
	reviewType   string
	minRating    string
	onlyApproved bool
	source       string
	sentiment    string
	topic        string
	timeRange    string
	view         int
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.listing, "listing", domain.All, "listing id")
	fl.StringVar(&f.channel, "channel", domain.All, "channel label")
	fl.StringVar(&f.reviewType, "type", domain.All, "review type (guest-to-host|host-to-guest)")
	fl.StringVar(&f.minRating, "min-rating", "", "minimum rating out of 5")
	fl.BoolVar(&f.onlyApproved, "approved", false, "only reviews approved for the website")
	fl.StringVar(&f.source, "source", domain.All, "review source (hostaway|google)")
	fl.StringVar(&f.sentiment, "sentiment", domain.All, "sentiment (Positive|Neutral|Negative)")
	fl.StringVar(&f.topic, "topic", domain.All, "topic, e.g. Cleanliness")
	fl.StringVar(&f.timeRange, "time-range", string(domain.TimeAll), "time window (all|last_30|last_90)")
	fl.IntVar(&f.view, "view", -1, "apply the saved view at this index instead of the filter flags")
}

// resolve returns the saved view's filters when --view is set, else the flags.
func (f *filterFlags) resolve(ctx context.Context, views *app.ViewRegistry) (domain.FilterConfig, error) {
	if f.view >= 0 {
		return views.Apply(ctx, f.view)
	}
	return domain.FilterConfig{
		ListingID:    f.listing,
		Channel:      f.channel,
		Type:         f.reviewType,
		MinRating:    domain.ParseMinRating(f.minRating),
		OnlyApproved: f.onlyApproved,
		Source:       f.source,
		Sentiment:    f.sentiment,
		Topic:        f.topic,
		TimeRange:    domain.TimeRange(f.timeRange),
	}.Normalized(), nil
}
