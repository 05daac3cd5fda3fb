package cli

import (
	"context"

	"github.com/spf13/cobra"

	"flex_reviews/internal/app"
)

func newListingsCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "listings",
		Short: "List listings with their health status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				ls, err := d.Listings(ctx)
				if err != nil {
					return err
				}
				if o.isJSON() {
					return printJSON(cmd.OutOrStdout(), ls)
				}
				return printListingTable(cmd.OutOrStdout(), ls)
			})
		},
	}
}
