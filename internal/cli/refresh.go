package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"flex_reviews/internal/app"
)

func newRefreshCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload both review sources and replace the cached snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				snap, err := d.Q.Refresh(ctx)
				if err != nil {
					return err
				}
				if o.isJSON() {
					return printJSON(cmd.OutOrStdout(), map[string]any{
						"reviews": len(snap.Reviews), "listings": len(snap.Listings), "loadedAt": snap.LoadedAt,
					})
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d reviews across %d listings\n", len(snap.Reviews), len(snap.Listings))
				return err
			})
		},
	}
}
