package cli

import (
	"context"

	"github.com/spf13/cobra"

	"flex_reviews/internal/app"
)

func newReviewsCmd(o *rootOpts) *cobra.Command {
	var (
		ff       filterFlags
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "List reviews matching the filters, one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				f, err := ff.resolve(ctx, d.Views)
				if err != nil {
					return err
				}
				p, err := d.Reviews(ctx, f, page, pageSize)
				if err != nil {
					return err
				}
				if o.isJSON() {
					return printJSON(cmd.OutOrStdout(), p)
				}
				return printReviewTable(cmd.OutOrStdout(), p)
			})
		},
	}
	ff.bind(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "page number, clamped to the available pages")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "reviews per page (default from PAGE_SIZE)")
	return cmd
}
