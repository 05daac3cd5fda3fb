package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func newExportCmd(o *rootOpts) *cobra.Command {
	var (
		ff  filterFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every review matching the filters as CSV",
		Long:  "Writes the full filtered set (not just one page) as CSV to --out, or to stdout when --out is empty.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				f, err := ff.resolve(ctx, d.Views)
				if err != nil {
					return err
				}
				body, rows, err := d.Export(ctx, f)
				if errors.Is(err, domain.ErrNothingToExport) {
					fmt.Fprintln(cmd.ErrOrStderr(), "No reviews to export for the current view.")
					return nil
				}
				if err != nil {
					return err
				}
				if out == "" {
					_, err := io.WriteString(cmd.OutOrStdout(), body+"\n")
					return err
				}
				if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d reviews to %s\n", rows, out)
				return nil
			})
		},
	}
	ff.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}
