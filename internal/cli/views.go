package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"flex_reviews/internal/app"
)

func newViewsCmd(o *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Manage saved filter views",
	}
	cmd.AddCommand(newViewsListCmd(o), newViewsSaveCmd(o), newViewsDeleteCmd(o))
	return cmd
}

func newViewsListCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				views := d.Views.List(ctx)
				if o.isJSON() {
					return printJSON(cmd.OutOrStdout(), views)
				}
				return printViewTable(cmd.OutOrStdout(), views)
			})
		},
	}
}

func newViewsSaveCmd(o *rootOpts) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the filter flags under a name, replacing a view with the same name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				f, err := ff.resolve(ctx, d.Views)
				if err != nil {
					return err
				}
				idx, view, err := d.Views.Save(ctx, args[0], f)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved view %d: %s\n", idx, view.Name)
				return err
			})
		},
	}
	ff.bind(cmd)
	return cmd
}

func newViewsDeleteCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete the saved view at index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: must be a number", args[0])
			}
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				if err := d.Views.Delete(ctx, idx); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted view %d\n", idx)
				return err
			})
		},
	}
}
