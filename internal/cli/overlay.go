package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func newApproveCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <review-id>",
		Short: "Toggle whether a review is shown on the public listing page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				approved, err := d.Overlay.ToggleApproval(ctx, args[0])
				if err != nil {
					return err
				}
				return o.printOverlay(cmd, args[0], d.Entry(ctx, args[0]), fmt.Sprintf("approved for web: %s", yesNo(approved)))
			})
		},
	}
}

func newStatusCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "status <review-id> <status>",
		Short: "Set a review's triage status (New, Under review, Resolved, Ignored)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := strings.Join(args[1:], " ")
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				if err := d.SetStatus(ctx, args[0], status); err != nil {
					return err
				}
				e := d.Entry(ctx, args[0])
				return o.printOverlay(cmd, args[0], e, "status: "+string(e.Status))
			})
		},
	}
}

func newNoteCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "note <review-id> [text...]",
		Short: "Set a review's internal note; no text clears it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return o.withDashboard(cmd, func(ctx context.Context, d *app.Dashboard) error {
				if err := d.Overlay.SetNote(ctx, args[0], text); err != nil {
					return err
				}
				e := d.Entry(ctx, args[0])
				msg := "note cleared"
				if e.Note != "" {
					msg = "note: " + e.Note
				}
				return o.printOverlay(cmd, args[0], e, msg)
			})
		},
	}
}

func (o *rootOpts) printOverlay(cmd *cobra.Command, id string, e domain.Overlay, msg string) error {
	if o.isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id": id, "approvedForWeb": e.Approved, "status": e.Status, "note": e.Note,
		})
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, msg)
	return err
}
