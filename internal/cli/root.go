// Package cli defines the cobra command tree for reviewctl.
package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/app"
	"flex_reviews/internal/bootstrap"
	"flex_reviews/internal/shared"
)

// Opener builds the dashboard a command runs against. The returned func
// releases its connections.
type Opener func(ctx context.Context) (*app.Dashboard, func(), error)

type rootOpts struct {
	format   string
	logLevel string
	open     Opener
}

// NewRootCmd creates the root command wired to the environment configuration.
func NewRootCmd() *cobra.Command {
	return newRootCmd(openFromEnv)
}

func newRootCmd(open Opener) *cobra.Command {
	o := &rootOpts{open: open}
	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Triage guest reviews across Hostaway and Google",
		Long:          "Browse, filter and export guest reviews, approve them for the public listing pages, and manage saved filter views.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = observability.NewConsoleLogger(os.Stderr, o.logLevel)
		},
	}

	root.PersistentFlags().StringVar(&o.format, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(
		newListingsCmd(o),
		newReviewsCmd(o),
		newExportCmd(o),
		newApproveCmd(o),
		newStatusCmd(o),
		newNoteCmd(o),
		newViewsCmd(o),
		newRefreshCmd(o),
	)
	return root
}

func (o *rootOpts) isJSON() bool { return o.format == "json" }

// withDashboard opens the dashboard for the duration of fn.
func (o *rootOpts) withDashboard(cmd *cobra.Command, fn func(ctx context.Context, d *app.Dashboard) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, closeFn, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, d)
}

func openFromEnv(ctx context.Context) (*app.Dashboard, func(), error) {
	cfg := shared.Load()
	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	src, err := bootstrap.NewSource(cfg)
	if err != nil {
		stores.Close()
		return nil, nil, err
	}
	return bootstrap.NewDashboard(ctx, cfg, src, stores), stores.Close, nil
}
