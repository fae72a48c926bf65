package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"admissions/internal/notify"
	"admissions/internal/shell"
)

func (a *app) stripeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stripe",
		Short: "Stripe payment sync",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "runs",
			Short: "List recent sync runs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				runs := shell.NewStripeRuns(a.client, a.term.notifier(), nil)
				if err := runs.Load(cmd.Context()); err != nil {
					return reported{err}
				}
				return a.term.renderView(runs.View())
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Run a sync now",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				n := a.term.notifier()
				run, err := a.client.StripeSync(ctx)
				if err != nil {
					_ = n.Notify(ctx, notify.Failure("Stripe sync failed", describe(err)))
					return reported{err}
				}
				_ = n.Notify(ctx, notify.Success("Stripe sync finished",
					fmt.Sprintf("%d payments synced since %s", run.Payments, run.Since.Format("2006-01-02 15:04"))))
				return nil
			},
		},
	)
	return cmd
}
