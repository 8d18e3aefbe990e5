package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/renderers/tui"
)

func newRunCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Answer the form in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := a.loadForm(ctx)
			if err != nil {
				return err
			}
			sub, err := a.submitter(dryRun, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			opts := append(a.cfg.ControllerOptions(), chatflow.WithLogger(a.logger))
			ctrl, err := chatflow.New(form, sub, opts...)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			runner := tui.New(tui.WithOutput(cmd.OutOrStdout()), tui.WithLogger(a.logger))
			snap, err := runner.Run(ctx, ctrl)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			if snap.Outcome != nil && !snap.Outcome.Success {
				return fmt.Errorf("submission rejected")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the answers instead of posting them")
	return cmd
}
