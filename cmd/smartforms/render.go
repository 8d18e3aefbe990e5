package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/render"
	"github.com/goliatone/go-smartforms/pkg/renderers/html"
	"github.com/goliatone/go-smartforms/pkg/renderers/tui"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		presenterName string
		templatesDir  string
		output        string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the first step of the form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := a.loadForm(ctx)
			if err != nil {
				return err
			}

			htmlOpts := []html.Option{html.WithLogger(a.logger)}
			if templatesDir != "" {
				htmlOpts = append(htmlOpts, html.WithTemplatesDir(templatesDir))
			}
			htmlPresenter, err := html.New(htmlOpts...)
			if err != nil {
				return err
			}
			registry := render.NewRegistry()
			registry.MustRegister(htmlPresenter)
			registry.MustRegister(tui.NewPresenter(tui.DefaultTheme()))

			presenter, err := registry.Get(presenterName)
			if err != nil {
				return err
			}

			opts := append(a.cfg.ControllerOptions(), chatflow.WithLogger(a.logger))
			ctrl, err := chatflow.New(form, dryRunSubmitter(cmd.ErrOrStderr()), opts...)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			out, err := render.PresentController(ctx, presenter, ctrl)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Step written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&presenterName, "presenter", "html", "presenter to use (html or text)")
	cmd.Flags().StringVar(&templatesDir, "templates", "", "directory overriding the embedded templates")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
