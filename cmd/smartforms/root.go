package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "smartforms",
		Short:         "Run conversational forms one question at a time",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with SMARTFORMS_* overrides")
	flags.StringVar(&a.descriptor, "descriptor", "", "form descriptor path or URL (JSON, YAML or HTML page)")
	flags.StringVar(&a.overlay, "overlay", "", "JSON merge patch applied to the descriptor")
	flags.StringVar(&a.operation, "openapi-operation", "", "treat the descriptor as OpenAPI and build the form from this operation")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newTelegramCmd(a))
	return root
}
