package main

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the normalised descriptor as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := a.loadForm(cmd.Context())
			if err != nil {
				return err
			}
			data, err := sonic.ConfigStd.MarshalIndent(form, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding descriptor: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
