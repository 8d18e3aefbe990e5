package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/renderers/telegram"
)

func newTelegramCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Serve the form through a Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateTelegram(); err != nil {
				return err
			}
			ctx := cmd.Context()
			form, err := a.loadForm(ctx)
			if err != nil {
				return err
			}
			sub, err := a.submitter(dryRun, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			bot, err := telegram.NewBot(telebot.Settings{
				Token:  a.cfg.Telegram.Token,
				Poller: &telebot.LongPoller{Timeout: a.cfg.Telegram.PollTimeout},
			}, form, sub,
				telegram.WithLogger(a.logger),
				telegram.WithControllerOptions(append(a.cfg.ControllerOptions(), chatflow.WithLogger(a.logger))...),
			)
			if err != nil {
				return err
			}
			if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the answers instead of posting them")
	return cmd
}
