package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/5unnykum4r/grip/internal/channels/discord"
	"github.com/5unnykum4r/grip/internal/channels/slack"
	"github.com/5unnykum4r/grip/internal/channels/telegram"
	"github.com/5unnykum4r/grip/internal/config"
	"github.com/5unnykum4r/grip/internal/directsender"
)

func sendCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "send <session-key> <text>",
		Short: "Deliver a message directly to a channel, bypassing the agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = filepath.Join(workspaceFlag, "config.yaml")
			}
			sender, cleanup, err := newDirectSender(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			sender.SendMessage(context.Background(), args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml (default: <workspace>/config.yaml)")
	return cmd
}

// newDirectSender loads channel tokens from config and registers a
// concrete uploader for each channel with a non-empty token.
func newDirectSender(configPath string) (*directsender.Sender, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	sender := directsender.New(directsender.Tokens{
		Telegram: cfg.Channels.Telegram,
		Discord:  cfg.Channels.Discord,
		Slack:    cfg.Channels.Slack,
	})

	if cfg.Channels.Telegram != "" {
		up, err := telegram.NewUploader(cfg.Channels.Telegram)
		if err != nil {
			return nil, nil, fmt.Errorf("telegram uploader: %w", err)
		}
		sender.RegisterUploader("telegram", up)
	}
	if cfg.Channels.Discord != "" {
		up, err := discord.NewUploader(cfg.Channels.Discord)
		if err != nil {
			return nil, nil, fmt.Errorf("discord uploader: %w", err)
		}
		sender.RegisterUploader("discord", up)
	}
	if cfg.Channels.Slack != "" {
		sender.RegisterUploader("slack", slack.NewUploader(cfg.Channels.Slack))
	}

	return sender, func() { _ = sender.Close() }, nil
}
