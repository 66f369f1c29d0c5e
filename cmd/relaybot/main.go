// Package main provides the entry point for the anonymous relay bot.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/relaybot/internal/config"
	"github.com/joshsymonds/relaybot/internal/telegram"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "relaybot",
		Short:        "Anonymous stranger chat relay for Telegram",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		envFile string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the Bot API and start relaying",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if debug {
				cfg.Debug = true
			}

			logger := newLogger(cfg.Debug)
			slog.SetDefault(logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			go func() {
				select {
				case <-sigChan:
					logger.Info("shutting down gracefully")
					cancel()
				case <-ctx.Done():
				}
			}()

			api, err := telegram.Connect(cfg.BotToken, cfg.Debug)
			if err != nil {
				return err
			}
			logger.Info("authorized with Bot API", slog.String("bot", api.Self.UserName))

			return runBot(ctx, cfg, api, logger)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional env file with bot settings")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "relaybot %s\n", version)
		},
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
