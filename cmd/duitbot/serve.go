package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/danuwira/duitbot/internal/bot"
	"github.com/danuwira/duitbot/internal/config"
	"github.com/danuwira/duitbot/internal/ledger"
	"github.com/danuwira/duitbot/internal/server"
	"github.com/danuwira/duitbot/internal/session"
	"github.com/danuwira/duitbot/internal/twilio"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	ledgerConfig, err := config.LoadLedgerConfig()
	if err != nil {
		return fmt.Errorf("ledger configuration: %w", err)
	}

	store, err := ledger.NewSheetsStore(ctx, *ledgerConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	if err := store.EnsureHeader(ctx); err != nil {
		return fmt.Errorf("failed to ensure ledger header: %w", err)
	}

	twilioConfig, err := config.LoadTwilioConfig()
	if err != nil {
		return fmt.Errorf("twilio configuration: %w", err)
	}

	var sender server.Sender
	var authToken string
	if twilioConfig != nil {
		client, clientErr := twilio.NewClient(*twilioConfig, logger)
		if clientErr != nil {
			return fmt.Errorf("failed to create twilio client: %w", clientErr)
		}
		sender = client
		authToken = twilioConfig.AuthToken
	} else {
		logger.Warn("no twilio credentials configured, deferred replies will be dropped")
	}

	sessions := session.NewMemoryStore(session.DefaultTTL)
	defer sessions.Close()

	dispatcher := bot.NewDispatcher(store, sessions, logger)
	srv := server.New(config.LoadServerConfig(authToken), dispatcher, sender, logger)

	return srv.Run(ctx)
}
