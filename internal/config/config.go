// Package config loads application configuration from Viper and
// environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/danuwira/duitbot/internal/ledger"
	"github.com/danuwira/duitbot/internal/server"
	"github.com/danuwira/duitbot/internal/twilio"
)

// LoadLedgerConfig loads the Google Sheets ledger configuration. Precedence:
// Viper (config file or DUITBOT_ env vars), then direct GOOGLE_SHEETS_* /
// SPREADSHEET_ID environment variables, then defaults.
func LoadLedgerConfig() (*ledger.Config, error) {
	config := ledger.DefaultConfig()

	// The environment fills first; Viper values override on top of it.
	config.LoadFromEnv()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = v
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.sheet_name"); v != "" {
		config.SheetName = v
	}

	config.ServiceAccountPath = expandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadTwilioConfig loads the messaging gateway credentials. Returns nil
// without error when no credentials are configured at all: the bot then
// answers inline only and drops deferred replies.
func LoadTwilioConfig() (*twilio.Config, error) {
	var config twilio.Config

	// The environment fills first; Viper values override on top of it.
	config.LoadFromEnv()

	if v := viper.GetString("twilio.account_sid"); v != "" {
		config.AccountSID = v
	}
	if v := viper.GetString("twilio.auth_token"); v != "" {
		config.AuthToken = v
	}
	if v := viper.GetString("twilio.from_number"); v != "" {
		config.FromNumber = v
	}

	if config.AccountSID == "" && config.AuthToken == "" && config.FromNumber == "" {
		return nil, nil
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadServerConfig loads the HTTP server settings.
func LoadServerConfig(twilioAuthToken string) server.Config {
	config := server.Config{
		Addr:      viper.GetString("server.addr"),
		PublicURL: viper.GetString("server.public_url"),
		AuthToken: twilioAuthToken,
	}

	if config.Addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			config.Addr = ":" + port
		} else {
			config.Addr = ":3000"
		}
	}
	if config.PublicURL == "" {
		config.PublicURL = os.Getenv("PUBLIC_URL")
	}

	return config
}

// expandPath expands ~ and environment variables in a file path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}
	return os.ExpandEnv(path)
}
