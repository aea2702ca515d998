package ledger

import (
	"fmt"
	"os"
	"time"

	"github.com/danuwira/duitbot/internal/common"
)

// Config holds the configuration for the Google Sheets ledger store.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SheetName          string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SheetName:     "Sheet1",
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// LoadFromEnv reads the GOOGLE_SHEETS_* and SPREADSHEET_ID environment
// variables into the config. An unset variable leaves the field as is, so
// values loaded later take precedence over the environment.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("GOOGLE_SHEETS_CLIENT_ID"); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"); v != "" {
		c.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"); v != "" {
		c.RefreshToken = v
	}

	// Service account path (alternative to OAuth2)
	if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
		c.ServiceAccountPath = v
	}

	if v := os.Getenv("SPREADSHEET_ID"); v != "" {
		c.SpreadsheetID = v
	}
	if v := os.Getenv("GOOGLE_SHEETS_SHEET_NAME"); v != "" {
		c.SheetName = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("%w: spreadsheet ID is required", common.ErrMissingConfig)
	}

	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}

	if c.SheetName == "" {
		return fmt.Errorf("%w: sheet name cannot be empty", common.ErrInvalidConfig)
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}

	return nil
}
