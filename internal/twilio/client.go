package twilio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/danuwira/duitbot/internal/common"
)

const defaultBaseURL = "https://api.twilio.com"

// Config holds the Twilio credentials for proactive sends.
type Config struct {
	AccountSID string
	AuthToken  string
	// FromNumber is the bot's WhatsApp sender, e.g. "whatsapp:+14155238886".
	FromNumber string
	// BaseURL overrides the API host, for tests.
	BaseURL string
}

// LoadFromEnv reads the TWILIO_* environment variables into the config.
// An unset variable leaves the field as is, so values loaded later take
// precedence over the environment.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		c.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv("TWILIO_FROM_NUMBER"); v != "" {
		c.FromNumber = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.AccountSID == "" || c.AuthToken == "" {
		return fmt.Errorf("%w: twilio account SID and auth token are required", common.ErrMissingConfig)
	}
	if c.FromNumber == "" {
		return fmt.Errorf("%w: twilio from number is required", common.ErrMissingConfig)
	}
	return nil
}

// Client sends proactive messages through the Twilio REST API. A failed
// send is reported to the caller for logging; it is never retried.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     Config
}

// NewClient creates a Twilio REST client.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Send delivers one message to the given recipient.
func (c *Client) Send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.config.BaseURL, c.config.AccountSID)

	form := url.Values{}
	form.Set("From", c.config.FromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.config.AccountSID, c.config.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send request failed: %v", common.ErrGatewayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: send rejected with status %d: %s",
			common.ErrGatewayUnavailable, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	c.logger.Debug("sent proactive message", "to", to, "bytes", len(body))
	return nil
}
