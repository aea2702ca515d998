package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/danuwira/duitbot/internal/common"
	"github.com/danuwira/duitbot/internal/model"
)

// SheetsStore implements Store against the Google Sheets API.
type SheetsStore struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
	sheetID int64
}

// NewSheetsStore creates a ledger store backed by a Google Sheet. It
// resolves the numeric sheet ID of the configured tab up front so that
// row deletion requests can reference it.
func NewSheetsStore(ctx context.Context, config Config, logger *slog.Logger) (*SheetsStore, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	s := &SheetsStore{
		config:  config,
		service: service,
		logger:  logger,
	}

	if err := s.resolveSheetID(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (s *SheetsStore) resolveSheetID(ctx context.Context) error {
	spreadsheet, err := s.service.Spreadsheets.Get(s.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to access spreadsheet %s: %w", s.config.SpreadsheetID, err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == s.config.SheetName {
			s.sheetID = sheet.Properties.SheetId
			return nil
		}
	}

	return fmt.Errorf("sheet %q not found in spreadsheet %s", s.config.SheetName, s.config.SpreadsheetID)
}

func (s *SheetsStore) retryOpts() common.RetryOptions {
	return common.RetryOptions{
		MaxAttempts:  s.config.RetryAttempts,
		InitialDelay: s.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

func (s *SheetsStore) rangeFor(a1 string) string {
	return fmt.Sprintf("%s!%s", s.config.SheetName, a1)
}

// EnsureHeader creates or repairs the header row. It runs once at startup;
// a sheet whose first row does not match Header exactly is rewritten.
func (s *SheetsStore) EnsureHeader(ctx context.Context) error {
	var resp *sheets.ValueRange
	err := common.WithRetry(ctx, func() error {
		var getErr error
		resp, getErr = s.service.Spreadsheets.Values.Get(s.config.SpreadsheetID, s.rangeFor("A1:E1")).Context(ctx).Do()
		return getErr
	}, s.retryOpts())
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}

	if headerMatches(resp.Values) {
		return nil
	}

	row := make([]any, len(Header))
	for i, h := range Header {
		row[i] = h
	}

	err = common.WithRetry(ctx, func() error {
		_, updateErr := s.service.Spreadsheets.Values.Update(s.config.SpreadsheetID, s.rangeFor("A1:E1"), &sheets.ValueRange{
			Values: [][]any{row},
		}).ValueInputOption("RAW").Context(ctx).Do()
		return updateErr
	}, s.retryOpts())
	if err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	s.logger.Info("repaired ledger header row", "spreadsheet_id", s.config.SpreadsheetID)
	return nil
}

func headerMatches(values [][]any) bool {
	if len(values) == 0 || len(values[0]) < len(Header) {
		return false
	}
	for i, h := range Header {
		cell, ok := values[0][i].(string)
		if !ok || cell != h {
			return false
		}
	}
	return true
}

// Append adds one transaction at the bottom of the sheet.
func (s *SheetsStore) Append(ctx context.Context, tx model.Transaction) error {
	err := common.WithRetry(ctx, func() error {
		_, appendErr := s.service.Spreadsheets.Values.Append(s.config.SpreadsheetID, s.rangeFor("A:E"), &sheets.ValueRange{
			Values: [][]any{ToRow(tx)},
		}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return appendErr
	}, s.retryOpts())
	if err != nil {
		return fmt.Errorf("%w: append failed: %v", common.ErrLedgerUnavailable, err)
	}

	s.logger.Info("appended transaction",
		"kind", tx.Kind,
		"category", tx.Category,
		"amount", tx.Amount.String())
	return nil
}

// List returns every data row in sheet order.
func (s *SheetsStore) List(ctx context.Context) ([]model.Transaction, error) {
	var resp *sheets.ValueRange
	err := common.WithRetry(ctx, func() error {
		var getErr error
		resp, getErr = s.service.Spreadsheets.Values.Get(s.config.SpreadsheetID, s.rangeFor("A2:E")).Context(ctx).Do()
		return getErr
	}, s.retryOpts())
	if err != nil {
		return nil, fmt.Errorf("%w: list failed: %v", common.ErrLedgerUnavailable, err)
	}

	rows := make([]model.Transaction, 0, len(resp.Values))
	for _, cells := range resp.Values {
		rows = append(rows, FromRow(cells))
	}
	return rows, nil
}

// Update overwrites the row at the given ordinal. The current row count is
// re-read first so an ordinal past the end fails before any write.
func (s *SheetsStore) Update(ctx context.Context, ordinal int, tx model.Transaction) error {
	rows, err := s.List(ctx)
	if err != nil {
		return err
	}
	if validateErr := ValidateOrdinal(ordinal, len(rows)); validateErr != nil {
		return fmt.Errorf("%w: %v", common.ErrNotFound, validateErr)
	}

	// Data row n lives at sheet row n+1; the header occupies row 1.
	a1 := fmt.Sprintf("A%d:E%d", ordinal+1, ordinal+1)
	err = common.WithRetry(ctx, func() error {
		_, updateErr := s.service.Spreadsheets.Values.Update(s.config.SpreadsheetID, s.rangeFor(a1), &sheets.ValueRange{
			Values: [][]any{ToRow(tx)},
		}).ValueInputOption("RAW").Context(ctx).Do()
		return updateErr
	}, s.retryOpts())
	if err != nil {
		return fmt.Errorf("%w: update failed: %v", common.ErrLedgerUnavailable, err)
	}

	s.logger.Info("updated transaction", "ordinal", ordinal)
	return nil
}

// Delete removes the row at the given ordinal.
func (s *SheetsStore) Delete(ctx context.Context, ordinal int) error {
	rows, err := s.List(ctx)
	if err != nil {
		return err
	}
	if validateErr := ValidateOrdinal(ordinal, len(rows)); validateErr != nil {
		return fmt.Errorf("%w: %v", common.ErrNotFound, validateErr)
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    s.sheetID,
						Dimension:  "ROWS",
						StartIndex: int64(ordinal), // 0-based, header is index 0
						EndIndex:   int64(ordinal + 1),
					},
				},
			},
		},
	}

	err = common.WithRetry(ctx, func() error {
		_, deleteErr := s.service.Spreadsheets.BatchUpdate(s.config.SpreadsheetID, req).Context(ctx).Do()
		return deleteErr
	}, s.retryOpts())
	if err != nil {
		return fmt.Errorf("%w: delete failed: %v", common.ErrLedgerUnavailable, err)
	}

	s.logger.Info("deleted transaction", "ordinal", ordinal)
	return nil
}
