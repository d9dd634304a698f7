package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"hastnet-scraper/models"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleWriter mirrors an export into a new sheet of a Google spreadsheet
type GoogleWriter struct {
	service       *sheets.Service
	spreadsheetID string
	sheetPrefix   string
	delimiter     string
	logger        *zap.Logger
	now           func() time.Time
}

// LoadCredentials reads service account credentials from credentialsPath,
// or from the GOOGLE_SHEETS_CREDENTIALS environment variable when the path is empty
func LoadCredentials(credentialsPath string) ([]byte, error) {
	var credsJSON []byte
	var err error

	if credentialsPath != "" {
		credsJSON, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON (check if JSON is properly formatted): %w", err)
	}

	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	return credsJSON, nil
}

// NewGoogleWriter creates a Google Sheets writer. Pass option.WithCredentialsJSON
// with the output of LoadCredentials, or any other client option.
func NewGoogleWriter(ctx context.Context, spreadsheetID, sheetPrefix, delimiter string, logger *zap.Logger, opts ...option.ClientOption) (*GoogleWriter, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if delimiter == "" {
		delimiter = DefaultImageDelimiter
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleWriter{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetPrefix:   sheetPrefix,
		delimiter:     delimiter,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Export implements the Exporter interface by creating a timestamped sheet
func (w *GoogleWriter) Export(ctx context.Context, result *models.RunResult) error {
	var ads []models.Ad
	if result != nil {
		ads = result.Ads
	}

	sheetName := fmt.Sprintf("%s_%s", w.sheetPrefix, w.now().Format("20060102_150405"))
	_, _, err := w.CreateSheetAndWriteAds(ctx, sheetName, ads)
	return err
}

// CreateSheetAndWriteAds creates a new sheet and writes the header and ads to it.
// The sheet is inserted at the beginning (index 0) of the spreadsheet.
// Returns the sheet name and sheet ID (gid) that was created.
func (w *GoogleWriter) CreateSheetAndWriteAds(ctx context.Context, sheetName string, ads []models.Ad) (string, int64, error) {
	sheetName = SanitizeSheetName(sheetName)
	if len(sheetName) > 100 {
		sheetName = sheetName[:100]
	}

	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: sheetName,
						Index: 0,
					},
				},
			},
		},
	}

	batchUpdateResp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(batchUpdateResp.Replies) > 0 && batchUpdateResp.Replies[0].AddSheet != nil {
		sheetID = batchUpdateResp.Replies[0].AddSheet.Properties.SheetId
	}

	w.logger.Debug("Created sheet",
		zap.String("sheet", sheetName),
		zap.Int64("sheet_id", sheetID),
	)

	valueRange := &sheets.ValueRange{
		Values: Rows(ads, w.delimiter),
	}

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, a1Range(sheetName, "A1"), valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to write to sheet: %w", err)
	}

	w.logger.Info("Wrote ads to Google Sheets",
		zap.String("sheet", sheetName),
		zap.String("url", SheetURL(w.spreadsheetID, sheetID)),
		zap.Int("ads", len(ads)),
	)
	return sheetName, sheetID, nil
}

// SanitizeSheetName removes characters Google Sheets does not allow in sheet names
func SanitizeSheetName(name string) string {
	invalidChars := []string{"/", "\\", "?", "*", "[", "]"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func ExtractSpreadsheetID(url string) string {
	// https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}

// a1Range quotes sheet for A1 notation, doubling any embedded single quotes
func a1Range(sheet, cell string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cell
}

// SheetURL returns a link that opens the given sheet of the spreadsheet
func SheetURL(spreadsheetID string, sheetID int64) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", spreadsheetID, sheetID)
}
