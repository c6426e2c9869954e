package export

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"price-scout/internal/pricing"
)

// SheetsUploader pushes recommendation runs to a Google Sheets worksheet,
// clearing and rewriting it each time.
type SheetsUploader struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsUploader builds an uploader from service-account credentials.
// credentialsJSON takes priority; otherwise credentialsFile is read.
func NewSheetsUploader(ctx context.Context, credentialsJSON, credentialsFile, spreadsheetID string) (*SheetsUploader, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id not configured")
	}

	creds := []byte(credentialsJSON)
	if len(creds) == 0 {
		if credentialsFile == "" {
			return nil, fmt.Errorf("sheets credentials not configured")
		}
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		creds = data
	}

	jwt, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	service, err := sheets.NewService(ctx, option.WithTokenSource(jwt.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsUploader{service: service, spreadsheetID: spreadsheetID}, nil
}

// Upload replaces the named worksheet's contents with the recommendation
// table, creating the worksheet when missing. Returns the row count written.
func (u *SheetsUploader) Upload(ctx context.Context, sheetName string, recs []pricing.Recommendation) (int, error) {
	if err := u.ensureSheet(ctx, sheetName); err != nil {
		return 0, err
	}

	if _, err := u.service.Spreadsheets.Values.Clear(u.spreadsheetID, sheetName, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("clear sheet %s: %w", sheetName, err)
	}

	values := make([][]interface{}, 0, len(recs)+1)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	values = append(values, headerRow)
	for _, r := range recs {
		cells := row(r)
		line := make([]interface{}, len(cells))
		for i, c := range cells {
			line[i] = c
		}
		values = append(values, line)
	}

	_, err := u.service.Spreadsheets.Values.Update(u.spreadsheetID, sheetName+"!A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("update sheet %s: %w", sheetName, err)
	}
	return len(recs), nil
}

// ensureSheet creates the worksheet when it does not exist yet.
func (u *SheetsUploader) ensureSheet(ctx context.Context, sheetName string) error {
	spreadsheet, err := u.service.Spreadsheets.Get(u.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == sheetName {
			return nil
		}
	}

	_, err = u.service.Spreadsheets.BatchUpdate(u.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet %s: %w", sheetName, err)
	}
	return nil
}
