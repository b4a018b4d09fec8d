package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"invoiceqc/internal/logger"
	"invoiceqc/internal/report"
	"invoiceqc/pkg/models"
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// Service handles Google Sheets operations
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewSheetsService creates a Sheets client for the spreadsheet at sheetURL
// using service account credentials from the environment.
func NewSheetsService(ctx context.Context, sheetURL string) (*Service, error) {
	const op = "NewSheetsService"

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	creds, err := credentialsJSON()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwt, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	log := logger.WithComponent("sheets")
	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Sheets client ready")

	return &Service{
		sheetsService: svc,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

// credentialsJSON returns the service account key, preferring the file in
// GOOGLE_APPLICATION_CREDENTIALS over inline GOOGLE_CREDENTIALS.
func credentialsJSON() ([]byte, error) {
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return data, nil
	}
	if inline := os.Getenv("GOOGLE_CREDENTIALS"); inline != "" {
		return []byte(inline), nil
	}
	return nil, fmt.Errorf("neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set")
}

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}
	return matches[1], nil
}

// metaColumns precede the report columns in every row.
var metaColumns = []string{"Run ID", "Processed At"}

// header is the first row of the worksheet.
func header() []interface{} {
	return lo.ToAnySlice(lo.Flatten([][]string{metaColumns, report.Header}))
}

// columnLetter converts a zero-based column index below 26 to its letter.
func columnLetter(index int) string {
	return string(rune('A' + index))
}

// lastColumn returns the column letter of the last header cell.
func lastColumn() string {
	return columnLetter(len(header()) - 1)
}

// reportValues converts a report into sheet rows.
func reportValues(rep models.Report, runID string, processedAt time.Time) [][]interface{} {
	stamp := processedAt.Format("2006-01-02 15:04:05")
	values := make([][]interface{}, 0, len(rep.Invoices))
	for _, r := range rep.Invoices {
		row := []interface{}{runID, stamp}
		row = append(row, report.Row(r)...)
		values = append(values, row)
	}
	return values
}

// WriteReport appends one row per validation result to the specified sheet.
func (s *Service) WriteReport(ctx context.Context, rep models.Report, sheetName, runID string) error {
	const op = "WriteReport"

	s.log.Info().
		Str("sheet", sheetName).
		Int("rows", len(rep.Invoices)).
		Msg("Writing validation report to Google Sheet")

	if err := s.ensureSheetWithHeaders(ctx, sheetName); err != nil {
		return fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}

	values := reportValues(rep, runID, time.Now())
	if len(values) == 0 {
		return nil
	}

	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := s.sheetsService.Spreadsheets.Values.Append(
		s.spreadsheetID,
		fmt.Sprintf("%s!A:%s", sheetName, lastColumn()),
		valueRange,
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	s.log.Info().
		Int("rows_written", len(values)).
		Msg("Successfully wrote validation report to Google Sheet")

	return nil
}

// ensureSheetWithHeaders creates the worksheet if needed and writes the
// header row when the first row is empty.
func (s *Service) ensureSheetWithHeaders(ctx context.Context, sheetName string) error {
	const op = "ensureSheetWithHeaders"

	sheetID, err := s.worksheetID(ctx, sheetName)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	headerRange := fmt.Sprintf("%s!A1:%s1", sheetName, lastColumn())
	existing, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to read header row: %w", op, err)
	}
	if len(existing.Values) > 0 && len(existing.Values[0]) > 0 {
		return nil
	}

	s.log.Info().Str("sheet", sheetName).Msg("Writing header row")

	_, err = s.sheetsService.Spreadsheets.Values.Update(
		s.spreadsheetID,
		headerRange,
		&sheets.ValueRange{Values: [][]interface{}{header()}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to write header row: %w", op, err)
	}

	update := &sheets.BatchUpdateSpreadsheetRequest{Requests: layoutRequests(sheetID)}
	if _, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, update).Context(ctx).Do(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to format worksheet, continuing anyway")
	}
	return nil
}

// worksheetID returns the ID of the worksheet titled name, adding it when missing.
func (s *Service) worksheetID(ctx context.Context, name string) (int64, error) {
	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == name {
			return sheet.Properties.SheetId, nil
		}
	}

	s.log.Info().Str("sheet", name).Msg("Creating worksheet")

	add := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: name}}},
		},
	}
	resp, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, add).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to create worksheet %q: %w", name, err)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// layoutRequests formats a fresh worksheet: bold frozen header, invalid rows
// tinted red, columns sized to content.
func layoutRequests(sheetID int64) []*sheets.Request {
	columns := int64(len(header()))
	statusColumn := len(metaColumns) + lo.IndexOf(report.Header, "Status")

	return []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1, EndColumnIndex: columns},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat:      &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
		{
			AddConditionalFormatRule: &sheets.AddConditionalFormatRuleRequest{
				Rule: &sheets.ConditionalFormatRule{
					Ranges: []*sheets.GridRange{{SheetId: sheetID, StartRowIndex: 1, EndColumnIndex: columns}},
					BooleanRule: &sheets.BooleanRule{
						Condition: &sheets.BooleanCondition{
							Type: "CUSTOM_FORMULA",
							Values: []*sheets.ConditionValue{
								{UserEnteredValue: fmt.Sprintf(`=$%s2="%s"`, columnLetter(statusColumn), report.StatusInvalid)},
							},
						},
						Format: &sheets.CellFormat{BackgroundColor: &sheets.Color{Red: 0.99, Green: 0.87, Blue: 0.87}},
					},
				},
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", EndIndex: columns},
			},
		},
	}
}
