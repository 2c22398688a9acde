package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"acorn/internal/core"
	ports "acorn/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the target spreadsheet and the service account used to
// reach it. The first non-empty credential source wins, in field order.
type Config struct {
	SpreadsheetID          string
	SheetName              string
	ServiceAccountJSON     string
	ServiceAccountFile     string
	ApplicationCredentials string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ExpenseExporter = (*Client)(nil)

// NewClient creates a Sheets client authenticated with a service account.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Expenses"
	}

	credentialsJSON, err := loadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", spreadsheetID,
		"sheet", sheetName)

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	path := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && path == "" {
		path = strings.TrimSpace(cfg.ApplicationCredentials)
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials", "json_length", len(inline))
		return []byte(inline), nil
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials", "path", path, "size", len(b))
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ExportExpenses clears the sheet and writes the header followed by one row
// per record.
func (c *Client) ExportExpenses(ctx context.Context, records []core.ExpenseRecord, custom []core.CustomCategory) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:%s", c.sheetName, lastColumn())
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := toValues(append([][]string{ports.Header}, ports.Rows(records, custom)...))
	writeRange := exportRange(c.sheetName, len(values))
	vr := &gsheet.ValueRange{Values: values}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", writeRange, err)
	}
	if resp != nil && resp.UpdatedRange != "" {
		return resp.UpdatedRange, nil
	}
	return writeRange, nil
}

func lastColumn() string {
	return string(rune('A' + len(ports.Header) - 1))
}

func exportRange(sheet string, rows int) string {
	return fmt.Sprintf("%s!A1:%s%d", sheet, lastColumn(), rows)
}

// valueInputRaw stores cells as given, so merchant or notes text starting
// with "=" never becomes a formula.
const valueInputRaw = "RAW"

// amountColumn is the index of "Amount" in ports.Header.
const amountColumn = 3

// toValues converts rows for the Sheets API. Data row amounts are sent as
// numbers so the column stays summable under RAW input.
func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
			if i > 0 && j == amountColumn {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					cells[j] = f
				}
			}
		}
		out[i] = cells
	}
	return out
}
