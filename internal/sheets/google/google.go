package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finanzy/internal/cache"
	"finanzy/internal/core"
	"finanzy/internal/log"
	ports "finanzy/internal/sheets"
)

var _ ports.TransactionSheet = (*Client)(nil)

// lastColumn is the column of the rightmost value written by sheets.Row.
const lastColumn = "G"

// Row positions are remembered for a short while so that consecutive events
// for the same transaction do not re-read the id column. Edits made by hand
// in the sheet are picked up once the entry expires.
const (
	rowCacheSize = 4096
	rowCacheTTL  = 2 * time.Minute
)

// Options configures the Sheets client. CredentialsJSON is a service
// account key; when empty the client falls back to ClientOptions (or
// application default credentials).
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte
	ClientOptions   []goption.ClientOption
	Logger          *log.Logger
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
	rows          *cache.LRU[int]
}

// New creates a Sheets client for a single tab of a spreadsheet.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	clientOpts := append([]goption.ClientOption(nil), opts.ClientOptions...)
	if len(opts.CredentialsJSON) > 0 {
		clientOpts = append(clientOpts,
			goption.WithCredentialsJSON(opts.CredentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", opts.SheetName)

	return &Client{svc: svc, spreadsheetID: opts.SpreadsheetID, sheet: opts.SheetName, logger: logger,
		rows: cache.NewLRU[int](rowCacheSize, rowCacheTTL)}, nil
}

// Upsert writes tx over the row holding its id or appends a new row.
func (c *Client) Upsert(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row, err := c.findRow(ctx, tx.ID)
	if err != nil {
		return "", err
	}
	vr := &gsheet.ValueRange{Values: [][]any{ports.Row(tx)}}

	if row > 0 {
		rng := c.rowRange(row)
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("update %s: %w", rng, err)
		}
		c.logger.DebugContext(ctx, "Sheet row updated", log.FieldTransactionID, tx.ID, log.FieldSheetRow, row)
		return rng, nil
	}

	rng := c.a1("A:" + lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.sheet, err)
	}
	c.rows.Delete(tx.ID)
	ref := rng
	if resp != nil && resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Sheet row appended", log.FieldTransactionID, tx.ID, "range", ref)
	return ref, nil
}

// Remove clears the row holding id. The row itself stays so that row
// references handed out earlier keep pointing at the same place.
func (c *Client) Remove(ctx context.Context, id string) error {
	row, err := c.findRow(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		c.logger.DebugContext(ctx, "No sheet row to remove", log.FieldTransactionID, id)
		return nil
	}
	rng := c.rowRange(row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	c.rows.Delete(id)
	return nil
}

// ReplaceAll clears the tab and writes the header followed by txs.
func (c *Client) ReplaceAll(ctx context.Context, txs []core.Transaction) error {
	c.rows.Purge()
	all := c.a1("A:" + lastColumn)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", all, err)
	}

	values := make([][]any, 0, len(txs)+1)
	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	values = append(values, header)
	for _, tx := range txs {
		values = append(values, ports.Row(tx))
	}

	rng := c.a1(fmt.Sprintf("A1:%s%d", lastColumn, len(values)))
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	for i, tx := range txs {
		c.rows.Set(tx.ID, i+2)
	}
	c.logger.InfoContext(ctx, "Sheet rewritten", log.FieldCount, len(txs))
	return nil
}

// findRow returns the 1-based row whose first column equals id, or 0.
// A read of the id column refreshes the cached position of every id in it.
func (c *Client) findRow(ctx context.Context, id string) (int, error) {
	if row, ok := c.rows.Get(id); ok {
		return row, nil
	}
	rng := c.a1("A:A")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if key := strings.TrimSpace(fmt.Sprint(row[0])); key != "" {
			c.rows.Set(key, i+1)
		}
	}
	return rowOf(resp.Values, id), nil
}

func rowOf(values [][]any, id string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

func (c *Client) rowRange(row int) string {
	return c.a1(fmt.Sprintf("A%d:%s%d", row, lastColumn, row))
}

// a1 prefixes rng with the quoted sheet name.
func (c *Client) a1(rng string) string {
	return "'" + strings.ReplaceAll(c.sheet, "'", "''") + "'!" + rng
}
