package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/cache"
	"budgetcycle/internal/core"
	ports "budgetcycle/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const transactionsKey = "transactions"

// Config selects the spreadsheet and how to authenticate against it.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	BudgetSheet       string
	// Service account credentials, inline or as a file path. When both are
	// empty GOOGLE_APPLICATION_CREDENTIALS is used.
	CredentialsJSON string
	CredentialsFile string
	CacheTTL        time.Duration
}

// Client stores transactions as rows Date | Type | Category | Amount | ID
// and budget documents as rows ID | JSON, each sheet with a header row.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	budgetSheet       string
	rows              *cache.LRUCache[[]core.Transaction]
}

var (
	_ ports.TransactionLister  = (*Client)(nil)
	_ ports.TransactionWriter  = (*Client)(nil)
	_ ports.TransactionRenamer = (*Client)(nil)
	_ ports.DocumentStore      = (*Client)(nil)
)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if cfg.TransactionsSheet == "" {
		cfg.TransactionsSheet = "Transactions"
	}
	if cfg.BudgetSheet == "" {
		cfg.BudgetSheet = "Budget"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg), nil
}

func newClient(svc *gsheet.Service, cfg Config) *Client {
	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: cfg.TransactionsSheet,
		budgetSheet:       cfg.BudgetSheet,
		rows:              cache.NewLRUCache[[]core.Transaction](1, cfg.CacheTTL),
	}
}

// Cache exposes the row cache so it can be registered with a cache.Manager.
func (c *Client) Cache() cache.Cleaner {
	return c.rows
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	return service, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if txns, ok := c.rows.Get(transactionsKey); ok {
		return append([]core.Transaction(nil), txns...), nil
	}

	values, err := c.readRange(ctx, fmt.Sprintf("%s!A2:E", c.transactionsSheet))
	if err != nil {
		return nil, err
	}
	txns, skipped := parseTransactions(values)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped unreadable transaction rows", "sheet", c.transactionsSheet, "count", skipped)
	}
	c.rows.Set(transactionsKey, txns)
	return append([]core.Transaction(nil), txns...), nil
}

func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:E", c.transactionsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(t)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.transactionsSheet, err)
	}
	c.rows.Purge()

	slog.InfoContext(ctx, "Transaction appended to sheet", "sheet", c.transactionsSheet, "id", t.ID)
	return nil
}

func (c *Client) RenameCategory(ctx context.Context, txType core.TransactionType, oldName, newName, startISO, endISO string) (int64, error) {
	values, err := c.readRange(ctx, fmt.Sprintf("%s!A2:E", c.transactionsSheet))
	if err != nil {
		return 0, err
	}
	updates := renameUpdates(values, c.transactionsSheet, txType, oldName, newName, startISO, endISO)
	if len(updates) == 0 {
		return 0, nil
	}

	req := &gsheet.BatchUpdateValuesRequest{ValueInputOption: "RAW", Data: updates}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("rename category in %s: %w", c.transactionsSheet, err)
	}
	c.rows.Purge()

	slog.InfoContext(ctx, "Transactions renamed in sheet",
		"sheet", c.transactionsSheet, "old_name", oldName, "new_name", newName, "count", len(updates))
	return int64(len(updates)), nil
}

func (c *Client) LoadDocument(ctx context.Context, id string) (budget.Document, error) {
	values, err := c.readRange(ctx, fmt.Sprintf("%s!A2:B", c.budgetSheet))
	if err != nil {
		return budget.Document{}, err
	}
	_, body, ok := findDocumentRow(values, id)
	if !ok {
		return budget.Document{}, ports.ErrDocumentNotFound
	}
	doc, err := budget.DecodeDocument([]byte(body))
	if err != nil {
		return budget.Document{}, fmt.Errorf("decode budget document %s: %w", id, err)
	}
	return doc, nil
}

func (c *Client) SaveDocument(ctx context.Context, id string, doc budget.Document) error {
	body, err := budget.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode budget document %s: %w", id, err)
	}
	values, err := c.readRange(ctx, fmt.Sprintf("%s!A2:B", c.budgetSheet))
	if err != nil {
		return err
	}

	vr := &gsheet.ValueRange{Values: [][]any{{id, string(body)}}}
	if row, _, ok := findDocumentRow(values, id); ok {
		rng := fmt.Sprintf("%s!A%d:B%d", c.budgetSheet, row, row)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
	} else {
		rng := fmt.Sprintf("%s!A:B", c.budgetSheet)
		_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	}
	if err != nil {
		return fmt.Errorf("save budget document %s: %w", id, err)
	}
	return nil
}

func (c *Client) readRange(ctx context.Context, rng string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}
