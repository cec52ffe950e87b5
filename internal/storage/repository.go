package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/core"
	"budgetcycle/internal/sheets"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadDocument returns the stored budget document. Stored bodies go through
// the same normalization as any other input, so legacy shapes load fine.
func (r *SQLiteRepository) LoadDocument(ctx context.Context, id string) (budget.Document, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM budget_documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return budget.Document{}, sheets.ErrDocumentNotFound
	}
	if err != nil {
		return budget.Document{}, fmt.Errorf("load budget document %s: %w", id, err)
	}

	doc, err := budget.DecodeDocument([]byte(body))
	if err != nil {
		return budget.Document{}, fmt.Errorf("decode budget document %s: %w", id, err)
	}
	return doc, nil
}

func (r *SQLiteRepository) SaveDocument(ctx context.Context, id string, doc budget.Document) error {
	body, err := budget.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode budget document %s: %w", id, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO budget_documents (id, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
		id, string(body))
	if err != nil {
		return fmt.Errorf("save budget document %s: %w", id, err)
	}

	slog.DebugContext(ctx, "Budget document saved", "id", id, "bytes", len(body))
	return nil
}

// ListTransactions returns every stored transaction ordered by date.
// Window filtering happens in the aggregation layer.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, type, category, amount_cents
		FROM transactions
		ORDER BY date, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var (
			t     core.Transaction
			typ   string
			cents int64
		)
		if err := rows.Scan(&t.ID, &t.Date, &typ, &t.Category, &cents); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(typ)
		t.Amount = core.Money{Cents: cents}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, type, category, amount_cents)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Date, string(t.Type), t.Category, t.Amount.Cents)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"amount_cents", t.Amount.Cents,
		"date", t.Date)
	return nil
}

// RenameCategory moves every transaction of txType whose category matches
// oldName (compared in normalized form) to newName. Non-empty bounds
// restrict the rename to dated transactions inside [startISO, endISO].
func (r *SQLiteRepository) RenameCategory(ctx context.Context, txType core.TransactionType, oldName, newName, startISO, endISO string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin rename: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT id, category FROM transactions WHERE type = ?`
	args := []any{string(txType)}
	if startISO != "" {
		query += ` AND date != '' AND date >= ?`
		args = append(args, startISO)
	}
	if endISO != "" {
		query += ` AND date != '' AND date <= ?`
		args = append(args, endISO)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("select rename candidates: %w", err)
	}
	want := budget.NormalizeName(oldName)
	var ids []string
	for rows.Next() {
		var id, category string
		if err := rows.Scan(&id, &category); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan rename candidate: %w", err)
		}
		if budget.NormalizeName(category) == want {
			ids = append(ids, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate rename candidates: %w", err)
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE id = ?`, newName, id); err != nil {
			return 0, fmt.Errorf("rename transaction %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rename: %w", err)
	}

	slog.InfoContext(ctx, "Transactions renamed",
		"type", txType, "old_name", oldName, "new_name", newName,
		"start", startISO, "end", endISO, "count", len(ids))
	return int64(len(ids)), nil
}
