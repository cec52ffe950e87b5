package google

import (
	"fmt"
	"strconv"
	"strings"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/core"

	gsheet "google.golang.org/api/sheets/v4"
)

// Data rows start below the header.
const firstDataRow = 2

// parseTransactions converts rows read from A2:E. Empty rows are ignored;
// rows with a bad date, type, category or amount are counted as skipped.
// A row without an ID gets a stable one from its position.
func parseTransactions(values [][]any) ([]core.Transaction, int) {
	var (
		out     []core.Transaction
		skipped int
	)
	for i, row := range values {
		cols := toStrings(row)
		if isBlank(cols) {
			continue
		}
		t, ok := parseTransactionRow(cols, i+firstDataRow)
		if !ok {
			skipped++
			continue
		}
		out = append(out, t)
	}
	return out, skipped
}

func parseTransactionRow(cols []string, rowNum int) (core.Transaction, bool) {
	if len(cols) < 4 {
		return core.Transaction{}, false
	}
	date := cols[0]
	if date != "" {
		d, err := core.ParseDate(date)
		if err != nil {
			return core.Transaction{}, false
		}
		date = d.ISO()
	}
	typ := core.TransactionType(strings.ToLower(cols[1]))
	if !typ.IsValid() || cols[2] == "" {
		return core.Transaction{}, false
	}
	amount, err := core.ParseMoney(cols[3])
	if err != nil {
		return core.Transaction{}, false
	}
	id := safeGet(cols, 4)
	if id == "" {
		id = fmt.Sprintf("row-%d", rowNum)
	}
	return core.Transaction{ID: id, Date: date, Type: typ, Category: cols[2], Amount: amount}, true
}

func transactionRow(t core.Transaction) []any {
	return []any{t.Date, string(t.Type), t.Category, t.Amount.String(), t.ID}
}

// renameUpdates returns one category cell update per matching row.
func renameUpdates(values [][]any, sheet string, txType core.TransactionType, oldName, newName, startISO, endISO string) []*gsheet.ValueRange {
	want := budget.NormalizeName(oldName)
	bounded := startISO != "" || endISO != ""

	var out []*gsheet.ValueRange
	for i, row := range values {
		cols := toStrings(row)
		if len(cols) < 3 {
			continue
		}
		if core.TransactionType(strings.ToLower(cols[1])) != txType || budget.NormalizeName(cols[2]) != want {
			continue
		}
		date := cols[0]
		if bounded {
			d, err := core.ParseDate(date)
			if err != nil {
				continue
			}
			date = d.ISO()
			if (startISO != "" && date < startISO) || (endISO != "" && date > endISO) {
				continue
			}
		}
		out = append(out, &gsheet.ValueRange{
			Range:  fmt.Sprintf("%s!C%d", sheet, i+firstDataRow),
			Values: [][]any{{newName}},
		})
	}
	return out
}

// findDocumentRow locates id in rows read from A2:B and returns its sheet
// row number.
func findDocumentRow(values [][]any, id string) (int, string, bool) {
	for i, row := range values {
		cols := toStrings(row)
		if safeGet(cols, 0) == id {
			return i + firstDataRow, safeGet(cols, 1), true
		}
	}
	return 0, "", false
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if f, ok := v.(float64); ok {
			out[i] = strconv.FormatFloat(f, 'f', -1, 64)
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
