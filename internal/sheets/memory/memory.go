package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/core"
	"budgetcycle/internal/sheets"
)

var (
	_ sheets.TransactionLister  = (*Store)(nil)
	_ sheets.TransactionWriter  = (*Store)(nil)
	_ sheets.TransactionRenamer = (*Store)(nil)
	_ sheets.DocumentStore      = (*Store)(nil)
)

// Store keeps transactions and budget documents in process memory.
type Store struct {
	mu   sync.Mutex
	txns []core.Transaction
	docs map[string]budget.Document
}

func New(txns []core.Transaction) *Store {
	return &Store{
		txns: append([]core.Transaction(nil), txns...),
		docs: make(map[string]budget.Document),
	}
}

// NewFromFiles seeds transactions from base/seed_transactions.txt, one
// "date;type;category;amount" per line. Blank lines, comments and invalid
// rows are skipped.
func NewFromFiles(base string) *Store {
	var txns []core.Transaction
	for _, line := range readLines(filepath.Join(base, "seed_transactions.txt")) {
		t, err := parseSeedLine(line)
		if err != nil {
			continue
		}
		txns = append(txns, t)
	}
	return New(txns)
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txns...), nil
}

func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, t)
	return nil
}

func (s *Store) RenameCategory(_ context.Context, txType core.TransactionType, oldName, newName, startISO, endISO string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := budget.NormalizeName(oldName)
	var n int64
	for i, t := range s.txns {
		if t.Type != txType || budget.NormalizeName(t.Category) != want {
			continue
		}
		if (startISO != "" || endISO != "") && t.Date == "" {
			continue
		}
		if startISO != "" && t.Date < startISO {
			continue
		}
		if endISO != "" && t.Date > endISO {
			continue
		}
		s.txns[i].Category = newName
		n++
	}
	return n, nil
}

func (s *Store) LoadDocument(_ context.Context, id string) (budget.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return budget.Document{}, sheets.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

func (s *Store) SaveDocument(_ context.Context, id string, doc budget.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = doc.Normalized()
	return nil
}

func parseSeedLine(line string) (core.Transaction, error) {
	parts := strings.Split(line, ";")
	if len(parts) != 4 {
		return core.Transaction{}, fmt.Errorf("expected 4 fields, got %d", len(parts))
	}
	amount, err := core.ParseMoney(parts[3])
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:       uuid.NewString(),
		Date:     strings.TrimSpace(parts[0]),
		Type:     core.TransactionType(strings.ToLower(strings.TrimSpace(parts[1]))),
		Category: strings.TrimSpace(parts[2]),
		Amount:   amount,
	}
	return t, t.Validate()
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
