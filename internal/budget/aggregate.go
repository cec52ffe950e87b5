package budget

import (
	"strings"

	"budgetcycle/internal/core"
)

// Actuals maps a normalized category name to the summed amount of the
// matching transactions in one window.
type Actuals map[string]core.Money

// CollectActuals sums transactions of the section's type whose category
// is not blank and whose date lies in [startISO, endISO]. Dates are
// compared as strings, which is exact for zero-padded ISO days. An empty
// bound leaves that side open.
func CollectActuals(txns []core.Transaction, s Section, startISO, endISO string) Actuals {
	want := s.TransactionType()
	out := make(Actuals)
	for _, t := range txns {
		if t.Type != want || !inWindow(t.Date, startISO, endISO) {
			continue
		}
		key := NormalizeName(t.Category)
		if key == "" || t.Amount.Cents < 0 {
			continue
		}
		out[key] = out[key].Add(t.Amount)
	}
	return out
}

func inWindow(date, startISO, endISO string) bool {
	date = strings.TrimSpace(date)
	if date == "" {
		return false
	}
	if startISO != "" && date < startISO {
		return false
	}
	if endISO != "" && date > endISO {
		return false
	}
	return true
}

// ForItem is the direct lookup of n's own category.
func (a Actuals) ForItem(n Node) core.Money {
	return a[NormalizeName(n.Category)]
}

// ForNode is the actual shown for a row. A node with children reports
// the sum of its children and ignores matches on its own name.
func (a Actuals) ForNode(n Node) core.Money {
	if len(n.Children) == 0 {
		return a.ForItem(n)
	}
	var sum core.Money
	for _, c := range n.Children {
		sum = sum.Add(a.ForItem(c))
	}
	return sum
}

// SectionTotals sums budgeted amounts and actuals over top-level nodes.
func SectionTotals(nodes []Node, a Actuals) core.Totals {
	var t core.Totals
	for _, n := range nodes {
		t.Budgeted = t.Budgeted.Add(n.Amount)
		t.Actual = t.Actual.Add(a.ForNode(n))
	}
	return t
}

// Summarize computes both section totals and the net for one window.
func Summarize(doc Document, txns []core.Transaction, startISO, endISO string) core.Summary {
	in := SectionTotals(doc.Inflows, CollectActuals(txns, Inflows, startISO, endISO))
	out := SectionTotals(doc.Outflows, CollectActuals(txns, Outflows, startISO, endISO))
	return core.Summary{
		Inflows:     in,
		Outflows:    out,
		NetBudgeted: in.Budgeted.Sub(out.Budgeted),
		NetActual:   in.Actual.Sub(out.Actual),
	}
}
