package budget

import (
	"strings"

	"budgetcycle/internal/core"
)

// AutoPopulate appends an auto row to each section for every category
// seen in the window that the section does not budget yet. Rows are
// added once per distinct name in first-seen order; existing rows are
// never touched. It returns the updated document and how many rows were
// added.
func AutoPopulate(doc Document, txns []core.Transaction, startISO, endISO string) (Document, int) {
	out := doc.Clone()
	added := 0
	for _, s := range Sections() {
		nodes := out.Nodes(s)
		known := names(nodes, nil)
		want := s.TransactionType()
		for _, t := range txns {
			if t.Type != want || !inWindow(t.Date, startISO, endISO) {
				continue
			}
			key := NormalizeName(t.Category)
			if key == "" {
				continue
			}
			if _, ok := known[key]; ok {
				continue
			}
			known[key] = struct{}{}
			nodes = append(nodes, Node{
				Category: strings.TrimSpace(t.Category),
				Auto:     true,
				Children: []Node{},
			})
			added++
		}
		out.setNodes(s, nodes)
	}
	return out, added
}
