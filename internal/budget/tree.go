// Package budget holds the two-level category tree of a budget document
// together with the operations that read, aggregate and mutate it.
//
// A document has two sections, inflows and outflows. Each section is an
// ordered list of top-level nodes; a top-level node may hold one level of
// subcategory children. Nodes are addressed by positional paths that are
// only valid until the next structural change.
package budget

import (
	"fmt"
	"strconv"
	"strings"

	"budgetcycle/internal/core"
)

const (
	Inflows  Section = "inflows"
	Outflows Section = "outflows"
)

type (
	// Section names one of the two ordered node collections.
	Section string

	// Node is a budget line. Children never carry an amount or children
	// of their own.
	Node struct {
		Category string     `json:"category"`
		Amount   core.Money `json:"amount"`
		Auto     bool       `json:"auto"`
		Children []Node     `json:"children"`
	}

	// Document is the persisted budget.
	Document struct {
		Inflows  []Node `json:"inflows"`
		Outflows []Node `json:"outflows"`
	}

	// Path addresses a node: [i] is a top-level node, [i, j] its j-th child.
	Path []int

	// Row is one display line of a section.
	Row struct {
		Path     Path       `json:"path"`
		Category string     `json:"category"`
		Amount   core.Money `json:"amount"`
		Actual   core.Money `json:"actual"`
		Auto     bool       `json:"auto"`
		Depth    int        `json:"depth"`
	}
)

// Sections lists both sections in display order.
func Sections() []Section {
	return []Section{Inflows, Outflows}
}

func ParseSection(s string) (Section, error) {
	switch Section(strings.ToLower(strings.TrimSpace(s))) {
	case Inflows, "inflow", "income":
		return Inflows, nil
	case Outflows, "outflow", "expense", "expenses":
		return Outflows, nil
	default:
		return "", fmt.Errorf("unknown section %q", s)
	}
}

func (s Section) IsValid() bool {
	return s == Inflows || s == Outflows
}

// TransactionType maps the section to the transactions it aggregates.
func (s Section) TransactionType() core.TransactionType {
	if s == Inflows {
		return core.Inflow
	}
	return core.Expense
}

func (p Path) Depth() int {
	return len(p) - 1
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ParsePath reads "2" or "2.1" (also "2,1" and "[2,1]").
func ParsePath(s string) (Path, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == ',' || r == '/' })
	if len(fields) < 1 || len(fields) > 2 {
		return nil, fmt.Errorf("invalid path %q", s)
	}
	p := make(Path, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid path %q", s)
		}
		p[i] = v
	}
	return p, nil
}

// Nodes returns the nodes of section s.
func (d *Document) Nodes(s Section) []Node {
	if s == Inflows {
		return d.Inflows
	}
	return d.Outflows
}

func (d *Document) setNodes(s Section, nodes []Node) {
	if s == Inflows {
		d.Inflows = nodes
		return
	}
	d.Outflows = nodes
}

// Clone returns a deep copy that shares no slices with d.
func (d Document) Clone() Document {
	return Document{Inflows: cloneNodes(d.Inflows), Outflows: cloneNodes(d.Outflows)}
}

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Children = cloneNodes(n.Children)
	}
	return out
}

// ItemAt resolves p against nodes. ok is false for any out of range index
// or malformed path.
func ItemAt(nodes []Node, p Path) (Node, bool) {
	n := nodeAt(nodes, p)
	if n == nil {
		return Node{}, false
	}
	return *n, true
}

func nodeAt(nodes []Node, p Path) *Node {
	if len(p) < 1 || len(p) > 2 {
		return nil
	}
	i := p[0]
	if i < 0 || i >= len(nodes) {
		return nil
	}
	if len(p) == 1 {
		return &nodes[i]
	}
	j := p[1]
	if j < 0 || j >= len(nodes[i].Children) {
		return nil
	}
	return &nodes[i].Children[j]
}

// Rows flattens a section for display, parents before their children.
// Actuals come from a; pass nil to leave them at zero.
func Rows(nodes []Node, a Actuals) []Row {
	rows := make([]Row, 0, len(nodes))
	for i, n := range nodes {
		rows = append(rows, Row{
			Path:     Path{i},
			Category: n.Category,
			Amount:   n.Amount,
			Actual:   a.ForNode(n),
			Auto:     n.Auto,
			Depth:    0,
		})
		for j, c := range n.Children {
			rows = append(rows, Row{
				Path:     Path{i, j},
				Category: c.Category,
				Actual:   a.ForItem(c),
				Auto:     c.Auto,
				Depth:    1,
			})
		}
	}
	return rows
}

// names returns every normalized category of the section, children
// included, optionally skipping the node at skip.
func names(nodes []Node, skip Path) map[string]struct{} {
	out := make(map[string]struct{})
	for i, n := range nodes {
		if !(len(skip) == 1 && skip[0] == i) {
			out[NormalizeName(n.Category)] = struct{}{}
		}
		for j, c := range n.Children {
			if len(skip) == 2 && skip[0] == i && skip[1] == j {
				continue
			}
			out[NormalizeName(c.Category)] = struct{}{}
		}
	}
	return out
}

// NormalizeName is the comparison form of a category: trimmed, inner
// whitespace collapsed to one space, lower case.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
