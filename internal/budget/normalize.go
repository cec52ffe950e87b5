package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"budgetcycle/internal/core"
)

// DecodeDocument parses a persisted budget document of any vintage and
// returns it in canonical form. A bare JSON array is read as a legacy
// outflows-only document. Empty input yields an empty document.
func DecodeDocument(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Document{Inflows: []Node{}, Outflows: []Node{}}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("decode budget document: %w", err)
	}
	switch v := raw.(type) {
	case map[string]any:
		return Document{Inflows: Normalize(v["inflows"]), Outflows: Normalize(v["outflows"])}, nil
	case []any:
		return Document{Inflows: []Node{}, Outflows: Normalize(v)}, nil
	default:
		return Document{}, fmt.Errorf("decode budget document: unexpected %T at top level", raw)
	}
}

// EncodeDocument writes the canonical JSON form of doc.
func EncodeDocument(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc.Normalized(), "", "  ")
}

// Normalize turns decoded JSON (any mix of strings and objects) into a
// canonical section. An entry without a category is dropped together with
// everything nested under it, at any depth. Children nested deeper than one
// level are hoisted into the top-level node's children, depth first.
func Normalize(raw any) []Node {
	out := []Node{}
	list, ok := raw.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		n, kids, ok := rawNode(item)
		if !ok {
			continue
		}
		n.Children = []Node{}
		appendRawChildren(&n.Children, kids)
		out = append(out, n)
	}
	return out
}

func appendRawChildren(dst *[]Node, raw any) {
	list, ok := raw.([]any)
	if !ok {
		return
	}
	for _, item := range list {
		c, kids, ok := rawNode(item)
		if !ok {
			continue
		}
		*dst = append(*dst, Node{Category: c.Category, Auto: c.Auto, Children: []Node{}})
		appendRawChildren(dst, kids)
	}
}

func rawNode(item any) (Node, any, bool) {
	switch v := item.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return Node{}, nil, false
		}
		return Node{Category: v}, nil, true
	case map[string]any:
		cat := rawString(v["category"])
		if strings.TrimSpace(cat) == "" {
			cat = rawString(v["name"])
		}
		if strings.TrimSpace(cat) == "" {
			return Node{}, nil, false
		}
		return Node{
			Category: cat,
			Amount:   rawMoney(v["amount"]),
			Auto:     rawBool(v["auto"]),
		}, v["children"], true
	default:
		return Node{}, nil, false
	}
}

func rawString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

// rawMoney coerces anything amount-like to cents; junk and negative
// values become zero.
func rawMoney(v any) core.Money {
	var m core.Money
	var err error
	switch a := v.(type) {
	case json.Number:
		m, err = core.ParseMoney(a.String())
	case string:
		m, err = core.ParseMoney(a)
	case float64:
		m, err = core.MoneyFromFloat(a)
	case int:
		m = core.Money{Cents: int64(a) * 100}
	default:
		return core.Money{}
	}
	if err != nil || m.Cents < 0 {
		return core.Money{}
	}
	return m
}

func rawBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}

// NormalizeNodes applies the same canonical rules to typed nodes.
func NormalizeNodes(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if strings.TrimSpace(n.Category) == "" {
			continue
		}
		if n.Amount.Cents < 0 {
			n.Amount = core.Money{}
		}
		kids := []Node{}
		flattenChildren(&kids, n.Children)
		n.Children = kids
		out = append(out, n)
	}
	return out
}

func flattenChildren(dst *[]Node, nodes []Node) {
	for _, c := range nodes {
		if strings.TrimSpace(c.Category) == "" {
			continue
		}
		*dst = append(*dst, Node{Category: c.Category, Auto: c.Auto, Children: []Node{}})
		flattenChildren(dst, c.Children)
	}
}

// Normalized returns a canonical deep copy of d.
func (d Document) Normalized() Document {
	return Document{Inflows: NormalizeNodes(d.Inflows), Outflows: NormalizeNodes(d.Outflows)}
}
