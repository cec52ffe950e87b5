package budget

import (
	"reflect"
	"testing"

	"budgetcycle/internal/core"
)

func money(cents int64) core.Money {
	return core.Money{Cents: cents}
}

func sampleDoc() Document {
	return Document{
		Inflows: []Node{
			{Category: "Salary", Amount: money(300000), Children: []Node{}},
		},
		Outflows: []Node{
			{Category: "Housing", Amount: money(120000), Children: []Node{
				{Category: "Rent", Children: []Node{}},
				{Category: "Utilities", Children: []Node{}},
				{Category: "Internet", Children: []Node{}},
			}},
			{Category: "Groceries", Amount: money(40000), Children: []Node{}},
			{Category: "Transport", Amount: money(10000), Children: []Node{}},
		},
	}
}

func TestDecodeDocument(t *testing.T) {
	raw := `{
		"inflows": ["Salary", {"name": "Bonus", "amount": "250,50"}],
		"outflows": [
			{"category": "Housing", "amount": 1200, "children": [
				{"category": "Rent", "amount": 900, "children": [{"category": "Deposit"}]},
				{"category": "  "},
				"Utilities"
			]},
			{"category": "", "amount": 5},
			{"category": "Fun", "amount": -20, "auto": true},
			42,
			null
		]
	}`
	doc, err := DecodeDocument([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Document{
		Inflows: []Node{
			{Category: "Salary", Children: []Node{}},
			{Category: "Bonus", Amount: money(25050), Children: []Node{}},
		},
		Outflows: []Node{
			{Category: "Housing", Amount: money(120000), Children: []Node{
				{Category: "Rent", Children: []Node{}},
				{Category: "Deposit", Children: []Node{}},
				{Category: "Utilities", Children: []Node{}},
			}},
			{Category: "Fun", Auto: true, Children: []Node{}},
		},
	}
	if !reflect.DeepEqual(doc, want) {
		t.Fatalf("unexpected document:\n got %+v\nwant %+v", doc, want)
	}
}

func TestDecodeDocumentLegacyShapes(t *testing.T) {
	doc, err := DecodeDocument([]byte(`["Rent", {"category": "Food", "amount": 10}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Inflows) != 0 || len(doc.Outflows) != 2 || doc.Outflows[1].Amount.Cents != 1000 {
		t.Fatalf("unexpected legacy document: %+v", doc)
	}

	empty, err := DecodeDocument(nil)
	if err != nil || empty.Inflows == nil || empty.Outflows == nil {
		t.Fatalf("empty input: %+v err=%v", empty, err)
	}

	if _, err := DecodeDocument([]byte(`"nope"`)); err == nil {
		t.Fatal("expected error for scalar document")
	}
	if _, err := DecodeDocument([]byte(`{bad json`)); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestBlankEntriesDropTheirSubtree(t *testing.T) {
	raw := `{"outflows": [
		{"category": "", "children": ["Orphan", {"category": "Lost"}]},
		{"category": "Home", "children": [
			{"category": " ", "children": ["Hidden"]},
			{"category": "Rent", "children": ["Deposit"]}
		]}
	]}`
	want := []Node{
		{Category: "Home", Children: []Node{
			{Category: "Rent", Children: []Node{}},
			{Category: "Deposit", Children: []Node{}},
		}},
	}

	doc, err := DecodeDocument([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(doc.Outflows, want) {
		t.Errorf("decoded outflows = %+v, want %+v", doc.Outflows, want)
	}

	typed := []Node{
		{Category: "", Children: []Node{{Category: "Orphan"}}},
		{Category: "Home", Children: []Node{
			{Category: " ", Children: []Node{{Category: "Hidden"}}},
			{Category: "Rent", Children: []Node{{Category: "Deposit"}}},
		}},
	}
	if got := NormalizeNodes(typed); !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeNodes = %+v, want %+v", got, want)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := []byte(`{"outflows": [{"category": "A", "amount": "3.5", "children": [{"category": "B", "amount": 9, "children": ["C"]}]}, "D"]}`)
	once, err := DecodeDocument(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	encoded, err := EncodeDocument(once)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	twice, err := DecodeDocument(encoded)
	if err != nil {
		t.Fatalf("decode again: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("decode not idempotent:\n%+v\n%+v", once, twice)
	}
	if !reflect.DeepEqual(once.Normalized(), once) {
		t.Fatalf("Normalized changed a canonical document")
	}
	if !reflect.DeepEqual(once.Normalized().Normalized(), once.Normalized()) {
		t.Fatalf("Normalized not idempotent")
	}
}

func TestNormalizeNodesForcesChildShape(t *testing.T) {
	in := []Node{
		{Category: "Parent", Amount: money(-5), Children: []Node{
			{Category: "Kid", Amount: money(700), Children: []Node{{Category: "Grandkid", Amount: money(1)}}},
		}},
		{Category: " "},
	}
	out := NormalizeNodes(in)
	if len(out) != 1 {
		t.Fatalf("expected blank node dropped, got %+v", out)
	}
	p := out[0]
	if p.Amount.Cents != 0 || len(p.Children) != 2 {
		t.Fatalf("unexpected parent: %+v", p)
	}
	for _, c := range p.Children {
		if c.Amount.Cents != 0 || c.Children == nil || len(c.Children) != 0 {
			t.Fatalf("child not canonical: %+v", c)
		}
	}
	if in[0].Children[0].Amount.Cents != 700 {
		t.Fatal("NormalizeNodes mutated its input")
	}
}

func TestItemAt(t *testing.T) {
	nodes := sampleDoc().Outflows
	tests := []struct {
		path Path
		want string
		ok   bool
	}{
		{Path{0}, "Housing", true},
		{Path{0, 2}, "Internet", true},
		{Path{2}, "Transport", true},
		{Path{3}, "", false},
		{Path{0, 3}, "", false},
		{Path{1, 0}, "", false},
		{Path{-1}, "", false},
		{Path{}, "", false},
		{Path{0, 0, 0}, "", false},
	}
	for _, tt := range tests {
		got, ok := ItemAt(nodes, tt.path)
		if ok != tt.ok || got.Category != tt.want {
			t.Errorf("ItemAt(%v) = %q,%v want %q,%v", tt.path, got.Category, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want Path
		ok   bool
	}{
		{"2", Path{2}, true},
		{"0.1", Path{0, 1}, true},
		{"[3,4]", Path{3, 4}, true},
		{"1/0", Path{1, 0}, true},
		{"", nil, false},
		{"1.2.3", nil, false},
		{"-1", nil, false},
		{"a", nil, false},
	}
	for _, tt := range tests {
		got, err := ParsePath(tt.in)
		if tt.ok != (err == nil) || (tt.ok && !reflect.DeepEqual(got, tt.want)) {
			t.Errorf("ParsePath(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestRows(t *testing.T) {
	doc := sampleDoc()
	actuals := Actuals{"rent": money(90000), "internet": money(4000), "groceries": money(12345), "housing": money(999)}
	rows := Rows(doc.Outflows, actuals)
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if rows[0].Category != "Housing" || rows[0].Depth != 0 || rows[0].Actual.Cents != 94000 {
		t.Fatalf("unexpected parent row: %+v", rows[0])
	}
	if rows[1].Category != "Rent" || rows[1].Depth != 1 || !reflect.DeepEqual(rows[1].Path, Path{0, 0}) {
		t.Fatalf("unexpected child row: %+v", rows[1])
	}
	if rows[4].Category != "Groceries" || rows[4].Actual.Cents != 12345 || rows[4].Amount.Cents != 40000 {
		t.Fatalf("unexpected leaf row: %+v", rows[4])
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  Eating   Out ": "eating out",
		"FOOD":            "food",
		"\tgas\n station": "gas station",
		"   ":             "",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSection(t *testing.T) {
	for in, want := range map[string]Section{"inflows": Inflows, "Income": Inflows, "expense": Outflows, "OUTFLOWS": Outflows} {
		got, err := ParseSection(in)
		if err != nil || got != want {
			t.Errorf("ParseSection(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSection("transfers"); err == nil {
		t.Error("expected error for unknown section")
	}
}
