package period

import (
	"testing"

	"budgetcycle/internal/core"
)

func d(s string) core.Date {
	v, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestEnd(t *testing.T) {
	tests := []struct {
		name  string
		typ   core.PeriodType
		start string
		want  string
	}{
		{"weekly", core.Weekly, "2025-01-01", "2025-01-07"},
		{"biweekly", core.Biweekly, "2025-01-01", "2025-01-14"},
		{"custom thirty days", core.Custom, "2025-02-10", "2025-03-11"},
		{"semimonthly first half", core.SemiMonthly, "2025-02-01", "2025-02-15"},
		{"semimonthly second half leap", core.SemiMonthly, "2024-02-16", "2024-02-29"},
		{"semimonthly second half common", core.SemiMonthly, "2025-02-16", "2025-02-28"},
		{"monthly mid month", core.Monthly, "2025-01-15", "2025-02-14"},
		{"monthly first of month", core.Monthly, "2025-02-01", "2025-02-28"},
		{"monthly year wrap", core.Monthly, "2025-12-10", "2026-01-09"},
		{"annually", core.Annually, "2025-03-05", "2026-03-04"},
		{"annually from first", core.Annually, "2025-01-01", "2025-12-31"},
		{"unknown behaves monthly", core.PeriodType("daily"), "2025-01-15", "2025-02-14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := End(tt.typ, d(tt.start)).ISO(); got != tt.want {
				t.Errorf("End(%s, %s) = %s, want %s", tt.typ, tt.start, got, tt.want)
			}
		})
	}
}

func TestForwardBackward(t *testing.T) {
	tests := []struct {
		typ      core.PeriodType
		start    string
		forward  string
		backward string
	}{
		{core.Weekly, "2025-01-01", "2025-01-08", "2024-12-25"},
		{core.Biweekly, "2025-01-01", "2025-01-15", "2024-12-18"},
		{core.Custom, "2025-01-01", "2025-01-31", "2024-12-02"},
		{core.SemiMonthly, "2025-01-01", "2025-01-16", "2024-12-16"},
		{core.SemiMonthly, "2025-01-16", "2025-02-01", "2025-01-01"},
		{core.Monthly, "2025-01-15", "2025-02-15", "2024-12-15"},
		{core.Monthly, "2025-01-31", "2025-02-28", "2024-12-31"},
		{core.Annually, "2024-02-29", "2025-02-28", "2023-02-28"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+"_"+tt.start, func(t *testing.T) {
			if got := Forward(tt.typ, d(tt.start)).ISO(); got != tt.forward {
				t.Errorf("Forward = %s, want %s", got, tt.forward)
			}
			if got := Backward(tt.typ, d(tt.start)).ISO(); got != tt.backward {
				t.Errorf("Backward = %s, want %s", got, tt.backward)
			}
		})
	}
}

func TestEndNeverPrecedesStartAndForwardAdvances(t *testing.T) {
	start := d("2023-12-20")
	for _, typ := range core.PeriodTypes() {
		for i := 0; i < 800; i += 3 {
			s := start.AddDays(i)
			if typ == core.SemiMonthly {
				s = semiMonthlyCycle{}.Containing(s, s)
			}
			end := End(typ, s)
			if end.Before(s.Time) {
				t.Fatalf("%s: end %s precedes start %s", typ, end, s)
			}
			next := Forward(typ, s)
			if !next.After(end.Time) {
				t.Fatalf("%s: forward %s does not pass end %s", typ, next, end)
			}
			if next.AddDays(-1) != end {
				t.Fatalf("%s: end %s is not the day before next start %s", typ, end, next)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	types := []core.PeriodType{core.Weekly, core.Biweekly, core.Custom, core.Monthly, core.Annually}
	start := d("2023-01-01")
	for _, typ := range types {
		for i := 0; i < 900; i += 7 {
			s := start.AddDays(i)
			if s.Day() > 28 {
				// month based round trips only hold for days every month has
				continue
			}
			if got := Backward(typ, Forward(typ, s)); got != s {
				t.Fatalf("%s: Backward(Forward(%s)) = %s", typ, s, got)
			}
		}
	}
	for _, s := range []string{"2025-01-01", "2025-01-16", "2024-12-16"} {
		if got := Backward(core.SemiMonthly, Forward(core.SemiMonthly, d(s))).ISO(); got != s {
			t.Fatalf("semimonthly round trip from %s: got %s", s, got)
		}
	}
}

func TestAnchoredStart(t *testing.T) {
	tests := []struct {
		name   string
		typ    core.PeriodType
		anchor string
		ref    string
		offset int
		start  string
		end    string
	}{
		{"monthly current", core.Monthly, "2025-01-15", "2025-02-10", 0, "2025-01-15", "2025-02-14"},
		{"monthly next", core.Monthly, "2025-01-15", "2025-02-10", 1, "2025-02-15", "2025-03-14"},
		{"monthly previous", core.Monthly, "2025-01-15", "2025-02-10", -1, "2024-12-15", "2025-01-14"},
		{"monthly on anchor day", core.Monthly, "2025-01-15", "2025-03-15", 0, "2025-03-15", "2025-04-14"},
		{"monthly anchor in future", core.Monthly, "2026-06-15", "2025-02-20", 0, "2025-02-15", "2025-03-14"},
		{"monthly day 31 clamps in february", core.Monthly, "2025-01-31", "2025-03-01", 0, "2025-02-28", "2025-03-30"},
		{"monthly day 31 recovers after february", core.Monthly, "2025-01-31", "2025-02-10", 2, "2025-03-31", "2025-04-29"},
		{"semimonthly second half", core.SemiMonthly, "2025-01-03", "2025-02-20", 0, "2025-02-16", "2025-02-28"},
		{"semimonthly first half on 15th", core.SemiMonthly, "2025-01-03", "2025-02-15", 0, "2025-02-01", "2025-02-15"},
		{"semimonthly offset back", core.SemiMonthly, "2025-01-03", "2025-02-05", -1, "2025-01-16", "2025-01-31"},
		{"weekly aligned to anchor", core.Weekly, "2025-01-01", "2025-01-17", 0, "2025-01-15", "2025-01-21"},
		{"weekly before anchor", core.Weekly, "2025-01-01", "2024-12-31", 0, "2024-12-25", "2024-12-31"},
		{"weekly on boundary", core.Weekly, "2025-01-01", "2025-01-08", 0, "2025-01-08", "2025-01-14"},
		{"biweekly two back", core.Biweekly, "2025-01-03", "2025-02-01", -2, "2025-01-03", "2025-01-16"},
		{"custom", core.Custom, "2025-01-01", "2025-03-05", 0, "2025-03-02", "2025-03-31"},
		{"annually before anniversary", core.Annually, "2020-04-10", "2025-02-01", 0, "2024-04-10", "2025-04-09"},
		{"annually after anniversary", core.Annually, "2020-04-10", "2025-04-10", 1, "2026-04-10", "2027-04-09"},
		{"annually leap anchor", core.Annually, "2024-02-29", "2025-03-01", 0, "2025-02-28", "2026-02-27"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Resolve(tt.typ, d(tt.anchor), d(tt.ref), tt.offset)
			if w.StartISO() != tt.start || w.EndISO() != tt.end {
				t.Errorf("Resolve = %s, want %s..%s", w, tt.start, tt.end)
			}
			if tt.offset == 0 && !w.Contains(d(tt.ref)) {
				t.Errorf("window %s does not contain %s", w, tt.ref)
			}
		})
	}
}

func TestAnchoredStartIdempotentAtZeroOffset(t *testing.T) {
	anchor := d("2024-01-31")
	ref := d("2025-05-20")
	for _, typ := range core.PeriodTypes() {
		first := AnchoredStart(typ, anchor, ref, 0)
		if second := AnchoredStart(typ, anchor, ref, 0); first != second {
			t.Fatalf("%s: %s then %s", typ, first, second)
		}
	}
}

func TestOffsetsAreWholePeriodSteps(t *testing.T) {
	anchor := d("2025-01-31")
	ref := d("2025-01-31")
	for _, typ := range core.PeriodTypes() {
		w := Resolve(typ, anchor, ref, 0)
		for i := 1; i <= 14; i++ {
			next := Resolve(typ, anchor, ref, i)
			if next.Start != w.End.AddDays(1) {
				t.Fatalf("%s offset %d: start %s does not follow %s", typ, i, next.Start, w.End)
			}
			w = next
		}
	}
}

func TestLookupRejectsUnknown(t *testing.T) {
	if _, err := Lookup("hourly", d("2025-01-01")); err == nil {
		t.Fatal("expected error for unknown period type")
	}
	if _, err := Lookup(core.Weekly, d("2025-01-01")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
