package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/core"
	"budgetcycle/internal/services"
)

type periodView struct {
	Type   core.PeriodType `json:"type"`
	Anchor string          `json:"anchor_date"`
	Offset int             `json:"offset"`
	Start  string          `json:"start"`
	End    string          `json:"end"`
}

type overviewView struct {
	Period   periodView   `json:"period"`
	Inflows  []budget.Row `json:"inflows"`
	Outflows []budget.Row `json:"outflows"`
	Summary  core.Summary `json:"summary"`
	CanUndo  bool         `json:"can_undo"`
}

func newPeriodView(s *services.Session, offset int) periodView {
	w := s.Window()
	st := s.Settings()
	return periodView{
		Type:   st.Type,
		Anchor: st.AnchorDate,
		Offset: offset,
		Start:  w.StartISO(),
		End:    w.EndISO(),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPeriod(w io.Writer, s *services.Session, offset int, asJSON bool) error {
	pv := newPeriodView(s, offset)
	if asJSON {
		return writeJSON(w, pv)
	}
	fmt.Fprintf(w, "%s period %s (offset %d, anchor %s, %d days)\n",
		pv.Type, s.Window(), offset, pv.Anchor, s.Window().Days())
	return nil
}

func printRows(w io.Writer, s *services.Session, sections []budget.Section, asJSON bool) error {
	if asJSON {
		out := make(map[budget.Section][]budget.Row, len(sections))
		for _, sec := range sections {
			out[sec] = s.Rows(sec)
		}
		return writeJSON(w, out)
	}
	for i, sec := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeSection(w, sec, s.Rows(sec))
	}
	return nil
}

func printOverview(w io.Writer, s *services.Session, offset int, asJSON bool) error {
	if asJSON {
		return writeJSON(w, overviewView{
			Period:   newPeriodView(s, offset),
			Inflows:  s.Rows(budget.Inflows),
			Outflows: s.Rows(budget.Outflows),
			Summary:  s.Summary(),
			CanUndo:  s.CanUndo(),
		})
	}

	fmt.Fprintf(w, "Period %s\n\n", s.Window())
	writeSection(w, budget.Inflows, s.Rows(budget.Inflows))
	fmt.Fprintln(w)
	writeSection(w, budget.Outflows, s.Rows(budget.Outflows))
	fmt.Fprintln(w)

	sum := s.Summary()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tBUDGETED\tACTUAL\t")
	fmt.Fprintf(tw, "inflows\t%s\t%s\t\n", sum.Inflows.Budgeted, sum.Inflows.Actual)
	fmt.Fprintf(tw, "outflows\t%s\t%s\t\n", sum.Outflows.Budgeted, sum.Outflows.Actual)
	fmt.Fprintf(tw, "net\t%s\t%s\t\n", sum.NetBudgeted, sum.NetActual)
	return tw.Flush()
}

func writeSection(w io.Writer, sec budget.Section, rows []budget.Row) {
	fmt.Fprintf(w, "%s\n", sec)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (no rows)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  PATH\tCATEGORY\tBUDGETED\tACTUAL\tAUTO")
	for _, r := range rows {
		name := r.Category
		if r.Depth > 0 {
			name = "  " + name
		}
		auto := ""
		if r.Auto {
			auto = "yes"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", r.Path, name, r.Amount, r.Actual, auto)
	}
	tw.Flush()
}

func printResults(w io.Writer, results []services.CommandResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tOP\tRESULT")
	for _, r := range results {
		status := "applied"
		switch {
		case r.Skipped:
			status = "skipped: " + r.Err.Error()
		case r.Err != nil:
			status = "rejected: " + r.Err.Error()
		case !r.Applied:
			status = "nothing to do"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Index, r.Op, status)
	}
	tw.Flush()
}
