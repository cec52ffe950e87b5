package period

import (
	"fmt"

	"budgetcycle/internal/core"
)

// Window is an inclusive range of calendar days.
type Window struct {
	Start core.Date
	End   core.Date
}

// StartISO and EndISO are the bounds in the form transactions use.
func (w Window) StartISO() string { return w.Start.ISO() }
func (w Window) EndISO() string   { return w.End.ISO() }

// Contains reports whether d falls inside the window, both ends included.
func (w Window) Contains(d core.Date) bool {
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

// Days returns the number of days covered.
func (w Window) Days() int {
	return w.Start.DaysUntil(w.End) + 1
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.StartISO(), w.EndISO())
}

// End returns the inclusive last day of the period of type t starting at start.
func End(t core.PeriodType, start core.Date) core.Date {
	return cycleFor(t, start).End(start)
}

// Forward advances start by exactly one period.
func Forward(t core.PeriodType, start core.Date) core.Date {
	return cycleFor(t, start).Next(start)
}

// Backward retreats start by exactly one period.
func Backward(t core.PeriodType, start core.Date) core.Date {
	return cycleFor(t, start).Prev(start)
}

// AnchoredStart resolves the period of type t (phased by anchor) that
// contains ref, then steps offset whole periods forward (positive) or
// backward (negative).
func AnchoredStart(t core.PeriodType, anchor, ref core.Date, offset int) core.Date {
	c := cycleFor(t, anchor)
	start := c.Containing(anchor, ref)
	for ; offset > 0; offset-- {
		start = c.Next(start)
	}
	for ; offset < 0; offset++ {
		start = c.Prev(start)
	}
	return start
}

// Resolve returns the full window for the anchored period containing ref
// after applying offset.
func Resolve(t core.PeriodType, anchor, ref core.Date, offset int) Window {
	c := cycleFor(t, anchor)
	start := AnchoredStart(t, anchor, ref, offset)
	return Window{Start: start, End: c.End(start)}
}
