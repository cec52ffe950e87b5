// Package period computes anchored budget cycles.
//
// Each period type has its own Cycle strategy that knows how long one
// period is, where it ends and which period contains a given day. All
// functions are pure: the same inputs always produce the same window.
package period

import (
	"fmt"
	"time"

	"budgetcycle/internal/core"
)

// Cycle is the strategy interface for one period type.
type Cycle interface {
	// End returns the inclusive last day of the period starting at start.
	End(start core.Date) core.Date
	// Next returns the start of the period after the one starting at start.
	Next(start core.Date) core.Date
	// Prev returns the start of the period before the one starting at start.
	Prev(start core.Date) core.Date
	// Containing returns the start of the period that holds ref.
	Containing(anchor, ref core.Date) core.Date
}

// fixedCycle covers every type whose length is a constant number of days.
type fixedCycle struct {
	days int
}

func (c fixedCycle) End(start core.Date) core.Date {
	return start.AddDays(c.days - 1)
}

func (c fixedCycle) Next(start core.Date) core.Date {
	return start.AddDays(c.days)
}

func (c fixedCycle) Prev(start core.Date) core.Date {
	return start.AddDays(-c.days)
}

func (c fixedCycle) Containing(anchor, ref core.Date) core.Date {
	k := floorDiv(anchor.DaysUntil(ref), c.days)
	start := anchor.AddDays(k * c.days)
	// at most one correction step around the boundary
	if ref.Before(start.Time) {
		start = c.Prev(start)
	} else if ref.After(c.End(start).Time) {
		start = c.Next(start)
	}
	return start
}

// semiMonthlyCycle splits every month at the 1st and the 16th. The anchor
// never shifts the phase.
type semiMonthlyCycle struct{}

func (semiMonthlyCycle) End(start core.Date) core.Date {
	if start.Day() == 1 {
		return core.NewDate(start.Year(), int(start.Month()), 15)
	}
	return core.NewDate(start.Year(), int(start.Month())+1, 0)
}

func (semiMonthlyCycle) Next(start core.Date) core.Date {
	if start.Day() < 16 {
		return core.NewDate(start.Year(), int(start.Month()), 16)
	}
	return core.NewDate(start.Year(), int(start.Month())+1, 1)
}

func (semiMonthlyCycle) Prev(start core.Date) core.Date {
	if start.Day() >= 16 {
		return core.NewDate(start.Year(), int(start.Month()), 1)
	}
	return core.NewDate(start.Year(), int(start.Month())-1, 16)
}

func (semiMonthlyCycle) Containing(_, ref core.Date) core.Date {
	if ref.Day() <= 15 {
		return core.NewDate(ref.Year(), int(ref.Month()), 1)
	}
	return core.NewDate(ref.Year(), int(ref.Month()), 16)
}

// monthlyCycle keeps the anchor day of month. Months too short for the
// anchor day clamp to their last day; the following month goes back to
// the anchor day, so clamping never drifts.
type monthlyCycle struct {
	day int
}

func (c monthlyCycle) End(start core.Date) core.Date {
	return c.Next(start).AddDays(-1)
}

func (c monthlyCycle) Next(start core.Date) core.Date {
	return core.ClampedDate(start.Year(), start.Month()+1, c.day)
}

func (c monthlyCycle) Prev(start core.Date) core.Date {
	return core.ClampedDate(start.Year(), start.Month()-1, c.day)
}

func (c monthlyCycle) Containing(_, ref core.Date) core.Date {
	candidate := core.ClampedDate(ref.Year(), ref.Month(), c.day)
	if ref.Before(candidate.Time) {
		return core.ClampedDate(ref.Year(), ref.Month()-1, c.day)
	}
	return candidate
}

// annualCycle keeps the anchor month and day, clamping Feb 29 to Feb 28
// in common years.
type annualCycle struct {
	month time.Month
	day   int
}

func (c annualCycle) End(start core.Date) core.Date {
	return c.Next(start).AddDays(-1)
}

func (c annualCycle) Next(start core.Date) core.Date {
	return core.ClampedDate(start.Year()+1, c.month, c.day)
}

func (c annualCycle) Prev(start core.Date) core.Date {
	return core.ClampedDate(start.Year()-1, c.month, c.day)
}

func (c annualCycle) Containing(_, ref core.Date) core.Date {
	candidate := core.ClampedDate(ref.Year(), c.month, c.day)
	if ref.Before(candidate.Time) {
		return core.ClampedDate(ref.Year()-1, c.month, c.day)
	}
	return candidate
}

// cycleFactories maps period types to strategies. Month based cycles are
// built from a reference date that supplies the day (and month) to keep.
var cycleFactories = map[core.PeriodType]func(ref core.Date) Cycle{
	core.Weekly:      func(core.Date) Cycle { return fixedCycle{days: 7} },
	core.Biweekly:    func(core.Date) Cycle { return fixedCycle{days: 14} },
	core.Custom:      func(core.Date) Cycle { return fixedCycle{days: 30} },
	core.SemiMonthly: func(core.Date) Cycle { return semiMonthlyCycle{} },
	core.Monthly:     func(ref core.Date) Cycle { return monthlyCycle{day: ref.Day()} },
	core.Annually:    func(ref core.Date) Cycle { return annualCycle{month: ref.Month(), day: ref.Day()} },
}

// Lookup returns the cycle for t keyed on ref's day of month. Unknown
// types are an error.
func Lookup(t core.PeriodType, ref core.Date) (Cycle, error) {
	f, ok := cycleFactories[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidPeriodType, t)
	}
	return f(ref), nil
}

// cycleFor is the lenient variant used by the pure helpers: unknown
// types behave like Monthly.
func cycleFor(t core.PeriodType, ref core.Date) Cycle {
	c, err := Lookup(t, ref)
	if err != nil {
		return cycleFactories[core.Monthly](ref)
	}
	return c
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
