package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Weekly      PeriodType = "weekly"
	Biweekly    PeriodType = "biweekly"
	SemiMonthly PeriodType = "semimonthly"
	Monthly     PeriodType = "monthly"
	Annually    PeriodType = "annually"
	Custom      PeriodType = "custom"
)

const (
	Inflow  TransactionType = "inflow"
	Expense TransactionType = "expense"
)

// ISODate is the zero-padded calendar day layout used on every boundary.
const ISODate = "2006-01-02"

type (
	PeriodType      string
	TransactionType string

	// Date is a calendar day. The wrapped time is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is owned by the transaction collaborator; the budget
	// engine only reads it. Date stays a string so window filtering can
	// compare ISO values directly.
	Transaction struct {
		ID       string          `json:"id"`
		Date     string          `json:"date"`
		Type     TransactionType `json:"type"`
		Category string          `json:"category"`
		Amount   Money           `json:"amount"`
	}
)

var (
	ErrInvalidDate            = errors.New("invalid date")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidPeriodType      = errors.New("invalid period type")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrEmptyCategory          = errors.New("empty category")
)

var periodAliases = map[string]PeriodType{
	"weekly":       Weekly,
	"biweekly":     Biweekly,
	"bi-weekly":    Biweekly,
	"fortnightly":  Biweekly,
	"semimonthly":  SemiMonthly,
	"semi-monthly": SemiMonthly,
	"monthly":      Monthly,
	"annually":     Annually,
	"annual":       Annually,
	"yearly":       Annually,
	"custom":       Custom,
}

// ParsePeriodType accepts the canonical names plus a few common spellings.
func ParsePeriodType(s string) (PeriodType, error) {
	p, ok := periodAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriodType, s)
	}
	return p, nil
}

// PeriodTypes lists every supported cycle in display order.
func PeriodTypes() []PeriodType {
	return []PeriodType{Weekly, Biweekly, SemiMonthly, Monthly, Annually, Custom}
}

func (p PeriodType) IsValid() bool {
	switch p {
	case Weekly, Biweekly, SemiMonthly, Monthly, Annually, Custom:
		return true
	default:
		return false
	}
}

func (p PeriodType) String() string {
	return string(p)
}

func (t TransactionType) IsValid() bool {
	return t == Inflow || t == Expense
}

// NewDate creates a new Date from year, month, day. Out of range values
// normalize the way time.Date does.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping t's own calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// ClampedDate builds year/month/day, pulling day back to the last valid
// day of that month instead of overflowing into the next one.
func ClampedDate(year int, month time.Month, day int) Date {
	// normalize month overflow first so DaysIn sees the real month
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	y, m := first.Year(), first.Month()
	if last := DaysIn(y, m); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(y, int(m), day)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) ISO() string {
	return d.Format(ISODate)
}

func (d Date) String() string {
	return d.ISO()
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the signed number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (t Transaction) Validate() error {
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, t.Type)
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return t.Amount.Validate()
}
