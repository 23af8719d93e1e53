package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// DaysPerMonth is the standard month used to prorate partial periods.
const DaysPerMonth = 30

var ErrInvalidPeriod = errors.New("invalid period")

// Period is an inclusive range of whole UTC days.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewPeriod truncates both ends to whole days and rejects ranges that end
// before they start.
func NewPeriod(from, to time.Time) (Period, error) {
	p := Period{From: truncateDay(from), To: truncateDay(to)}
	if p.To.Before(p.From) {
		return Period{}, fmt.Errorf("%w: %s is before %s", ErrInvalidPeriod,
			p.To.Format(dateLayout), p.From.Format(dateLayout))
	}
	return p, nil
}

// ParseMonth parses "YYYY-MM" into the calendar month it names.
func ParseMonth(s string) (Period, error) {
	start, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: month %q: %v", ErrInvalidPeriod, s, err)
	}
	return Period{From: start, To: start.AddDate(0, 1, -1)}, nil
}

// ParsePeriod parses two YYYY-MM-DD dates.
func ParsePeriod(from, to string) (Period, error) {
	f, err := time.Parse(dateLayout, from)
	if err != nil {
		return Period{}, fmt.Errorf("%w: from %q: %v", ErrInvalidPeriod, from, err)
	}
	t, err := time.Parse(dateLayout, to)
	if err != nil {
		return Period{}, fmt.Errorf("%w: to %q: %v", ErrInvalidPeriod, to, err)
	}
	return NewPeriod(f, t)
}

// Days is the inclusive number of days covered.
func (p Period) Days() int {
	return int(p.To.Sub(p.From).Hours()/24) + 1
}

// IsCalendarMonth reports whether the period covers exactly one calendar month.
func (p Period) IsCalendarMonth() bool {
	return p.From.Day() == 1 && p.To.Equal(p.From.AddDate(0, 1, -1))
}

// MonthsFactor is 1 for an exact calendar month and Days/30 otherwise.
func (p Period) MonthsFactor() decimal.Decimal {
	if p.IsCalendarMonth() {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(p.Days())).Div(decimal.NewFromInt(DaysPerMonth))
}

// End is the exclusive upper bound, midnight after To.
func (p Period) End() time.Time {
	return p.To.AddDate(0, 0, 1)
}

// Contains reports whether t falls on one of the period's days.
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.From) && t.Before(p.End())
}

// Label is "YYYY-MM" for calendar months and "from..to" otherwise.
func (p Period) Label() string {
	if p.IsCalendarMonth() {
		return p.From.Format("2006-01")
	}
	return p.From.Format(dateLayout) + ".." + p.To.Format(dateLayout)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
