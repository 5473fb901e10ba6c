package domain

import (
	"fmt"
	"time"
)

// Period is a calendar month. Ledger entries are tagged by period, and all
// reconciliation queries group by it. The persisted representation is the
// first day of the month.
type Period struct {
	year  int
	month time.Month
}

// NewPeriod builds a period for the given year and month.
func NewPeriod(year int, month time.Month) Period {
	// Normalize through time.Date so month 13 rolls into the next year.
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{year: t.Year(), month: t.Month()}
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{year: t.Year(), month: t.Month()}
}

// ParsePeriod parses the settlement feed layout "200601" (year then month,
// no separator).
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("200601", s)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

// FirstDay returns the first day of the month in UTC, which is the value
// stores persist.
func (p Period) FirstDay() time.Time {
	return time.Date(p.year, p.month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) Year() int         { return p.year }
func (p Period) Month() time.Month { return p.month }

func (p Period) IsZero() bool { return p.year == 0 && p.month == 0 }

// Next returns the following month.
func (p Period) Next() Period {
	return PeriodOf(p.FirstDay().AddDate(0, 1, 0))
}

func (p Period) String() string {
	return p.FirstDay().Format("2006-01")
}
