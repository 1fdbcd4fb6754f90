// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/property-calc/pkg/constants"
)

const (
	// DateTimeLayout is the year-month format used for reported payoff dates.
	DateTimeLayout = constants.DateTimeLayout

	// DateLayout is the full calendar date format accepted for as-of dates.
	DateLayout = "2006-01-02"
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseAsOf parses an as-of date given either as YYYY-MM-DD or YYYY-MM. An
// empty string yields the zero time so callers can fall back to the clock.
func ParseAsOf(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, trimmed); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateTimeLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s or %s", value, DateLayout, DateTimeLayout)
	}
	return t, nil
}

// AddMonths offsets t by the given number of months. Unlike time.AddDate the
// day of month is clamped to the last day of the target month, so 31 January
// plus one month is 28 or 29 February rather than early March.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := DaysInMonth(target); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// PeriodsToMonths converts a count of repayment periods into whole calendar
// months, rounding up so a partial month still counts as a month of repayments.
func PeriodsToMonths(periods, periodsPerYear int) int {
	if periods <= 0 || periodsPerYear <= 0 {
		return 0
	}
	return (periods*constants.MonthsPerYear + periodsPerYear - 1) / periodsPerYear
}

// SplitMonths expresses a month count as whole years plus remaining months.
func SplitMonths(months int) (years, remainder int) {
	if months <= 0 {
		return 0, 0
	}
	return months / constants.MonthsPerYear, months % constants.MonthsPerYear
}
