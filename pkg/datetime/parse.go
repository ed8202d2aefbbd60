// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/ofzlab/ofz-planner/pkg/constants"
)

const (
	// DateLayout is the format expected for dates throughout the application.
	DateLayout = constants.DateLayout
)

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate renders a time as a YYYY-MM-DD string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MustParseDate parses a YYYY-MM-DD date string and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(value string) time.Time {
	t, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return t
}

// YearsBetween returns the number of years between two dates using a
// 365.25-day year. Negative when to precedes from.
func YearsBetween(from, to time.Time) float64 {
	days := to.Sub(from).Hours() / 24
	return days / constants.DaysPerYear
}
