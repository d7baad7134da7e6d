package ledger

import (
	"fmt"
	"time"
)

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidEntry, s)
	}

	return t, nil
}

// FormatDate renders the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Today returns the calendar date of asOf in asOf's location.
func Today(asOf time.Time) string {
	return FormatDate(time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC))
}

// EndOfMonth returns the last calendar day of asOf's month.
func EndOfMonth(asOf time.Time) string {
	return FormatDate(time.Date(asOf.Year(), asOf.Month()+1, 0, 0, 0, 0, 0, time.UTC))
}

// MonthRange returns the first and last day of month, given as YYYY-MM.
func MonthRange(month string) (string, string, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid month %q", ErrInvalidEntry, month)
	}

	return FormatDate(t), EndOfMonth(t), nil
}
