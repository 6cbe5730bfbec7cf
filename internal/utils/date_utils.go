package utils

import (
	"errors"
	"time"
)

// ServiceDateFormat is the wire format for day-granularity dates.
const ServiceDateFormat = "2006-01-02"

// DateOnly truncates a timestamp to UTC midnight. All service dates are
// stored and compared at day granularity, never with a time component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current day at UTC midnight.
func Today() time.Time {
	return DateOnly(time.Now().UTC())
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// ParseServiceDate parses a YYYY-MM-DD string into a UTC midnight date.
func ParseServiceDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, errors.New("date is required")
	}

	t, err := time.Parse(ServiceDateFormat, dateStr)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, expected YYYY-MM-DD")
	}

	return DateOnly(t), nil
}

// FormatServiceDate renders a date in the wire format.
func FormatServiceDate(t time.Time) string {
	return t.Format(ServiceDateFormat)
}
