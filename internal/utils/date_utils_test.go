package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOnly(t *testing.T) {
	stamp := time.Date(2024, 3, 10, 15, 42, 7, 123, time.UTC)

	result := DateOnly(stamp)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), result)
}

func TestSameDay(t *testing.T) {
	testCases := []struct {
		name     string
		a        time.Time
		b        time.Time
		expected bool
	}{
		{
			name:     "same day different times",
			a:        time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC),
			b:        time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "adjacent days",
			a:        time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC),
			b:        time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SameDay(tc.a, tc.b))
		})
	}
}

func TestParseServiceDate(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"valid date", "2024-03-10", false},
		{"empty string", "", true},
		{"wrong format", "03/10/2024", true},
		{"timestamp rejected", "2024-03-10T12:00:00Z", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseServiceDate(tc.input)
			if tc.wantError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), parsed)
		})
	}
}

func TestFormatServiceDate_RoundTrip(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	parsed, err := ParseServiceDate(FormatServiceDate(date))

	assert.NoError(t, err)
	assert.Equal(t, date, parsed)
}
