package roster

import (
	"fmt"
	"time"
)

// DateKey is a calendar date in "YYYY-MM-DD" form (month 1-indexed,
// zero-padded). It is the map key inside a schedule's shifts and must
// round-trip exactly for slot lookups to succeed.
type DateKey string

// MakeDateKey builds a date key from a year, 0-indexed month and day.
func MakeDateKey(year, month, day int) DateKey {
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", year, month+1, day))
}

// ParseDateKey validates a raw date key and returns it typed.
func ParseDateKey(raw string) (DateKey, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", raw, err)
	}
	// time.Parse accepts unpadded fields; require the canonical form so
	// map lookups against generated keys cannot miss.
	if canonical := MakeDateKey(t.Year(), int(t.Month())-1, t.Day()); DateKey(raw) != canonical {
		return "", fmt.Errorf("date key %q is not in canonical YYYY-MM-DD form", raw)
	}
	return DateKey(raw), nil
}

// Time returns the date at midnight local time.
func (k DateKey) Time() (time.Time, error) {
	return time.Parse("2006-01-02", string(k))
}

// Weekday returns the day of week for the date key.
func (k DateKey) Weekday() (time.Weekday, error) {
	t, err := k.Time()
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// Year returns the 4-digit year.
func (k DateKey) Year() (int, error) {
	t, err := k.Time()
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}

// Month returns the 0-indexed month.
func (k DateKey) Month() (int, error) {
	t, err := k.Time()
	if err != nil {
		return 0, err
	}
	return int(t.Month()) - 1, nil
}

// Day returns the day of month.
func (k DateKey) Day() (int, error) {
	t, err := k.Time()
	if err != nil {
		return 0, err
	}
	return t.Day(), nil
}

// InMonth reports whether the key falls inside the given 0-indexed month.
func (k DateKey) InMonth(month, year int) bool {
	t, err := k.Time()
	if err != nil {
		return false
	}
	return t.Year() == year && int(t.Month())-1 == month
}

func (k DateKey) String() string {
	return string(k)
}

// DaysInMonth returns the number of days in the given 0-indexed month.
func DaysInMonth(month, year int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidMonth reports whether month is a valid 0-indexed month number.
func ValidMonth(month int) bool {
	return month >= 0 && month <= 11
}
