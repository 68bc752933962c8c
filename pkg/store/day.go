package store

import (
	"fmt"
	"time"
)

// dayFormat is the shard directory name layout. ISO dates sort
// lexicographically, which AllForUser relies on.
const dayFormat = "2006-01-02"

// Day is a calendar date identifying one shard of a user's history.
// The zero value is not a valid day; construct via DayOf, Today or ParseDay.
type Day struct {
	t time.Time
}

// DayOf truncates an instant to its UTC calendar date.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return Day{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC calendar date.
func Today() Day {
	return DayOf(time.Now())
}

// ParseDay parses a "YYYY-MM-DD" shard directory name.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("parsing day %q: %w", s, err)
	}
	return Day{t: t}, nil
}

// String formats the day as the shard directory name.
func (d Day) String() string {
	return d.t.Format(dayFormat)
}

// Before reports whether d is an earlier calendar date than other.
func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

// Equal reports whether two days are the same calendar date.
func (d Day) Equal(other Day) bool {
	return d.t.Equal(other.t)
}

// AddDays returns the day n calendar days later (negative n goes back).
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// IsZero reports whether the day was never initialized.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}
