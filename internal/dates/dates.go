// Package dates resolves abbreviated MM/DD input into absolute calendar dates
// and holds the calendar-only date comparisons the rest of the system shares.
package dates

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat is returned when input does not parse as M/D or MM/DD
// with month in [1,12] and day in [1,31].
var ErrInvalidDateFormat = errors.New("無効な日付形式です (MM/DD)")

// ResolveMonthDay maps an abbreviated "M/D" or "MM/DD" string to the nearest
// occurrence of that month/day that is not before the start of today's date:
// the current year when the date is today or later, otherwise the next year.
//
// Day-of-month is only checked against [1,31], not against the month's actual
// length; time.Date normalizes overflow, so 2/30 becomes early March.
func ResolveMonthDay(raw string, today time.Time) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 2 {
		return time.Time{}, ErrInvalidDateFormat
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ErrInvalidDateFormat
	}

	candidate := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, today.Location())
	if candidate.Before(StartOfDay(today)) {
		return time.Date(today.Year()+1, time.Month(month), day, 0, 0, 0, 0, today.Location()), nil
	}
	return candidate, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsOverdue reports whether dueDate falls on a calendar day strictly before
// now's. Time-of-day is ignored; a due date anywhere within the current day is
// not overdue.
func IsOverdue(dueDate, now time.Time) bool {
	return dueDate.Before(StartOfDay(now))
}
