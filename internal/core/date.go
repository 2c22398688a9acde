package core

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used in expense records.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02",
}

// ParseDate parses a record date. Plain calendar dates are interpreted as
// midnight in loc; timestamps keep their own offset. A nil loc means UTC.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrDateRequired
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders t as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TimestampLayout is used for createdAt/updatedAt and document timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
