package query

import (
	"time"

	"acorn/internal/core"
)

// Period names a relative window ending now.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// ParsePeriod maps user input to a Period; unknown values mean all.
func ParsePeriod(s string) Period {
	switch p := Period(s); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return p
	}
	return PeriodAll
}

// Label is the human description of the window.
func (p Period) Label() string {
	switch p {
	case PeriodToday:
		return "Today"
	case PeriodWeek:
		return "Last 7 Days"
	case PeriodMonth:
		return "Last 30 Days"
	case PeriodYear:
		return "Last Year"
	}
	return "All Time"
}

// Start returns the beginning of the window and false for PeriodAll.
func (p Period) Start(now time.Time) (time.Time, bool) {
	switch p {
	case PeriodToday:
		return core.StartOfDay(now), true
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, 0, -30), true
	case PeriodYear:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// ByPeriod keeps the records dated within [start, now]. Calendar dates are
// read in now's location. Records with unparseable dates are dropped unless
// the period is all.
func ByPeriod(records []core.ExpenseRecord, p Period, now time.Time) []core.ExpenseRecord {
	start, bounded := p.Start(now)
	if !bounded {
		out := make([]core.ExpenseRecord, len(records))
		copy(out, records)
		return out
	}
	out := make([]core.ExpenseRecord, 0, len(records))
	for _, r := range records {
		t, err := core.ParseDate(r.Date, now.Location())
		if err != nil {
			continue
		}
		if t.Before(start) || t.After(now) {
			continue
		}
		out = append(out, r)
	}
	return out
}
