package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"acorn/internal/core"
)

// DuenessChecker decides whether a recurring expense is due again, given
// its last occurrence and the date of its first one.
type DuenessChecker interface {
	IsDue(last, now, first time.Time) bool
}

// DailyChecker is due once the calendar day changes.
type DailyChecker struct{}

func (DailyChecker) IsDue(last, now, _ time.Time) bool {
	if last.IsZero() {
		return true
	}
	return !core.SameDay(last, now) && now.After(last)
}

// DayIntervalChecker is due after a fixed number of days.
type DayIntervalChecker struct {
	Days int
}

func (c DayIntervalChecker) IsDue(last, now, _ time.Time) bool {
	if last.IsZero() {
		return true
	}
	daysSince := now.Sub(last).Hours() / 24
	return daysSince >= float64(c.Days)
}

// MonthIntervalChecker is due every Months months on the day of the month
// of the first occurrence, clamped to the length of the current month.
type MonthIntervalChecker struct {
	Months int
}

func (c MonthIntervalChecker) IsDue(last, now, first time.Time) bool {
	if last.IsZero() {
		return true
	}

	elapsed := (now.Year()-last.Year())*12 + int(now.Month()) - int(last.Month())
	if elapsed < c.Months {
		return false
	}
	if elapsed > c.Months {
		return true
	}

	targetDay := first.Day()
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		targetDay = lastDayOfMonth
	}
	return now.Day() >= targetDay
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:     DailyChecker{},
	core.Weekly:    DayIntervalChecker{Days: 7},
	core.Biweekly:  DayIntervalChecker{Days: 14},
	core.Monthly:   MonthIntervalChecker{Months: 1},
	core.Quarterly: MonthIntervalChecker{Months: 3},
	core.Yearly:    MonthIntervalChecker{Months: 12},
}

// GetDuenessChecker returns the checker for a frequency. One-time and
// unknown frequencies have none.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown repetition type: %s", frequency)
	}
	return checker, nil
}

type series struct {
	first, last time.Time
	latest      core.ExpenseRecord
}

// DueRecurring groups recurring, non-cancelled records by merchant, category
// and frequency, and returns the latest record of every series that is due
// at now. Records with unparseable dates are skipped. Results are ordered
// by merchant.
func DueRecurring(records []core.ExpenseRecord, now time.Time) []core.ExpenseRecord {
	groups := make(map[string]*series)
	for _, r := range records {
		if !r.IsRecurring || r.Status == core.StatusCancelled {
			continue
		}
		if _, err := GetDuenessChecker(r.Frequency); err != nil {
			continue
		}
		t, err := r.Time(now.Location())
		if err != nil {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(r.Merchant)) + "|" + r.CategoryOrDefault() + "|" + string(r.Frequency)
		g, ok := groups[key]
		if !ok {
			groups[key] = &series{first: t, last: t, latest: r}
			continue
		}
		if t.Before(g.first) {
			g.first = t
		}
		if t.After(g.last) {
			g.last = t
			g.latest = r
		}
	}

	var due []core.ExpenseRecord
	for _, g := range groups {
		checker, _ := GetDuenessChecker(g.latest.Frequency)
		if checker.IsDue(g.last, now, g.first) {
			due = append(due, g.latest)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].Merchant != due[j].Merchant {
			return due[i].Merchant < due[j].Merchant
		}
		return due[i].ID < due[j].ID
	})
	return due
}
