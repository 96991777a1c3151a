package recurrence

import (
	"time"

	"focal/internal/calendar"
)

// SearchHorizonDays bounds NextOccurrence.
const SearchHorizonDays = 365

// Engine evaluates recurrence rules against a calendar.
// It keeps no state besides the calendar and is safe for concurrent use.
type Engine struct {
	cal calendar.Calendar
}

func NewEngine(cal calendar.Calendar) *Engine {
	return &Engine{cal: cal}
}

func (e *Engine) Calendar() calendar.Calendar {
	return e.cal
}

// Occurs reports whether the template's rule places an occurrence on the calendar day of date.
func (e *Engine) Occurs(t Template, date time.Time) bool {
	if t.Rule.IsNone() {
		return false
	}
	// Day granularity: the anchor's own day counts, its time of day does not.
	if e.cal.DaysBetween(t.AnchorStart, date) < 0 {
		return false
	}

	anchor := t.AnchorStart
	switch t.Rule.Kind() {
	case KindDaily:
		return true
	case KindWeekly:
		return e.cal.Weekday(date) == e.cal.Weekday(anchor)
	case KindBiweekly:
		if e.cal.Weekday(date) != e.cal.Weekday(anchor) {
			return false
		}
		return e.cal.WeeksBetween(anchor, date)%2 == 0
	case KindMonthly:
		// Anchors on the 29th-31st have no match in shorter months; those months are skipped.
		return e.cal.Day(date) == e.cal.Day(anchor)
	case KindYearly:
		return e.cal.Month(date) == e.cal.Month(anchor) && e.cal.Day(date) == e.cal.Day(anchor)
	case KindCustom:
		return t.Rule.Weekdays().Has(e.cal.Weekday(date))
	default:
		return false
	}
}
