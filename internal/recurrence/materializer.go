package recurrence

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// GenerateOccurrences materializes every occurrence of a recurring template within the
// inclusive day range, in ascending date order. Non-recurring templates yield nothing.
// A nil lookup means no occurrence is completed.
func (e *Engine) GenerateOccurrences(t Template, r DateRange, lookup CompletionLookup) []Occurrence {
	if !t.IsRecurring() {
		return []Occurrence{}
	}
	lookup = orEmpty(lookup)

	current := e.cal.StartOfDay(t.AnchorStart)
	if rangeStart := e.cal.StartOfDay(r.Start); rangeStart.After(current) {
		current = rangeStart
	}
	last := e.cal.StartOfDay(r.End)

	instances := []Occurrence{}
	for !current.After(last) {
		if e.Occurs(t, current) {
			instances = append(instances, e.virtualInstance(t, current, lookup))
		}
		current = e.cal.StartOfDay(e.cal.AddDays(current, 1))
	}
	return instances
}

// GenerateOccurrenceForDate returns the occurrence on the day of date, if the rule places one there.
func (e *Engine) GenerateOccurrenceForDate(t Template, date time.Time, lookup CompletionLookup) mo.Option[Occurrence] {
	if !e.Occurs(t, date) {
		return mo.None[Occurrence]()
	}
	return mo.Some(e.virtualInstance(t, e.cal.StartOfDay(date), orEmpty(lookup)))
}

// NextOccurrence probes the days after the day of after, up to SearchHorizonDays of them,
// and returns the start of the first day the rule matches.
func (e *Engine) NextOccurrence(t Template, after time.Time) mo.Option[time.Time] {
	if !t.IsRecurring() {
		return mo.None[time.Time]()
	}
	day := e.cal.StartOfDay(after)
	for i := 0; i < SearchHorizonDays; i++ {
		day = e.cal.StartOfDay(e.cal.AddDays(day, 1))
		if e.Occurs(t, day) {
			return mo.Some(day)
		}
	}
	return mo.None[time.Time]()
}

// SingleInstance is the canonical instance of a non-recurring template.
func (e *Engine) SingleInstance(t Template) Occurrence {
	occ := Occurrence{
		ID:          t.ID,
		TemplateID:  t.ID,
		Date:        e.cal.StartOfDay(t.AnchorStart),
		Start:       t.AnchorStart,
		End:         t.AnchorStart.Add(t.Duration),
		IsVirtual:   false,
		IsCompleted: t.Completed,
	}
	if t.Completed && t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		occ.CompletedAt = &completedAt
	}
	return occ
}

func (e *Engine) virtualInstance(t Template, day time.Time, lookup CompletionLookup) Occurrence {
	anchor := t.AnchorStart.In(e.cal.Location())
	start := e.cal.At(day, anchor.Hour(), anchor.Minute())
	occ := Occurrence{
		ID:         uuid.NewString(),
		TemplateID: t.ID,
		Date:       day,
		Start:      start,
		End:        start.Add(t.Duration),
		IsVirtual:  true,
	}
	if completedAt, ok := lookup.Lookup(t.ID, day).Get(); ok {
		occ.IsCompleted = true
		occ.CompletedAt = &completedAt
	}
	return occ
}

func orEmpty(lookup CompletionLookup) CompletionLookup {
	if lookup == nil {
		return noCompletions{}
	}
	return lookup
}
