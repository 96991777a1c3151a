package recurrence

import (
	"sort"
	"time"
)

// InstancesForDate joins recurring and one-off templates into the instances shown on one day,
// ordered by start time.
func (e *Engine) InstancesForDate(templates []Template, day time.Time, lookup CompletionLookup) []Occurrence {
	instances := []Occurrence{}
	for _, t := range templates {
		if t.IsRecurring() {
			if occ, ok := e.GenerateOccurrenceForDate(t, day, lookup).Get(); ok {
				instances = append(instances, occ)
			}
			continue
		}
		if e.cal.SameDay(t.AnchorStart, day) {
			instances = append(instances, e.SingleInstance(t))
		}
	}
	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].Start.Before(instances[j].Start)
	})
	return instances
}

// WeekDays returns the starts of the seven days of the week containing day.
func (e *Engine) WeekDays(day time.Time) []time.Time {
	start := e.cal.StartOfWeek(day)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = e.cal.StartOfDay(e.cal.AddDays(start, i))
	}
	return days
}

// Progress is the completed share of instances, 0 when there are none.
func Progress(instances []Occurrence) float64 {
	if len(instances) == 0 {
		return 0
	}
	done := 0
	for _, occ := range instances {
		if occ.IsCompleted {
			done++
		}
	}
	return float64(done) / float64(len(instances))
}
