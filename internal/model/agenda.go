package model

import (
	"time"

	"focal/internal/recurrence"
)

// AgendaItem is one occurrence with the task details needed to render it.
type AgendaItem struct {
	recurrence.Occurrence
	TaskID      uint   `json:"taskId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Category    string `json:"category,omitempty"`
	Recurrence  string `json:"recurrence"`
	EnergyLevel int    `json:"energyLevel"`
}

// Agenda is the ordered list of occurrences on one calendar day.
type Agenda struct {
	Date     time.Time    `json:"date"`
	Items    []AgendaItem `json:"items"`
	Progress float64      `json:"progress"`
	Energy   int          `json:"energy"`
}

// Pending returns the items not yet completed.
func (a Agenda) Pending() []AgendaItem {
	var out []AgendaItem
	for _, item := range a.Items {
		if !item.IsCompleted {
			out = append(out, item)
		}
	}
	return out
}

// EnergyIcon renders an energy level 0..4; anything else reads as moderate.
func EnergyIcon(level int) string {
	switch level {
	case 0:
		return "🌿"
	case 1:
		return "◎"
	case 3:
		return "🔥🔥"
	case 4:
		return "🔥🔥🔥"
	default:
		return "🔥"
	}
}

// WeekProgress is the completed share over all items of the given days.
func WeekProgress(days []Agenda) float64 {
	total, done := 0, 0
	for _, day := range days {
		for _, item := range day.Items {
			total++
			if item.IsCompleted {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}
