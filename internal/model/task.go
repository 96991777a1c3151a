package model

import (
	"time"

	"focal/internal/recurrence"
)

// Task is a stored task template. Recurring tasks are never copied per day;
// their occurrences are computed and only completions are persisted.
type Task struct {
	ID              uint   `gorm:"primaryKey"`
	UID             string `gorm:"size:36;uniqueIndex"`
	UserID          uint   `gorm:"index"`
	CategoryID      *uint  `gorm:"index"`
	Title           string
	Description     string
	Icon            string
	StartTime       time.Time
	DurationMinutes int
	Recurrence      string `gorm:"size:16"`
	RepeatDays      []int  `gorm:"type:text;serializer:json"`
	EnergyLevel     int
	IsCompleted     bool `gorm:"default:false"`
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Rule parses the stored recurrence; unknown names read as non-recurring.
func (t *Task) Rule() recurrence.Rule {
	return recurrence.ParseRule(t.Recurrence, t.RepeatDays)
}

func (t *Task) IsRecurring() bool {
	return !t.Rule().IsNone()
}

func (t *Task) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

// Template converts the row into the engine's view of it, with the anchor expressed in loc.
func (t *Task) Template(loc *time.Location) recurrence.Template {
	tpl := recurrence.Template{
		ID:          t.UID,
		AnchorStart: t.StartTime.In(loc),
		Duration:    t.Duration(),
		Rule:        t.Rule(),
		Completed:   t.IsCompleted,
	}
	if t.CompletedAt != nil {
		completedAt := t.CompletedAt.In(loc)
		tpl.CompletedAt = &completedAt
	}
	return tpl
}

// Templates converts rows in order.
func Templates(tasks []Task, loc *time.Location) []recurrence.Template {
	out := make([]recurrence.Template, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Template(loc)
	}
	return out
}
