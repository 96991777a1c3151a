package recurrence

import (
	"time"
)

// Template is the recurring source definition of a task.
type Template struct {
	ID          string
	AnchorStart time.Time     // first occurrence; every occurrence inherits its time of day
	Duration    time.Duration // length of each occurrence
	Rule        Rule

	// Completion of a non-recurring template. Recurring templates track
	// completion per occurrence through CompletionRecords instead.
	Completed   bool
	CompletedAt *time.Time
}

// IsRecurring reports whether the template expands into virtual instances.
func (t Template) IsRecurring() bool {
	return !t.Rule.IsNone()
}

// CompletionRecord marks one occurrence of one template as done.
type CompletionRecord struct {
	TemplateID     string
	OccurrenceDate time.Time // only the calendar day is significant
	CompletedAt    time.Time
}

// Occurrence is a single materialized instance of a template.
type Occurrence struct {
	ID          string     `json:"id"`
	TemplateID  string     `json:"templateId"`
	Date        time.Time  `json:"date"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	IsVirtual   bool       `json:"isVirtual"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}
