package model

import (
	"time"

	"focal/internal/recurrence"
)

// CompletionRecord marks one occurrence of a recurring task as done.
// Day is the occurrence's calendar day (YYYY-MM-DD) in the planner's time zone.
type CompletionRecord struct {
	ID             uint   `gorm:"primaryKey"`
	TaskUID        string `gorm:"size:36;index:idx_completion_task_day"`
	Day            string `gorm:"size:10;index:idx_completion_task_day"`
	OccurrenceDate time.Time
	CompletedAt    time.Time
	CreatedAt      time.Time
}

func (c CompletionRecord) Record() recurrence.CompletionRecord {
	return recurrence.CompletionRecord{
		TemplateID:     c.TaskUID,
		OccurrenceDate: c.OccurrenceDate,
		CompletedAt:    c.CompletedAt,
	}
}

// Records converts rows preserving their order, which decides duplicate resolution.
func Records(rows []CompletionRecord) []recurrence.CompletionRecord {
	out := make([]recurrence.CompletionRecord, len(rows))
	for i, row := range rows {
		out[i] = row.Record()
	}
	return out
}
