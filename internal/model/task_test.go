package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focal/internal/recurrence"
)

func TestTask_Template(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*3600)
	done := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	task := Task{
		UID:             "2c1f7a4e-0000-4000-8000-000000000001",
		StartTime:       time.Date(2024, 3, 1, 5, 30, 0, 0, time.UTC),
		DurationMinutes: 90,
		Recurrence:      "Custom",
		RepeatDays:      []int{1, 3},
		IsCompleted:     true,
		CompletedAt:     &done,
	}

	tpl := task.Template(moscow)

	assert.Equal(t, task.UID, tpl.ID)
	assert.Equal(t, 8, tpl.AnchorStart.Hour())
	assert.Equal(t, moscow, tpl.AnchorStart.Location())
	assert.Equal(t, 90*time.Minute, tpl.Duration)
	assert.Equal(t, recurrence.KindCustom, tpl.Rule.Kind())
	assert.Equal(t, []int{1, 3}, tpl.Rule.Weekdays().Indices())
	require.NotNil(t, tpl.CompletedAt)
	assert.True(t, done.Equal(*tpl.CompletedAt))
	assert.True(t, task.IsRecurring())
}

func TestTask_UnknownRecurrenceIsOneOff(t *testing.T) {
	task := Task{Recurrence: "Sometimes"}
	assert.False(t, task.IsRecurring())
	assert.True(t, task.Template(time.UTC).Rule.IsNone())

	empty := Task{}
	assert.False(t, empty.IsRecurring())
}

func TestRecords_PreserveOrder(t *testing.T) {
	at := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rows := []CompletionRecord{
		{TaskUID: "a", Day: "2024-03-04", OccurrenceDate: at, CompletedAt: at},
		{TaskUID: "a", Day: "2024-03-04", OccurrenceDate: at, CompletedAt: at.Add(time.Hour)},
	}

	records := Records(rows)

	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].TemplateID)
	assert.Equal(t, at, records[0].CompletedAt)
	assert.Equal(t, at.Add(time.Hour), records[1].CompletedAt)
}
