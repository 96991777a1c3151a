package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focal/internal/model"
	"focal/internal/recurrence"
)

func TestTaskService_CreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	valid := TaskInput{Title: "Read", Start: at(2024, 1, 8, 9, 0), DurationMinutes: 30}

	tests := []struct {
		name   string
		mutate func(in *TaskInput)
	}{
		{"blank title", func(in *TaskInput) { in.Title = "   " }},
		{"missing start", func(in *TaskInput) { in.Start = time.Time{} }},
		{"zero duration", func(in *TaskInput) { in.DurationMinutes = 0 }},
		{"duration over a day", func(in *TaskInput) { in.DurationMinutes = 1441 }},
		{"energy too high", func(in *TaskInput) { in.EnergyLevel = 5 }},
		{"unknown recurrence", func(in *TaskInput) { in.Recurrence = "Hourly" }},
		{"custom without days", func(in *TaskInput) { in.Recurrence = "Custom" }},
		{"custom with bad day", func(in *TaskInput) { in.Recurrence = "Custom"; in.RepeatDays = []int{1, 7} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			_, err := f.tasks.CreateTask(f.ctx, f.user, input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestTaskService_CreateTaskNormalizes(t *testing.T) {
	f := newFixture(t)

	task := f.create(t, TaskInput{
		Title:       "  Gym ",
		Category:    "Health",
		Start:       at(2024, 1, 8, 7, 0),
		Recurrence:  "custom",
		RepeatDays:  []int{5, 1, 1},
		EnergyLevel: 4,
	})

	assert.Equal(t, "Gym", task.Title)
	assert.Equal(t, "Custom", task.Recurrence)
	assert.Equal(t, []int{1, 5}, task.RepeatDays)
	assert.Len(t, task.UID, 36)
	require.NotNil(t, task.CategoryID)

	oneOff := f.create(t, TaskInput{Title: "Dentist", Start: at(2024, 1, 9, 8, 0)})
	assert.Equal(t, "None", oneOff.Recurrence)
	assert.False(t, oneOff.IsRecurring())
}

func TestTaskService_ToggleRecurringOccurrence(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, TaskInput{Title: "Review", Start: at(2024, 1, 1, 9, 30), Recurrence: "Weekly"})

	_, err := f.tasks.ToggleOccurrence(f.ctx, f.user, task.ID, at(2024, 1, 9, 0, 0))
	assert.ErrorIs(t, err, ErrNoOccurrence, "Tuesday is not a Monday")

	occ, err := f.tasks.ToggleOccurrence(f.ctx, f.user, task.ID, at(2024, 1, 8, 18, 0))
	require.NoError(t, err)
	assert.True(t, occ.IsCompleted)
	assert.True(t, occ.IsVirtual)
	require.NotNil(t, occ.CompletedAt)
	assert.True(t, fixedNow.Equal(*occ.CompletedAt))
	assert.Equal(t, at(2024, 1, 8, 9, 30), occ.Start)

	count, err := f.completionRepo.CountForTask(f.ctx, task.UID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	occ, err = f.tasks.ToggleOccurrence(f.ctx, f.user, task.ID, at(2024, 1, 8, 0, 0))
	require.NoError(t, err)
	assert.False(t, occ.IsCompleted)

	count, err = f.completionRepo.CountForTask(f.ctx, task.UID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTaskService_ToggleRemovesDuplicateRecords(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, TaskInput{Title: "Stretch", Start: at(2024, 1, 1, 7, 0), Recurrence: "Daily"})
	for i := 0; i < 2; i++ {
		require.NoError(t, f.completionRepo.Create(f.ctx, &model.CompletionRecord{
			TaskUID: task.UID, Day: "2024-01-05", OccurrenceDate: at(2024, 1, 5, 0, 0), CompletedAt: at(2024, 1, 5, 8, i),
		}))
	}

	occ, err := f.tasks.ToggleOccurrence(f.ctx, f.user, task.ID, at(2024, 1, 5, 0, 0))
	require.NoError(t, err)
	assert.False(t, occ.IsCompleted)

	count, err := f.completionRepo.CountForTask(f.ctx, task.UID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTaskService_ToggleOneOff(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, TaskInput{Title: "Dentist", Start: at(2024, 1, 9, 8, 0), DurationMinutes: 45})

	_, err := f.tasks.ToggleOccurrence(f.ctx, f.user, task.ID, at(2024, 1, 10, 0, 0))
	assert.ErrorIs(t, err, ErrNoOccurrence)

	occ, err := f.tasks.ToggleOccurrence(f.ctx, f.user, task.ID, at(2024, 1, 9, 0, 0))
	require.NoError(t, err)
	assert.True(t, occ.IsCompleted)
	assert.False(t, occ.IsVirtual)
	assert.Equal(t, task.UID, occ.ID)
	assert.Equal(t, 45*time.Minute, occ.End.Sub(occ.Start))

	occ, err = f.tasks.ToggleOccurrence(f.ctx, f.user, task.ID, at(2024, 1, 9, 0, 0))
	require.NoError(t, err)
	assert.False(t, occ.IsCompleted)
	assert.Nil(t, occ.CompletedAt)
}

func TestTaskService_ScopedToUser(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, TaskInput{Title: "Private", Start: at(2024, 1, 9, 8, 0)})

	_, err := f.tasks.GetTask(f.ctx, f.other, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.tasks.ToggleOccurrence(f.ctx, f.other, task.ID, at(2024, 1, 9, 0, 0))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.tasks.DeleteTask(f.ctx, f.other, task.ID), ErrNotFound)
}

func TestTaskService_NextOccurrence(t *testing.T) {
	f := newFixture(t)
	biweekly := f.create(t, TaskInput{Title: "Retro", Start: at(2024, 1, 1, 15, 0), Recurrence: "Biweekly"})
	oneOff := f.create(t, TaskInput{Title: "Once", Start: at(2024, 1, 20, 15, 0)})

	next, err := f.tasks.NextOccurrence(f.ctx, f.user, biweekly.ID, fixedNow)
	require.NoError(t, err)
	day, ok := next.Get()
	require.True(t, ok)
	assert.Equal(t, at(2024, 1, 15, 0, 0), day)

	next, err = f.tasks.NextOccurrence(f.ctx, f.user, oneOff.ID, fixedNow)
	require.NoError(t, err)
	assert.True(t, next.IsAbsent())
}

func TestTaskService_Occurrences(t *testing.T) {
	f := newFixture(t)
	daily := f.create(t, TaskInput{Title: "Journal", Start: at(2024, 1, 3, 21, 0), Recurrence: "Daily"})
	_, err := f.tasks.ToggleOccurrence(f.ctx, f.user, daily.ID, at(2024, 1, 4, 0, 0))
	require.NoError(t, err)

	occs, err := f.tasks.Occurrences(f.ctx, f.user, daily.ID, at(2024, 1, 1, 0, 0), at(2024, 1, 7, 0, 0))
	require.NoError(t, err)
	require.Len(t, occs, 5)
	assert.Equal(t, at(2024, 1, 3, 0, 0), occs[0].Date)
	assert.False(t, occs[0].IsCompleted)
	assert.True(t, occs[1].IsCompleted)

	_, err = f.tasks.Occurrences(f.ctx, f.user, daily.ID, at(2024, 1, 7, 0, 0), at(2024, 1, 1, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.tasks.Occurrences(f.ctx, f.user, daily.ID, at(2024, 1, 1, 0, 0), at(2025, 1, 1, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	oneOff := f.create(t, TaskInput{Title: "Once", Start: at(2024, 1, 5, 10, 0)})
	occs, err = f.tasks.Occurrences(f.ctx, f.user, oneOff.ID, at(2024, 1, 1, 0, 0), at(2024, 1, 7, 0, 0))
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, oneOff.UID, occs[0].ID)

	occs, err = f.tasks.Occurrences(f.ctx, f.user, oneOff.ID, at(2024, 1, 6, 0, 0), at(2024, 1, 7, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestTaskService_MoveTask(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, TaskInput{Title: "Call", Start: at(2024, 1, 9, 8, 0)})

	moved, err := f.tasks.MoveTask(f.ctx, f.user, task.ID, at(2024, 1, 11, 0, 0), 15, 30)
	require.NoError(t, err)
	assert.Equal(t, at(2024, 1, 11, 15, 30), moved.StartTime)

	_, err = f.tasks.MoveTask(f.ctx, f.user, task.ID, at(2024, 1, 11, 0, 0), 24, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskService_DeleteCascadesAndInvalidates(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, TaskInput{Title: "Walk", Start: at(2024, 1, 1, 18, 0), Recurrence: "Daily"})
	_, err := f.tasks.ToggleOccurrence(f.ctx, f.user, task.ID, fixedNow)
	require.NoError(t, err)

	agenda, err := f.agenda.Day(f.ctx, f.user, fixedNow)
	require.NoError(t, err)
	require.Len(t, agenda.Items, 1)

	require.NoError(t, f.tasks.DeleteTask(f.ctx, f.user, task.ID))

	count, err := f.completionRepo.CountForTask(f.ctx, task.UID)
	require.NoError(t, err)
	assert.Zero(t, count)

	agenda, err = f.agenda.Day(f.ctx, f.user, fixedNow)
	require.NoError(t, err)
	assert.Empty(t, agenda.Items)
}

func TestRecurrenceLabel(t *testing.T) {
	assert.Equal(t, "Ежедневно", RecurrenceLabel(recurrence.Daily()))
	assert.Equal(t, "По дням: Пн, Пт", RecurrenceLabel(recurrence.Custom(time.Friday, time.Monday)))
	assert.Equal(t, "По дням: —", RecurrenceLabel(recurrence.Custom()))
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "Раз в две недели", KindLabel(recurrence.KindBiweekly))
	assert.Equal(t, "Без повтора", KindLabel(recurrence.Kind(42)))
}
