package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Overview(t *testing.T) {
	f := newFixture(t)
	start := at(2024, 1, 8, 9, 0)

	f.create(t, TaskInput{Title: "Standup", Category: "Работа", Start: start, Recurrence: "Daily"})
	f.create(t, TaskInput{Title: "Review", Category: "Работа", Start: start})
	f.create(t, TaskInput{Title: "Gym", Category: "Спорт", Start: start, Recurrence: "Custom", RepeatDays: []int{1, 4}})
	f.create(t, TaskInput{Title: "Call mom", Start: start})
	f.create(t, TaskInput{Title: "Plan sprint", Category: "Работа", Start: start})

	_, err := f.categoryRepo.GetOrCreate(f.ctx, f.user.ID, "Пустая")
	require.NoError(t, err)

	svc := NewCategoryService(f.categoryRepo)
	got, err := svc.Overview(f.ctx, f.user)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, CategoryOverview{Name: "Работа", Icon: "💼", Total: 3, Recurring: 1}, got[0])
	assert.Equal(t, CategoryOverview{Name: "Спорт", Icon: "🏃", Total: 1, Recurring: 1}, got[1])
	assert.Equal(t, CategoryOverview{Name: "Пустая", Icon: "🏷️", Total: 0, Recurring: 0}, got[2])
	assert.Equal(t, CategoryOverview{Icon: "📁", Total: 1, Recurring: 0}, got[3])

	list, err := svc.List(f.ctx, f.user)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
