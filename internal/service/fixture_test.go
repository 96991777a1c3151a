package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"focal/internal/cache"
	"focal/internal/calendar"
	"focal/internal/logger"
	"focal/internal/model"
	"focal/internal/recurrence"
	"focal/internal/repository"
)

// Wednesday.
var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx            context.Context
	user           *model.User
	other          *model.User
	taskRepo       *repository.TaskRepository
	categoryRepo   *repository.CategoryRepository
	completionRepo *repository.CompletionRepository
	cache          *cache.Memory
	engine         *recurrence.Engine
	tasks          *TaskService
	agenda         *AgendaService
	reminder       *ReminderService
	export         *ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	f := &fixture{
		ctx:            context.Background(),
		taskRepo:       repository.NewTaskRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		completionRepo: repository.NewCompletionRepository(db),
		cache:          cache.NewMemory(time.Hour),
		engine:         recurrence.NewEngine(calendar.New(time.UTC, time.Monday)),
	}
	users := repository.NewUserRepository(db)
	f.user, err = users.UpsertFromTelegram(f.ctx, 1001, "Ada", "", "ada")
	require.NoError(t, err)
	f.other, err = users.UpsertFromTelegram(f.ctx, 1002, "Bob", "", "bob")
	require.NoError(t, err)

	log := logger.Nop()
	f.tasks = NewTaskService(f.taskRepo, f.categoryRepo, f.completionRepo, f.engine, f.cache, log)
	f.tasks.now = func() time.Time { return fixedNow }
	f.agenda = NewAgendaService(f.taskRepo, f.categoryRepo, f.completionRepo, f.engine, f.cache, log)
	f.reminder = NewReminderService(f.agenda, f.taskRepo, f.categoryRepo, f.engine)
	f.export = NewExportService(f.taskRepo, f.categoryRepo, f.engine)
	f.export.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) create(t *testing.T, input TaskInput) *model.Task {
	t.Helper()
	if input.DurationMinutes == 0 {
		input.DurationMinutes = 30
	}
	task, err := f.tasks.CreateTask(f.ctx, f.user, input)
	require.NoError(t, err)
	return task
}

func at(y int, m time.Month, d, hour, minute int) time.Time {
	return time.Date(y, m, d, hour, minute, 0, 0, time.UTC)
}
