package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"focal/internal/cache"
	"focal/internal/model"
	"focal/internal/recurrence"
	"focal/internal/repository"
)

const (
	maxDurationMinutes = 24 * 60
	maxEnergyLevel     = 4
	// MaxOccurrenceSpanDays bounds a single Occurrences query.
	MaxOccurrenceSpanDays = 366
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title           string
	Description     string
	Category        string
	Icon            string
	Start           time.Time
	DurationMinutes int
	Recurrence      string
	RepeatDays      []int
	EnergyLevel     int
}

// TaskService wraps task templates and their per-occurrence completion.
type TaskService struct {
	taskRepo       *repository.TaskRepository
	categoryRepo   *repository.CategoryRepository
	completionRepo *repository.CompletionRepository
	engine         *recurrence.Engine
	cache          cache.AgendaCache
	log            *zap.SugaredLogger
	now            func() time.Time
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	completionRepo *repository.CompletionRepository,
	engine *recurrence.Engine,
	agendaCache cache.AgendaCache,
	log *zap.SugaredLogger,
) *TaskService {
	if agendaCache == nil {
		agendaCache = cache.Noop{}
	}
	return &TaskService{
		taskRepo:       taskRepo,
		categoryRepo:   categoryRepo,
		completionRepo: completionRepo,
		engine:         engine,
		cache:          agendaCache,
		log:            log,
		now:            time.Now,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	rule, err := validateInput(&input)
	if err != nil {
		return nil, err
	}

	var categoryID *uint
	if input.Category != "" {
		category, err := s.categoryRepo.GetOrCreate(ctx, user.ID, input.Category)
		if err != nil {
			return nil, err
		}
		if category != nil {
			categoryID = &category.ID
		}
	}

	task := model.Task{
		UID:             uuid.NewString(),
		UserID:          user.ID,
		CategoryID:      categoryID,
		Title:           input.Title,
		Description:     input.Description,
		Icon:            input.Icon,
		StartTime:       input.Start,
		DurationMinutes: input.DurationMinutes,
		Recurrence:      rule.String(),
		RepeatDays:      rule.Weekdays().Indices(),
		EnergyLevel:     input.EnergyLevel,
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	s.invalidate(ctx, user.ID)
	s.log.Infow("task created", "userID", user.ID, "taskID", task.ID, "recurrence", task.Recurrence)
	return &task, nil
}

func validateInput(input *TaskInput) (recurrence.Rule, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)

	if input.Title == "" {
		return recurrence.Rule{}, invalid("title is required")
	}
	if input.Start.IsZero() {
		return recurrence.Rule{}, invalid("start time is required")
	}
	if input.DurationMinutes < 1 || input.DurationMinutes > maxDurationMinutes {
		return recurrence.Rule{}, invalid("duration must be between 1 and %d minutes", maxDurationMinutes)
	}
	if input.EnergyLevel < 0 || input.EnergyLevel > maxEnergyLevel {
		return recurrence.Rule{}, invalid("energy level must be between 0 and %d", maxEnergyLevel)
	}

	name := strings.TrimSpace(input.Recurrence)
	if name == "" {
		return recurrence.None(), nil
	}
	kind, ok := recurrence.ParseKind(name)
	if !ok {
		return recurrence.Rule{}, invalid("unknown recurrence %q", name)
	}
	if kind != recurrence.KindCustom {
		return recurrence.ParseRule(kind.String(), nil), nil
	}
	for _, idx := range input.RepeatDays {
		if idx < 0 || idx > 6 {
			return recurrence.Rule{}, invalid("weekday %d out of range 0..6", idx)
		}
	}
	days := recurrence.NormalizeWeekdays(input.RepeatDays)
	if len(days) == 0 {
		return recurrence.Rule{}, invalid("custom recurrence needs at least one weekday")
	}
	return recurrence.ParseRule(kind.String(), days), nil
}

func (s *TaskService) ListTasks(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListByUser(ctx, user.ID)
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, translate(err)
	}
	return task, nil
}

// DeleteTask removes a task and every completion recorded for it.
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	if err := s.taskRepo.Delete(ctx, user.ID, taskID); err != nil {
		return translate(err)
	}
	s.invalidate(ctx, user.ID)
	s.log.Infow("task deleted", "userID", user.ID, "taskID", taskID)
	return nil
}

// MoveTask re-anchors a task on another day and time of day. Recurring tasks keep
// their completion records; records on days the new anchor no longer produces are ignored.
func (s *TaskService) MoveTask(ctx context.Context, user *model.User, taskID uint, day time.Time, hour, minute int) (*model.Task, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, invalid("time %02d:%02d out of range", hour, minute)
	}
	task, err := s.GetTask(ctx, user, taskID)
	if err != nil {
		return nil, err
	}
	task.StartTime = s.engine.Calendar().At(day, hour, minute)
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	s.invalidate(ctx, user.ID)
	return task, nil
}

// ToggleOccurrence flips the completion of the task's occurrence on day.
// Recurring tasks gain or lose completion records; one-off tasks flip their own flag.
func (s *TaskService) ToggleOccurrence(ctx context.Context, user *model.User, taskID uint, day time.Time) (recurrence.Occurrence, error) {
	task, err := s.GetTask(ctx, user, taskID)
	if err != nil {
		return recurrence.Occurrence{}, err
	}
	cal := s.engine.Calendar()
	tpl := task.Template(cal.Location())

	if !tpl.IsRecurring() {
		if !cal.SameDay(tpl.AnchorStart, day) {
			return recurrence.Occurrence{}, fmt.Errorf("%w: task %d is scheduled on %s", ErrNoOccurrence, task.ID, recurrence.DayKey(cal, tpl.AnchorStart))
		}
		return s.toggleSingle(ctx, user, task)
	}

	if !s.engine.Occurs(tpl, day) {
		return recurrence.Occurrence{}, fmt.Errorf("%w: task %d on %s", ErrNoOccurrence, task.ID, recurrence.DayKey(cal, day))
	}

	key := recurrence.DayKey(cal, day)
	removed, err := s.completionRepo.DeleteForDay(ctx, task.UID, key)
	if err != nil {
		return recurrence.Occurrence{}, err
	}
	if removed == 0 {
		rec := model.CompletionRecord{
			TaskUID:        task.UID,
			Day:            key,
			OccurrenceDate: cal.StartOfDay(day),
			CompletedAt:    s.now(),
		}
		if err := s.completionRepo.Create(ctx, &rec); err != nil {
			return recurrence.Occurrence{}, err
		}
	}
	s.invalidate(ctx, user.ID)

	rows, err := s.completionRepo.ListForDay(ctx, task.UID, key)
	if err != nil {
		return recurrence.Occurrence{}, err
	}
	occ, ok := s.engine.GenerateOccurrenceForDate(tpl, day, recurrence.NewRecordList(cal, model.Records(rows))).Get()
	if !ok {
		return recurrence.Occurrence{}, fmt.Errorf("%w: task %d on %s", ErrNoOccurrence, task.ID, key)
	}
	s.log.Infow("occurrence toggled", "userID", user.ID, "taskID", task.ID, "day", key, "completed", occ.IsCompleted)
	return occ, nil
}

func (s *TaskService) toggleSingle(ctx context.Context, user *model.User, task *model.Task) (recurrence.Occurrence, error) {
	if task.IsCompleted {
		task.IsCompleted = false
		task.CompletedAt = nil
	} else {
		now := s.now()
		task.IsCompleted = true
		task.CompletedAt = &now
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return recurrence.Occurrence{}, err
	}
	s.invalidate(ctx, user.ID)
	return s.engine.SingleInstance(task.Template(s.engine.Calendar().Location())), nil
}

// NextOccurrence returns the first day after after on which the task recurs.
func (s *TaskService) NextOccurrence(ctx context.Context, user *model.User, taskID uint, after time.Time) (mo.Option[time.Time], error) {
	task, err := s.GetTask(ctx, user, taskID)
	if err != nil {
		return mo.None[time.Time](), err
	}
	return s.engine.NextOccurrence(task.Template(s.engine.Calendar().Location()), after), nil
}

// Occurrences lists the task's instances between from and to, inclusive days.
func (s *TaskService) Occurrences(ctx context.Context, user *model.User, taskID uint, from, to time.Time) ([]recurrence.Occurrence, error) {
	cal := s.engine.Calendar()
	span := cal.DaysBetween(from, to)
	if span < 0 {
		return nil, invalid("range end is before its start")
	}
	if span >= MaxOccurrenceSpanDays {
		return nil, invalid("range is limited to %d days", MaxOccurrenceSpanDays)
	}

	task, err := s.GetTask(ctx, user, taskID)
	if err != nil {
		return nil, err
	}
	tpl := task.Template(cal.Location())

	if !tpl.IsRecurring() {
		day := cal.StartOfDay(tpl.AnchorStart)
		if day.Before(cal.StartOfDay(from)) || day.After(cal.StartOfDay(to)) {
			return []recurrence.Occurrence{}, nil
		}
		return []recurrence.Occurrence{s.engine.SingleInstance(tpl)}, nil
	}

	rows, err := s.completionRepo.ListForTasksBetween(ctx, []string{task.UID}, recurrence.DayKey(cal, from), recurrence.DayKey(cal, to))
	if err != nil {
		return nil, err
	}
	lookup := recurrence.NewRecordIndex(cal, model.Records(rows))
	return s.engine.GenerateOccurrences(tpl, recurrence.DateRange{Start: from, End: to}, lookup), nil
}

func (s *TaskService) invalidate(ctx context.Context, userID uint) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warnw("agenda cache invalidate failed", "userID", userID, "error", err)
	}
}
