package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"focal/internal/cache"
	"focal/internal/model"
	"focal/internal/recurrence"
	"focal/internal/repository"
)

// AgendaService builds the per-day view: recurring occurrences plus one-off tasks of that day.
type AgendaService struct {
	taskRepo       *repository.TaskRepository
	categoryRepo   *repository.CategoryRepository
	completionRepo *repository.CompletionRepository
	engine         *recurrence.Engine
	cache          cache.AgendaCache
	log            *zap.SugaredLogger
}

func NewAgendaService(
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	completionRepo *repository.CompletionRepository,
	engine *recurrence.Engine,
	agendaCache cache.AgendaCache,
	log *zap.SugaredLogger,
) *AgendaService {
	if agendaCache == nil {
		agendaCache = cache.Noop{}
	}
	return &AgendaService{
		taskRepo:       taskRepo,
		categoryRepo:   categoryRepo,
		completionRepo: completionRepo,
		engine:         engine,
		cache:          agendaCache,
		log:            log,
	}
}

// Day returns the agenda of the calendar day containing day.
func (s *AgendaService) Day(ctx context.Context, user *model.User, day time.Time) (model.Agenda, error) {
	agendas, err := s.days(ctx, user, []time.Time{s.engine.Calendar().StartOfDay(day)})
	if err != nil {
		return model.Agenda{}, err
	}
	return agendas[0], nil
}

// Week returns seven agendas starting at the calendar's start of the week containing day.
func (s *AgendaService) Week(ctx context.Context, user *model.User, day time.Time) ([]model.Agenda, error) {
	return s.days(ctx, user, s.engine.WeekDays(day))
}

// days serves cached days and builds the rest from one load of tasks and completions.
func (s *AgendaService) days(ctx context.Context, user *model.User, dates []time.Time) ([]model.Agenda, error) {
	cal := s.engine.Calendar()
	generation, genErr := s.cache.Generation(ctx, user.ID)
	if genErr != nil {
		s.log.Warnw("agenda cache generation failed", "userID", user.ID, "error", genErr)
	}
	out := make([]model.Agenda, len(dates))
	var missing []int
	for i, date := range dates {
		cached, err := s.cache.Load(ctx, user.ID, recurrence.DayKey(cal, date))
		if err != nil {
			s.log.Warnw("agenda cache load failed", "userID", user.ID, "error", err)
		}
		if agenda, ok := cached.Get(); ok && err == nil {
			out[i] = agenda
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	src, err := s.load(ctx, user, dates[missing[0]], dates[missing[len(missing)-1]])
	if err != nil {
		return nil, err
	}
	for _, i := range missing {
		out[i] = src.agenda(s.engine, dates[i])
		if genErr != nil {
			continue
		}
		if err := s.cache.Store(ctx, user.ID, generation, recurrence.DayKey(cal, dates[i]), out[i]); err != nil {
			s.log.Warnw("agenda cache store failed", "userID", user.ID, "error", err)
		}
	}
	return out, nil
}

type agendaSource struct {
	templates  []recurrence.Template
	tasks      map[string]model.Task
	categories map[uint]string
	lookup     recurrence.CompletionLookup
}

func (s *AgendaService) load(ctx context.Context, user *model.User, from, to time.Time) (*agendaSource, error) {
	cal := s.engine.Calendar()
	tasks, err := s.taskRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.NamesByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	src := &agendaSource{
		templates:  model.Templates(tasks, cal.Location()),
		tasks:      make(map[string]model.Task, len(tasks)),
		categories: categories,
	}
	var recurring []string
	for _, task := range tasks {
		src.tasks[task.UID] = task
		if task.IsRecurring() {
			recurring = append(recurring, task.UID)
		}
	}

	rows, err := s.completionRepo.ListForTasksBetween(ctx, recurring, recurrence.DayKey(cal, from), recurrence.DayKey(cal, to))
	if err != nil {
		return nil, err
	}
	src.lookup = recurrence.NewRecordIndex(cal, model.Records(rows))
	return src, nil
}

func (src *agendaSource) agenda(engine *recurrence.Engine, date time.Time) model.Agenda {
	instances := engine.InstancesForDate(src.templates, date, src.lookup)
	agenda := model.Agenda{
		Date:     date,
		Items:    make([]model.AgendaItem, 0, len(instances)),
		Progress: recurrence.Progress(instances),
	}
	for _, occ := range instances {
		task := src.tasks[occ.TemplateID]
		item := model.AgendaItem{
			Occurrence:  occ,
			TaskID:      task.ID,
			Title:       task.Title,
			Description: task.Description,
			Icon:        task.Icon,
			Recurrence:  task.Rule().String(),
			EnergyLevel: task.EnergyLevel,
		}
		if task.CategoryID != nil {
			item.Category = src.categories[*task.CategoryID]
		}
		agenda.Energy += task.EnergyLevel
		agenda.Items = append(agenda.Items, item)
	}
	return agenda
}
