package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"focal/internal/model"
	"focal/internal/recurrence"
	"focal/internal/repository"
)

const productID = "-//Focal//Planner//EN"

// ExportService renders a user's tasks as an iCalendar feed.
type ExportService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	engine       *recurrence.Engine
	now          func() time.Time
}

func NewExportService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, engine *recurrence.Engine) *ExportService {
	return &ExportService{taskRepo: taskRepo, categoryRepo: categoryRepo, engine: engine, now: time.Now}
}

// Calendar encodes one VEVENT per task. Recurring tasks carry an RRULE and start on
// their first real occurrence; tasks that can never occur are left out.
func (s *ExportService) Calendar(ctx context.Context, user *model.User) ([]byte, error) {
	tasks, err := s.taskRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	catNames, err := s.categoryRepo.NamesByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")

	stamp := s.now().UTC()
	for _, task := range tasks {
		event, ok := s.event(task, catNames, stamp)
		if !ok {
			continue
		}
		cal.Children = append(cal.Children, event.Component)
	}
	if len(cal.Children) == 0 {
		return nil, fmt.Errorf("%w: no tasks to export", ErrNotFound)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ExportService) event(task model.Task, catNames map[uint]string, stamp time.Time) (*ical.Event, bool) {
	loc := s.engine.Calendar().Location()
	tpl := task.Template(loc)

	start := tpl.AnchorStart
	if tpl.IsRecurring() {
		first, ok := s.firstOccurrence(tpl)
		if !ok {
			return nil, false
		}
		start = first
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, task.UID+"@focal")
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	event.Props.SetText(ical.PropSummary, task.Title)
	if desc := strings.TrimSpace(task.Description); desc != "" {
		event.Props.SetText(ical.PropDescription, desc)
	}
	if task.CategoryID != nil {
		if name := catNames[*task.CategoryID]; name != "" {
			event.Props.SetText(ical.PropCategories, name)
		}
	}
	event.Props.SetDateTime(ical.PropDateTimeStart, icalTime(start))
	event.Props.SetDateTime(ical.PropDateTimeEnd, icalTime(start.Add(tpl.Duration)))

	if opt := tpl.Rule.ROption(icalTime(start)); opt != nil {
		// SetText would escape the commas of BYDAY lists.
		rrule := ical.NewProp(ical.PropRecurrenceRule)
		rrule.Value = opt.RRuleString()
		event.Props.Set(rrule)
	}
	if !tpl.IsRecurring() && tpl.Completed {
		event.Props.SetText(ical.PropStatus, "CONFIRMED")
		if tpl.CompletedAt != nil {
			completed := ical.NewProp("X-FOCAL-COMPLETED")
			completed.SetDateTime(tpl.CompletedAt.UTC())
			event.Props.Set(completed)
		}
	}
	return event, true
}

// firstOccurrence is the anchor itself when the rule matches it, otherwise the next match.
func (s *ExportService) firstOccurrence(tpl recurrence.Template) (time.Time, bool) {
	cal := s.engine.Calendar()
	if s.engine.Occurs(tpl, tpl.AnchorStart) {
		return tpl.AnchorStart, true
	}
	day, ok := s.engine.NextOccurrence(tpl, tpl.AnchorStart).Get()
	if !ok {
		return time.Time{}, false
	}
	anchor := tpl.AnchorStart.In(cal.Location())
	return cal.At(day, anchor.Hour(), anchor.Minute()), true
}

// icalTime keeps named zones, which encode with a TZID parameter. The host's Local zone
// has no usable name and is written as UTC.
func icalTime(t time.Time) time.Time {
	if t.Location() == time.Local || t.Location().String() == "Local" {
		return t.UTC()
	}
	return t
}
