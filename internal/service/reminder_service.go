package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"focal/internal/model"
	"focal/internal/recurrence"
	"focal/internal/repository"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	agenda       *AgendaService
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	engine       *recurrence.Engine
}

func NewReminderService(agenda *AgendaService, taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, engine *recurrence.Engine) *ReminderService {
	return &ReminderService{agenda: agenda, taskRepo: taskRepo, categoryRepo: categoryRepo, engine: engine}
}

func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	cal := s.engine.Calendar()
	now = now.In(cal.Location())

	today, err := s.agenda.Day(ctx, &user, now)
	if err != nil {
		return "", err
	}
	tasks, err := s.taskRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	catNames, err := s.categoryRepo.NamesByID(ctx, user.ID)
	if err != nil {
		return "", err
	}

	scheduledToday := make(map[uint]bool, len(today.Items))
	for _, item := range today.Items {
		scheduledToday[item.TaskID] = true
	}

	var overdue, upcoming []model.Task
	startOfToday := cal.StartOfDay(now)
	for _, task := range tasks {
		switch {
		case task.IsRecurring():
			if !scheduledToday[task.ID] {
				upcoming = append(upcoming, task)
			}
		case !task.IsCompleted && task.StartTime.Before(startOfToday):
			overdue = append(overdue, task)
		}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Ежедневный отчёт</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s", now.Format("02.01.2006")))
	if len(today.Items) > 0 {
		done := len(today.Items) - len(today.Pending())
		builder.WriteString(fmt.Sprintf(" · выполнено %d из %d (%d%%)", done, len(today.Items), int(today.Progress*100+0.5)))
	}
	builder.WriteString("\n\n")

	builder.WriteString("🔥 <b>На сегодня</b>\n")
	if len(today.Items) == 0 {
		builder.WriteString("— на сегодня ничего не запланировано\n")
	} else {
		for _, item := range today.Items {
			builder.WriteString(FormatAgendaItem(item, cal.Location()))
		}
	}

	if len(overdue) > 0 {
		builder.WriteString("\n⚠️ <b>Просрочено</b>\n")
		for _, task := range overdue {
			builder.WriteString(formatOverdue(task, catNames, cal.Location()))
		}
	}

	builder.WriteString("\n♻️ <b>Регулярные задачи</b>\n")
	if len(upcoming) == 0 {
		builder.WriteString("— все регулярные задачи уже в плане на сегодня\n")
	} else {
		for _, task := range upcoming {
			builder.WriteString(s.formatRecurring(task, catNames, now))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// FormatAgendaItem renders one agenda line in Telegram HTML.
func FormatAgendaItem(item model.AgendaItem, loc *time.Location) string {
	var sb strings.Builder

	status := "⬜️"
	if item.IsCompleted {
		status = "✅"
	}
	sb.WriteString(fmt.Sprintf("%s %s–%s ", status, item.Start.In(loc).Format("15:04"), item.End.In(loc).Format("15:04")))
	if item.Icon != "" {
		sb.WriteString(html.EscapeString(item.Icon) + " ")
	}
	sb.WriteString(html.EscapeString(strings.TrimSpace(item.Title)))
	if item.Category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(item.Category)))
	}
	if item.IsVirtual {
		sb.WriteString(" ♻️")
	}
	sb.WriteString(" " + model.EnergyIcon(item.EnergyLevel))
	sb.WriteString(fmt.Sprintf(" · #%d", item.TaskID))
	sb.WriteByte('\n')
	return sb.String()
}

func formatOverdue(task model.Task, catNames map[uint]string, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏳ %s", html.EscapeString(strings.TrimSpace(task.Title))))
	writeCategory(&sb, task, catNames)
	sb.WriteString(fmt.Sprintf("\n   ⏰ было запланировано на %s · #%d", task.StartTime.In(loc).Format("02.01.2006 15:04"), task.ID))
	sb.WriteByte('\n')
	return sb.String()
}

func (s *ReminderService) formatRecurring(task model.Task, catNames map[uint]string, now time.Time) string {
	var sb strings.Builder
	tpl := task.Template(s.engine.Calendar().Location())

	sb.WriteString(fmt.Sprintf("♻️ %s", html.EscapeString(strings.TrimSpace(task.Title))))
	writeCategory(&sb, task, catNames)
	sb.WriteString(fmt.Sprintf("\n   🔁 %s", RecurrenceLabel(tpl.Rule)))
	if next, ok := s.engine.NextOccurrence(tpl, now).Get(); ok {
		sb.WriteString(fmt.Sprintf("\n   📆 Следующий раз: %s", next.Format("02.01.2006")))
	} else {
		sb.WriteString("\n   📆 В ближайший год не повторяется")
	}
	sb.WriteByte('\n')
	return sb.String()
}

func writeCategory(sb *strings.Builder, task model.Task, catNames map[uint]string) {
	if task.CategoryID == nil {
		return
	}
	if name := strings.TrimSpace(catNames[*task.CategoryID]); name != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
	}
}
