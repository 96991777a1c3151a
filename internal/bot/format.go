package bot

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"focal/internal/model"
	"focal/internal/recurrence"
	"focal/internal/service"
)

const (
	noCategory    = "Без категории"
	noCategoryKey = "__no_category__"
	iconOneOff    = "🟢"
	iconRecurring = "♻️"
	iconDone      = "✅"
)

var weekdayLong = [...]string{
	time.Sunday:    "Воскресенье",
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
}

// formatAgenda renders one day with its progress and energy total.
func formatAgenda(agenda model.Agenda, loc *time.Location, title string) string {
	var sb strings.Builder
	date := agenda.Date.In(loc)
	sb.WriteString(fmt.Sprintf("📅 <b>%s, %s</b>\n", title, date.Format(shortDateLayout)))
	if len(agenda.Items) == 0 {
		sb.WriteString("— ничего не запланировано")
		return sb.String()
	}
	done := len(agenda.Items) - len(agenda.Pending())
	sb.WriteString(fmt.Sprintf("Выполнено %d из %d (%s) · энергия %d\n\n", done, len(agenda.Items), percent(agenda.Progress), agenda.Energy))
	for _, item := range agenda.Items {
		sb.WriteString(service.FormatAgendaItem(item, loc))
	}
	return strings.TrimSpace(sb.String())
}

// formatWeek renders a compact overview of consecutive days.
func formatWeek(days []model.Agenda, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString("🗓 <b>Неделя</b>")
	if len(days) > 0 {
		first := days[0].Date.In(loc)
		last := days[len(days)-1].Date.In(loc)
		sb.WriteString(fmt.Sprintf(" %s–%s", first.Format("02.01"), last.Format(shortDateLayout)))
	}
	sb.WriteString(fmt.Sprintf(" · выполнено %s\n", percent(model.WeekProgress(days))))

	for _, day := range days {
		date := day.Date.In(loc)
		sb.WriteString(fmt.Sprintf("\n<b>%s %s</b>", weekdayLong[date.Weekday()], date.Format("02.01")))
		if len(day.Items) == 0 {
			sb.WriteString("\n— свободно\n")
			continue
		}
		done := len(day.Items) - len(day.Pending())
		sb.WriteString(fmt.Sprintf(" · %d/%d\n", done, len(day.Items)))
		for _, item := range day.Items {
			status := "⬜️"
			if item.IsCompleted {
				status = iconDone
			}
			sb.WriteString(fmt.Sprintf("%s %s %s · #%d\n", status, item.Start.In(loc).Format("15:04"), escape(shortTitle(item.Title, 32)), item.TaskID))
		}
	}
	return strings.TrimSpace(sb.String())
}

// formatTemplate renders a task definition for the /tasks listing.
func formatTemplate(task model.Task, next time.Time, loc *time.Location) string {
	var b strings.Builder
	rule := task.Rule()
	start := task.StartTime.In(loc)

	if rule.IsNone() {
		icon := iconOneOff
		if task.IsCompleted {
			icon = iconDone
		}
		b.WriteString(fmt.Sprintf("%s <b>#%d</b> %s\n", icon, task.ID, escape(normalizeTitle(task.Title))))
		b.WriteString(fmt.Sprintf("   ⏰ %s · %d мин\n", start.Format("02.01.2006 15:04"), task.DurationMinutes))
	} else {
		b.WriteString(fmt.Sprintf("%s <b>#%d</b> %s\n", iconRecurring, task.ID, escape(normalizeTitle(task.Title))))
		b.WriteString(fmt.Sprintf("   🔄 %s в %s · %d мин\n", service.RecurrenceLabel(rule), start.Format("15:04"), task.DurationMinutes))
		if next.IsZero() {
			b.WriteString("   📆 В ближайший год не повторяется\n")
		} else {
			b.WriteString(fmt.Sprintf("   📆 Следующий раз: %s\n", next.In(loc).Format(shortDateLayout)))
		}
	}
	if task.Description != "" {
		b.WriteString(fmt.Sprintf("   📝 %s\n", escape(task.Description)))
	}
	b.WriteByte('\n')
	return b.String()
}

// formatCreated summarises a freshly saved task.
func formatCreated(task *model.Task, loc *time.Location) string {
	var summary strings.Builder
	summary.WriteString("✅ <b>Задача сохранена</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", task.ID))
	summary.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(normalizeTitle(task.Title))))
	if task.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Описание:</b> %s\n", escape(task.Description)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Начало:</b> %s\n", task.StartTime.In(loc).Format("02.01.2006 15:04")))
	summary.WriteString(fmt.Sprintf("• <b>Длительность:</b> %d мин\n", task.DurationMinutes))
	summary.WriteString(fmt.Sprintf("• <b>Энергия:</b> %s\n", model.EnergyIcon(task.EnergyLevel)))
	summary.WriteString(fmt.Sprintf("• <b>Повтор:</b> %s\n", service.RecurrenceLabel(task.Rule())))
	return strings.TrimSpace(summary.String())
}

func formatToggled(title string, occ recurrence.Occurrence, loc *time.Location) string {
	day := occ.Date.In(loc).Format(shortDateLayout)
	if occ.IsCompleted {
		return fmt.Sprintf("✅ «%s» выполнена за %s.", escape(normalizeTitle(title)), day)
	}
	return fmt.Sprintf("↩️ Отметка «%s» за %s снята.", escape(normalizeTitle(title)), day)
}

func formatCategories(overview []service.CategoryOverview) string {
	var sb strings.Builder
	sb.WriteString("📂 <b>Категории</b>\n")
	for _, cat := range overview {
		name := cat.Name
		if name == "" {
			name = noCategory
		}
		sb.WriteString(fmt.Sprintf("%s %s · задач: %d", cat.Icon, escape(normalizeTitle(name)), cat.Total))
		if cat.Recurring > 0 {
			sb.WriteString(fmt.Sprintf(", повторяющихся: %d", cat.Recurring))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}

func percent(progress float64) string {
	return fmt.Sprintf("%d%%", int(progress*100+0.5))
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizedCategory(categoryID *uint, catNames map[uint]string) (string, string) {
	if categoryID == nil {
		return noCategoryKey, categoryLabel(noCategory)
	}
	if name, ok := catNames[*categoryID]; ok {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return noCategoryKey, categoryLabel(noCategory)
		}
		return strings.ToLower(trimmed), categoryLabel(trimmed)
	}
	return noCategoryKey, categoryLabel(noCategory)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func categoryLabel(name string) string {
	base := strings.TrimSpace(name)
	icon := model.CategoryIcon(base)
	if strings.EqualFold(base, noCategory) {
		icon = "📁"
	}
	return fmt.Sprintf("%s %s", icon, escape(normalizeTitle(base)))
}
