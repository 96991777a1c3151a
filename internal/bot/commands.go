package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"focal/internal/model"
	"focal/internal/service"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	name := user.DisplayName()

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я планировщик дня: задачи, повторы и отметки по дням.</b>\n\nКоманды:\n"+
			"• /newtask — добавить новую задачу\n"+
			"• /today — план на сегодня\n"+
			"• /week — план на неделю\n"+
			"• /tasks — все задачи и их повторы\n"+
			"• /done &lt;id&gt; [дата] — отметить выполнение\n"+
			"• /help — подсказки\n"+
			"• /cancel — отменить текущий ввод",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"• /newtask — добавить задачу пошагово\n" +
		"• /today — план на сегодня с кнопками выполнения\n" +
		"• /week — обзор недели\n" +
		"• /tasks — все задачи, их повторы и ближайшие даты\n" +
		"• /done &lt;id&gt; [2025-11-30] — отметить или снять отметку за день\n" +
		"• /next &lt;id&gt; — когда задача повторится\n" +
		"• /move &lt;id&gt; &lt;2025-11-30&gt; &lt;09:30&gt; — перенести задачу\n" +
		"• /delete &lt;id&gt; — удалить задачу со всеми отметками\n" +
		"• /categories — категории и сколько в них задач\n" +
		"• /interval &lt;часы&gt; — как часто присылать отчёт\n" +
		"• /report — прислать отчёт сейчас\n" +
		"• /reports on|off — включить или выключить отчёты по расписанию\n" +
		"• /export — выгрузить задачи в календарь (.ics)\n" +
		"• /cancel — отменить текущий ввод"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminderSvc.DailySummary(ctx, *user, b.today())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сформировать отчёт: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	agenda, err := b.agendaSvc.Day(ctx, user, b.today())
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendAgenda(msg.Chat.ID, agenda)
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	days, err := b.agendaSvc.Week(ctx, user, b.today())
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendText(msg.Chat.ID, formatWeek(days, b.loc))
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendTaskList(ctx, msg.Chat.ID, user)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, user *model.User) error {
	tasks, err := b.taskSvc.ListTasks(ctx, user)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось получить задачи: %s", escape(err.Error())))
	}

	categories, _ := b.categorySvc.List(ctx, user)
	catNames := make(map[uint]string)
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	type categoryGroup struct {
		Name  string
		Tasks []model.Task
	}

	groups := make(map[string]*categoryGroup)
	order := make([]string, 0, len(tasks))
	for _, task := range tasks {
		key, display := normalizedCategory(task.CategoryID, catNames)
		group, ok := groups[key]
		if !ok {
			group = &categoryGroup{Name: display}
			groups[key] = group
			order = append(order, key)
		}
		group.Tasks = append(group.Tasks, task)
	}

	if len(groups) == 0 {
		return b.sendText(chatID, "У тебя пока нет задач. Добавь новую через /newtask.")
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i] == noCategoryKey {
			return false
		}
		if order[j] == noCategoryKey {
			return true
		}
		return strings.Compare(groups[order[i]].Name, groups[order[j]].Name) < 0
	})

	// Next occurrences are searched from yesterday so today's instance counts.
	after := b.today().AddDate(0, 0, -1)

	var builder strings.Builder
	builder.WriteString("📋 <b>Задачи</b>\n")
	builder.WriteString("Кнопки ниже отмечают разовые задачи или удаляют задачу целиком.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, key := range order {
		section := groups[key]
		sort.SliceStable(section.Tasks, func(i, j int) bool {
			a, c := section.Tasks[i], section.Tasks[j]
			if a.IsRecurring() != c.IsRecurring() {
				return !a.IsRecurring()
			}
			if !a.StartTime.Equal(c.StartTime) {
				return a.StartTime.Before(c.StartTime)
			}
			return a.ID < c.ID
		})

		builder.WriteString(fmt.Sprintf("<b>%s</b>\n", section.Name))
		for _, task := range section.Tasks {
			var next time.Time
			if task.IsRecurring() {
				if opt, err := b.taskSvc.NextOccurrence(ctx, user, task.ID, after); err == nil {
					next = opt.OrEmpty()
				}
			}
			builder.WriteString(formatTemplate(task, next, b.loc))

			var row []tgbotapi.InlineKeyboardButton
			if !task.IsRecurring() {
				status := "⬜️"
				if task.IsCompleted {
					status = iconDone
				}
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%s #%d · %s", status, task.ID, shortTitle(task.Title, 20)),
					toggleData(cbMarkPrefix, task.ID, task.StartTime.In(b.loc)),
				))
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 #%d", task.ID), fmt.Sprintf("%s%d", cbDeletePrefix, task.ID),
			))
			buttons = append(buttons, row)
		}
		builder.WriteByte('\n')
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	args, err := parseDoneArgs(msg.CommandArguments(), b.today())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Формат: /done 12 или /done 12 2025-11-30")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	task, err := b.taskSvc.GetTask(ctx, user, args.taskID)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}

	day := args.day
	if day.IsZero() {
		if task.IsRecurring() {
			day = b.today()
		} else {
			day = task.StartTime.In(b.loc)
		}
	}

	occ, err := b.taskSvc.ToggleOccurrence(ctx, user, task.ID, day)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendText(msg.Chat.ID, formatToggled(task.Title, occ, b.loc))
}

func (b *Bot) handleNext(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseTaskID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи ID задачи: /next 12")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if !task.IsRecurring() {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("«%s» не повторяется: запланирована на %s.",
			escape(normalizeTitle(task.Title)), task.StartTime.In(b.loc).Format("02.01.2006 15:04")))
	}

	next, err := b.taskSvc.NextOccurrence(ctx, user, task.ID, b.today())
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	day, ok := next.Get()
	if !ok {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("«%s» в ближайший год не повторяется.", escape(normalizeTitle(task.Title))))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📆 «%s» в следующий раз: %s, %s.",
		escape(normalizeTitle(task.Title)), weekdayLong[day.In(b.loc).Weekday()], day.In(b.loc).Format(shortDateLayout)))
}

func (b *Bot) handleMove(ctx context.Context, msg *tgbotapi.Message) error {
	args, err := parseMoveArgs(msg.CommandArguments(), b.today())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Формат: /move 12 2025-11-30 09:30")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	task, err := b.taskSvc.MoveTask(ctx, user, args.taskID, args.day, args.hour, args.minute)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("➡️ «%s» теперь начинается %s.",
		escape(normalizeTitle(task.Title)), task.StartTime.In(b.loc).Format("02.01.2006 15:04")))
}

// handleDelete asks to confirm removing a task together with its completion history.
func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseTaskID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи ID задачи: /delete 12")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From, taskID)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}

	text := fmt.Sprintf("Удалить задачу «%s» (#%d)?", escape(normalizeTitle(task.Title)), task.ID)
	if task.IsRecurring() {
		text += "\nВсе отметки о выполнении тоже будут удалены."
	}
	b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, msg.From, req.taskID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Подтверди или отмени удаление задачи.", confirmKeyboard())
	}
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		return b.sendTextWithRemove(chatID, errorText(err))
	}
	if err := b.taskSvc.DeleteTask(ctx, user, taskID); err != nil {
		return b.sendTextWithRemove(chatID, errorText(err))
	}

	b.log.Infow("task deleted", "taskID", task.ID, "userID", user.ID)
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Задача «%s» удалена.", escape(normalizeTitle(task.Title)))); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, user)
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	overview, err := b.categorySvc.Overview(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось получить категории: %s", escape(err.Error())))
	}
	if len(overview) == 0 {
		return b.sendText(msg.Chat.ID, "Категории пока пусты. Добавь их при создании задачи.")
	}
	return b.sendText(msg.Chat.ID, formatCategories(overview))
}

func (b *Bot) handleReports(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	var muted bool
	switch strings.ToLower(strings.TrimSpace(msg.CommandArguments())) {
	case "on", "вкл":
		muted = false
	case "off", "выкл":
		muted = true
	case "":
		state := "включены"
		if user.ReportsMuted {
			state = "выключены"
		}
		last := "ещё не отправлялся"
		if user.LastReportAt != nil {
			last = user.LastReportAt.In(b.loc).Format("02.01.2006 15:04")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Отчёты по расписанию %s. Последний отчёт: %s.\nИзменить: /reports on или /reports off", state, last))
	default:
		return b.sendText(msg.Chat.ID, "Формат: /reports on или /reports off")
	}

	if err := b.userRepo.SetReportsMuted(ctx, user.ID, muted); err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if muted {
		return b.sendText(msg.Chat.ID, "🔕 Отчёты по расписанию выключены. /report по-прежнему работает.")
	}
	return b.sendText(msg.Chat.ID, "🔔 Отчёты по расписанию включены.")
}

func (b *Bot) handleInterval(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.mu.Lock()
		interval, daily := b.reportInterval, b.dailyReport
		b.mu.Unlock()
		current := fmt.Sprintf("каждые %d ч.", int(interval.Hours()))
		if daily {
			current = "раз в день по расписанию"
		}
		if next := b.scheduler.NextReport(); !next.IsZero() {
			current += fmt.Sprintf(", следующий в %s", next.In(b.loc).Format("02.01 15:04"))
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Отчёты приходят %s. Чтобы изменить, укажи число часов: /interval 4", current))
	}

	hours, err := strconv.Atoi(args)
	if err != nil || hours <= 0 || hours > 24*7 {
		return b.sendText(msg.Chat.ID, "Интервал должен быть положительным числом часов, например /interval 6")
	}
	interval := time.Duration(hours) * time.Hour
	if err := b.scheduler.ScheduleReportEvery(interval, b.ReportJob(ctx)); err != nil {
		b.log.Errorw("reschedule report", "error", err)
		return b.sendText(msg.Chat.ID, "Не удалось изменить расписание отчётов.")
	}

	b.mu.Lock()
	b.reportInterval = interval
	b.dailyReport = false
	b.mu.Unlock()
	b.log.Infow("report interval changed", "hours", hours, "by", msg.From.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("Интервал отчётов обновлён: каждые %d ч.", hours))
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	data, err := b.exportSvc.Calendar(ctx, user)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendText(msg.Chat.ID, "Пока нечего выгружать. Добавь задачи через /newtask.")
		}
		return b.sendText(msg.Chat.ID, errorText(err))
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: "focal.ics", Bytes: data})
	doc.Caption = "🗓 Импортируй файл в календарь, повторы сохранятся."
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		b.log.Infow("callback toggle", "user", cb.From.ID, "data", data)
		return b.toggleFromCallback(ctx, cb, cbTogglePrefix)
	case strings.HasPrefix(data, cbMarkPrefix):
		b.log.Infow("callback mark", "user", cb.From.ID, "data", data)
		return b.toggleFromCallback(ctx, cb, cbMarkPrefix)
	case strings.HasPrefix(data, cbDeletePrefix):
		b.ack(cb, "")
		taskID, err := parseTaskID(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			return nil
		}
		return b.askDeleteConfirmation(ctx, cb.Message.Chat.ID, cb.From, taskID)
	default:
		b.ack(cb, "")
		return nil
	}
}

// toggleFromCallback flips an occurrence. Agenda messages are redrawn in place,
// task listings get a fresh agenda of the toggled day.
func (b *Bot) toggleFromCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, prefix string) error {
	taskID, day, err := parseToggleData(cb.Data, prefix, b.loc)
	if err != nil {
		b.ack(cb, "")
		return nil
	}
	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		b.ack(cb, "")
		return err
	}

	occ, err := b.taskSvc.ToggleOccurrence(ctx, user, taskID, day)
	if err != nil {
		b.ack(cb, errorText(err))
		return nil
	}
	if occ.IsCompleted {
		b.ack(cb, "✅ Выполнено")
	} else {
		b.ack(cb, "↩️ Отметка снята")
	}

	agenda, err := b.agendaSvc.Day(ctx, user, day)
	if err != nil {
		return err
	}
	if prefix != cbTogglePrefix {
		return b.sendAgenda(cb.Message.Chat.ID, agenda)
	}
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, formatAgenda(agenda, b.loc, b.dayTitle(day)))
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = agendaKeyboard(agenda)
	if _, err := b.api.Send(edit); err != nil {
		b.log.Debugw("edit agenda message", "error", err)
		return b.sendAgenda(cb.Message.Chat.ID, agenda)
	}
	return nil
}

func (b *Bot) sendAgenda(chatID int64, agenda model.Agenda) error {
	msg := tgbotapi.NewMessage(chatID, formatAgenda(agenda, b.loc, b.dayTitle(agenda.Date)))
	msg.ParseMode = tgbotapi.ModeHTML
	if markup := agendaKeyboard(agenda); markup != nil {
		msg.ReplyMarkup = *markup
	} else {
		msg.ReplyMarkup = mainMenuKeyboard()
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) dayTitle(day time.Time) string {
	today := b.today()
	d := day.In(b.loc)
	if d.Year() == today.Year() && d.YearDay() == today.YearDay() {
		return "Сегодня"
	}
	return weekdayLong[d.Weekday()]
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Warnw("callback ack", "error", err)
	}
}

// errorText maps service errors onto user-facing replies.
func errorText(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "Задача не найдена."
	case errors.Is(err, service.ErrNoOccurrence):
		return "В этот день задача не запланирована."
	case errors.Is(err, service.ErrInvalidInput):
		return fmt.Sprintf("Некорректные данные: %s", escape(strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")))
	default:
		return fmt.Sprintf("Ошибка: %s", escape(err.Error()))
	}
}
