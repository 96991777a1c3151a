package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"focal/internal/recurrence"
	"focal/internal/service"
)

const defaultEnergy = 2

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.log.Infow("start new task conversation", "user", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новую задачу.\n<b>Шаг 1:</b> как её назвать?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым.", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Добавь короткое описание (или нажми «Пропустить»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Выбери категорию или отправь свою (можно «Пропустить»).", categoryKeyboard())
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = text
		}
		state.stage = stageDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📅 На какой день? Формат <code>2025-11-30</code> или <code>30.11.2025</code>. Для повторяющейся задачи это первый день.", dateKeyboard())
	case stageDate:
		day, err := parseDay(text, b.today())
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2025-11-30</code>.", dateKeyboard())
		}
		state.day = day
		state.stage = stageTime
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ Во сколько начать? Формат <code>09:30</code>.", cancelKeyboard())
	case stageTime:
		hour, minute, err := parseClock(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Время нужно в формате <code>09:30</code>.", cancelKeyboard())
		}
		state.input.Start = time.Date(state.day.Year(), state.day.Month(), state.day.Day(), hour, minute, 0, 0, b.loc)
		state.stage = stageDuration
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏳ Сколько минут займёт задача?", durationKeyboard())
	case stageDuration:
		minutes, err := parseDuration(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Длительность — число минут от 1 до 1440.", durationKeyboard())
		}
		state.input.DurationMinutes = minutes
		state.stage = stageEnergy
		return b.sendWithReplyMarkup(msg.Chat.ID, "⚡️ Сколько сил потребует задача? 0 — совсем легко, 4 — очень тяжело.", energyKeyboard())
	case stageEnergy:
		state.input.EnergyLevel = defaultEnergy
		if !isSkipInput(text) {
			level, err := parseEnergy(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери число от 0 до 4.", energyKeyboard())
			}
			state.input.EnergyLevel = level
		}
		state.stage = stageRecurrence
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 Как часто повторять?", recurrenceKeyboard())
	case stageRecurrence:
		kind, ok := parseKind(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери вариант на клавиатуре.", recurrenceKeyboard())
		}
		state.input.Recurrence = kind.String()
		if kind == recurrence.KindCustom {
			state.stage = stageWeekdays
			return b.sendWithReplyMarkup(msg.Chat.ID, "📆 По каким дням? Например: <code>пн ср пт</code>.", cancelKeyboard())
		}
		return b.finishTaskCreation(ctx, msg, state.input)
	case stageWeekdays:
		days, err := parseWeekdays(text)
		if err != nil || len(days) == 0 {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Не понял дни. Перечисли через пробел: <code>пн ср пт</code>.", cancelKeyboard())
		}
		state.input.RepeatDays = days
		return b.finishTaskCreation(ctx, msg, state.input)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, msg *tgbotapi.Message, input service.TaskInput) error {
	b.clearConversation(msg.From.ID)

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.CreateTask(ctx, user, input)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	b.log.Infow("task created", "taskID", task.ID, "userID", user.ID, "recurrence", task.Recurrence)

	out := tgbotapi.NewMessage(msg.Chat.ID, formatCreated(task, b.loc))
	out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	out.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(out); err != nil {
		return err
	}
	return b.sendTaskList(ctx, msg.Chat.ID, user)
}
