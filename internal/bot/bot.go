package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"focal/internal/model"
	"focal/internal/repository"
	"focal/internal/service"
)

const reportTimeout = 30 * time.Second

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageCategory
	stageDate
	stageTime
	stageDuration
	stageEnergy
	stageRecurrence
	stageWeekdays
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
	day   time.Time
}

type confirmationRequest struct {
	taskID uint
}

// Services groups everything the bot talks to.
type Services struct {
	Users      *repository.UserRepository
	Categories *service.CategoryService
	Tasks      *service.TaskService
	Agenda     *service.AgendaService
	Reminders  *service.ReminderService
	Export     *service.ExportService
	Scheduler  *service.SchedulerService
}

// Options carries runtime settings the bot reads or changes.
type Options struct {
	Location       *time.Location
	ReportInterval time.Duration
	DailyReport    bool
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api         *tgbotapi.BotAPI
	userRepo    *repository.UserRepository
	categorySvc *service.CategoryService
	taskSvc     *service.TaskService
	agendaSvc   *service.AgendaService
	reminderSvc *service.ReminderService
	exportSvc   *service.ExportService
	scheduler   *service.SchedulerService
	log         *zap.SugaredLogger
	loc         *time.Location
	now         func() time.Time

	mu             sync.Mutex
	reportInterval time.Duration
	dailyReport    bool
	conversations  map[int64]*conversationState
	confirmations  map[int64]confirmationRequest
}

func New(token string, svc Services, opts Options, log *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Infow("bot authorized", "account", api.Self.UserName)

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:            api,
		userRepo:       svc.Users,
		categorySvc:    svc.Categories,
		taskSvc:        svc.Tasks,
		agendaSvc:      svc.Agenda,
		reminderSvc:    svc.Reminders,
		exportSvc:      svc.Export,
		scheduler:      svc.Scheduler,
		log:            log,
		loc:            loc,
		now:            time.Now,
		reportInterval: opts.ReportInterval,
		dailyReport:    opts.DailyReport,
		conversations:  make(map[int64]*conversationState),
		confirmations:  make(map[int64]confirmationRequest),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Errorw("handle callback", "error", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Errorw("handle message", "error", err)
			}
		}
	}

	return nil
}

// ReportJob adapts SendDailyReports to the scheduler. Each run is bounded by reportTimeout.
func (b *Bot) ReportJob(ctx context.Context) func() {
	return func() {
		jobCtx, cancel := context.WithTimeout(ctx, reportTimeout)
		defer cancel()
		if err := b.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			b.log.Errorw("send daily reports", "error", err)
		}
	}
}

// SendDailyReports sends a summary to every user who has not muted reports.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.userRepo.ListReportable(ctx)
	if err != nil {
		return err
	}
	now := b.today()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminderSvc.DailySummary(ctx, user, now)
		if err != nil {
			b.log.Warnw("build summary", "telegramID", user.TelegramID, "error", err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			b.log.Warnw("send summary", "telegramID", user.TelegramID, "error", err)
			continue
		}
		if err := b.userRepo.MarkReported(ctx, user.ID, b.now()); err != nil {
			b.log.Warnw("mark reported", "userID", user.ID, "error", err)
		}
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог отменён. Я здесь, чтобы начать заново.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.Infow("command", "from", msg.From.ID, "command", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		b.log.Debugw("conversation step", "stage", state.stage, "from", msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /newtask, чтобы добавить задачу, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "today":
		return b.handleToday(ctx, msg)
	case "week":
		return b.handleWeek(ctx, msg)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "next":
		return b.handleNext(ctx, msg)
	case "move":
		return b.handleMove(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "interval":
		return b.handleInterval(ctx, msg)
	case "reports":
		return b.handleReports(ctx, msg)
	case "export":
		return b.handleExport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(ctx, msg)
	case strings.ToLower(menuLabelToday):
		return true, b.handleToday(ctx, msg)
	case strings.ToLower(menuLabelWeek):
		return true, b.handleWeek(ctx, msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, msg)
	case strings.ToLower(menuLabelCategories):
		return true, b.handleCategories(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) today() time.Time {
	return b.now().In(b.loc)
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Главное меню")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
