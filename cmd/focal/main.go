package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"focal/internal/bot"
	"focal/internal/cache"
	"focal/internal/calendar"
	"focal/internal/config"
	"focal/internal/httpapi"
	"focal/internal/logger"
	"focal/internal/recurrence"
	"focal/internal/repository"
	"focal/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logg.Fatalw("open database", "error", err)
	}
	logg.Infow("database ready", "mysql", cfg.MySQL())
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	completionRepo := repository.NewCompletionRepository(db)

	engine := recurrence.NewEngine(calendar.New(cfg.Location, cfg.WeekStart))
	agendaCache, closeCache := newAgendaCache(ctx, cfg, logg)
	defer func() {
		if err := closeCache(); err != nil {
			logg.Warnw("close agenda cache", "error", err)
		}
	}()

	categorySvc := service.NewCategoryService(categoryRepo)
	taskSvc := service.NewTaskService(taskRepo, categoryRepo, completionRepo, engine, agendaCache, logg)
	agendaSvc := service.NewAgendaService(taskRepo, categoryRepo, completionRepo, engine, agendaCache, logg)
	reminderSvc := service.NewReminderService(agendaSvc, taskRepo, categoryRepo, engine)
	exportSvc := service.NewExportService(taskRepo, categoryRepo, engine)
	scheduler := service.NewSchedulerService(cfg.Location, logg)
	if mem, ok := agendaCache.(*cache.Memory); ok {
		if _, err := scheduler.ScheduleInterval(cfg.AgendaCacheTTL, func() {
			if n := mem.Prune(); n > 0 {
				logg.Debugw("agenda cache pruned", "entries", n)
			}
		}); err != nil {
			logg.Fatalw("schedule cache pruning", "error", err)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := httpapi.NewHandler(userRepo, taskSvc, agendaSvc, exportSvc, cfg.Location, logg)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handler, logg, cfg.HTTPAPIToken),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.HTTPAddr == "" {
		logg.Info("http api disabled")
	} else {
		go func() {
			logg.Infow("http server listening", "addr", cfg.HTTPAddr, "auth", cfg.HTTPAPIToken != "")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Errorw("http server stopped", "error", err)
				stop()
			}
		}()
	}

	botDone := make(chan struct{})
	if cfg.TelegramDisabled {
		close(botDone)
		logg.Info("telegram bot disabled")
	} else {
		telegramBot, err := bot.New(cfg.TelegramToken, bot.Services{
			Users:      userRepo,
			Categories: categorySvc,
			Tasks:      taskSvc,
			Agenda:     agendaSvc,
			Reminders:  reminderSvc,
			Export:     exportSvc,
			Scheduler:  scheduler,
		}, bot.Options{
			Location:       cfg.Location,
			ReportInterval: cfg.ReportInterval,
			DailyReport:    cfg.DailyReport(),
		}, logg)
		if err != nil {
			logg.Fatalw("create bot", "error", err)
		}

		report := telegramBot.ReportJob(ctx)
		if cfg.DailyReport() {
			err = scheduler.ScheduleReportAt(cfg.ReportHour, cfg.ReportMinute, report)
		} else {
			err = scheduler.ScheduleReportEvery(cfg.ReportInterval, report)
		}
		if err != nil {
			logg.Fatalw("schedule reports", "error", err)
		}
		logg.Infow("reports scheduled", "next", scheduler.NextReport())

		go func() {
			defer close(botDone)
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Errorw("bot stopped", "error", err)
			}
		}()
	}
	scheduler.Start()

	logg.Infow("focal planner started", "timezone", cfg.Location.String(), "weekStart", cfg.WeekStart.String())
	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Errorw("http shutdown", "error", err)
	}
	scheduler.Stop()
	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		logg.Warn("bot did not stop in time")
	}
	logg.Info("shutdown complete")
}

// newAgendaCache prefers Redis when configured and reachable, otherwise keeps agendas in memory.
// The returned func releases the Redis connection pool.
func newAgendaCache(ctx context.Context, cfg config.Config, logg *zap.SugaredLogger) (cache.AgendaCache, func() error) {
	noClose := func() error { return nil }
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.AgendaCacheTTL), noClose
	}
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := cache.Dial(dialCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logg.Warnw("redis unavailable, using in-memory agenda cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemory(cfg.AgendaCacheTTL), noClose
	}
	logg.Infow("agenda cache on redis", "addr", cfg.RedisAddr)
	return cache.NewRedis(client, cfg.AgendaCacheTTL), client.Close
}
