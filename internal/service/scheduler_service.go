package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SchedulerService wraps cron-based jobs and keeps one replaceable report entry.
type SchedulerService struct {
	cron *cron.Cron

	mu     sync.Mutex
	report cron.EntryID
}

func NewSchedulerService(loc *time.Location, log *zap.SugaredLogger) *SchedulerService {
	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Desugar()))
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	spec, err := intervalSpec(interval)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleReportEvery installs the report job on an interval, replacing the previous one.
func (s *SchedulerService) ScheduleReportEvery(interval time.Duration, job func()) error {
	spec, err := intervalSpec(interval)
	if err != nil {
		return err
	}
	return s.replaceReport(spec, job)
}

// ScheduleReportAt installs the report job daily at hour:minute, replacing the previous one.
func (s *SchedulerService) ScheduleReportAt(hour, minute int, job func()) error {
	spec, err := dailySpec(hour, minute)
	if err != nil {
		return err
	}
	return s.replaceReport(spec, job)
}

func (s *SchedulerService) replaceReport(spec string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("schedule report %q: %w", spec, err)
	}
	if s.report != 0 {
		s.cron.Remove(s.report)
	}
	s.report = id
	return nil
}

// NextReport is the next time the report job fires, zero if none is scheduled.
func (s *SchedulerService) NextReport() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.report).Next
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func intervalSpec(interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds), nil
}

// dailySpec uses the six-field format: second minute hour dom month dow.
func dailySpec(hour, minute int) (string, error) {
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %d", hour)
	}
	if minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %d", minute)
	}
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
