package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"focal/internal/model"
	"focal/internal/recurrence"
	"focal/internal/repository"
	"focal/internal/service"
)

const dateLayout = "2006-01-02"

// UserFinder resolves the Telegram user a request acts for.
type UserFinder interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

// TaskService is the part of the task service the API exposes.
type TaskService interface {
	CreateTask(ctx context.Context, user *model.User, input service.TaskInput) (*model.Task, error)
	ListTasks(ctx context.Context, user *model.User) ([]model.Task, error)
	ToggleOccurrence(ctx context.Context, user *model.User, taskID uint, day time.Time) (recurrence.Occurrence, error)
	NextOccurrence(ctx context.Context, user *model.User, taskID uint, after time.Time) (mo.Option[time.Time], error)
	Occurrences(ctx context.Context, user *model.User, taskID uint, from, to time.Time) ([]recurrence.Occurrence, error)
}

type AgendaService interface {
	Day(ctx context.Context, user *model.User, day time.Time) (model.Agenda, error)
	Week(ctx context.Context, user *model.User, day time.Time) ([]model.Agenda, error)
}

type ExportService interface {
	Calendar(ctx context.Context, user *model.User) ([]byte, error)
}

// Handler serves the planner API for one calendar location.
type Handler struct {
	users   UserFinder
	tasks   TaskService
	agendas AgendaService
	export  ExportService
	loc     *time.Location
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewHandler(users UserFinder, tasks TaskService, agendas AgendaService, export ExportService, loc *time.Location, log *zap.SugaredLogger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{users: users, tasks: tasks, agendas: agendas, export: export, loc: loc, log: log, now: time.Now}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) createTask(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	task, err := h.tasks.CreateTask(c.Request.Context(), user, service.TaskInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Icon:            req.Icon,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		Recurrence:      req.Recurrence,
		RepeatDays:      req.RepeatDays,
		EnergyLevel:     req.EnergyLevel,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(*task))
}

func (h *Handler) listTasks(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListTasks(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

func (h *Handler) agendaDay(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	day, ok := h.dateQuery(c, "date")
	if !ok {
		return
	}
	agenda, err := h.agendas.Day(c.Request.Context(), user, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, agenda)
}

func (h *Handler) agendaWeek(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	day, ok := h.dateQuery(c, "date")
	if !ok {
		return
	}
	days, err := h.agendas.Week(c.Request.Context(), user, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, weekResponse{Days: days, Progress: model.WeekProgress(days)})
}

func (h *Handler) occurrences(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}
	from, ok := h.dateQuery(c, "from")
	if !ok {
		return
	}
	to := from.AddDate(0, 0, 30)
	if raw := c.Query("to"); raw != "" {
		if to, ok = h.parseDate(c, "to", raw); !ok {
			return
		}
	}
	items, err := h.tasks.Occurrences(c.Request.Context(), user, taskID, from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []recurrence.Occurrence{}
	}
	c.JSON(http.StatusOK, occurrencesResponse{Occurrences: items})
}

func (h *Handler) next(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}
	after := h.now().In(h.loc)
	if raw := c.Query("after"); raw != "" {
		if after, ok = h.parseDate(c, "after", raw); !ok {
			return
		}
	}
	next, err := h.tasks.NextOccurrence(c.Request.Context(), user, taskID, after)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := nextResponse{}
	if day, found := next.Get(); found {
		resp = nextResponse{Found: true, Date: day.In(h.loc).Format(dateLayout)}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) toggle(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}
	day, ok := h.parseDate(c, "date", c.Param("date"))
	if !ok {
		return
	}
	occ, err := h.tasks.ToggleOccurrence(c.Request.Context(), user, taskID, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

func (h *Handler) calendar(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	data, err := h.export.Calendar(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="focal.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (h *Handler) user(c *gin.Context) (*model.User, bool) {
	telegramID, err := strconv.ParseInt(c.Param("telegramID"), 10, 64)
	if err != nil || telegramID <= 0 {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return nil, false
	}
	user, err := h.users.FindByTelegramID(c.Request.Context(), telegramID)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return user, true
}

// dateQuery reads an optional YYYY-MM-DD query value, defaulting to today.
func (h *Handler) dateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return h.now().In(h.loc), true
	}
	return h.parseDate(c, name, raw)
}

func (h *Handler) parseDate(c *gin.Context, name, raw string) (time.Time, bool) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), h.loc)
	if err != nil {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("%s must be YYYY-MM-DD", name))
		return time.Time{}, false
	}
	return day, true
}

func taskIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("taskID"), 10, 64)
	if err != nil || id == 0 {
		writeError(c, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoOccurrence):
		writeError(c, http.StatusConflict, err.Error())
	default:
		h.log.Errorw("request failed", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
