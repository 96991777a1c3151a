package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the planner API. Everything under /api/v1 requires token when it is set.
func NewRouter(h *Handler, log *zap.SugaredLogger, token string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware(), RequestLogger(log))

	r.GET("/healthz", h.health)

	api := r.Group("/api/v1", BearerAuth(token))
	users := api.Group("/users/:telegramID")
	{
		users.GET("/agenda", h.agendaDay)
		users.GET("/agenda/week", h.agendaWeek)
		users.GET("/tasks", h.listTasks)
		users.POST("/tasks", h.createTask)
		users.GET("/tasks/:taskID/occurrences", h.occurrences)
		users.GET("/tasks/:taskID/next", h.next)
		users.POST("/tasks/:taskID/occurrences/:date/toggle", h.toggle)
		users.GET("/calendar.ics", h.calendar)
	}
	return r
}
