package httpapi

import (
	"time"

	"focal/internal/model"
	"focal/internal/recurrence"
)

type createTaskRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Icon            string    `json:"icon"`
	Start           time.Time `json:"start" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"required"`
	Recurrence      string    `json:"recurrence"`
	RepeatDays      []int     `json:"repeatDays"`
	EnergyLevel     int       `json:"energyLevel"`
}

type taskResponse struct {
	ID              uint      `json:"id"`
	UID             string    `json:"uid"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Icon            string    `json:"icon,omitempty"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"durationMinutes"`
	Recurrence      string    `json:"recurrence"`
	RepeatDays      []int     `json:"repeatDays,omitempty"`
	EnergyLevel     int       `json:"energyLevel"`
	IsCompleted     bool      `json:"isCompleted"`
}

func newTaskResponse(task model.Task) taskResponse {
	rule := task.Rule()
	return taskResponse{
		ID:              task.ID,
		UID:             task.UID,
		Title:           task.Title,
		Description:     task.Description,
		Icon:            task.Icon,
		Start:           task.StartTime,
		DurationMinutes: task.DurationMinutes,
		Recurrence:      rule.String(),
		RepeatDays:      rule.Weekdays().Indices(),
		EnergyLevel:     task.EnergyLevel,
		IsCompleted:     task.IsCompleted,
	}
}

type weekResponse struct {
	Days     []model.Agenda `json:"days"`
	Progress float64        `json:"progress"`
}

type occurrencesResponse struct {
	Occurrences []recurrence.Occurrence `json:"occurrences"`
}

type nextResponse struct {
	Found bool   `json:"found"`
	Date  string `json:"date,omitempty"`
}
