package model

import (
	"strings"
	"time"
)

// User is a Telegram account that owns tasks and receives reports.
type User struct {
	ID           uint  `gorm:"primaryKey"`
	TelegramID   int64 `gorm:"uniqueIndex"`
	FirstName    string
	LastName     string
	Username     string
	ReportsMuted bool `gorm:"not null;default:false"`
	LastReportAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName prefers the full name, then @username, then a neutral greeting.
func (u User) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	switch {
	case full != "":
		return full
	case u.Username != "":
		return "@" + u.Username
	default:
		return "друг"
	}
}
