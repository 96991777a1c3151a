package model

import (
	"strings"
	"time"
)

// Category groups a user's tasks. Names are unique per user.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_user_category_name,unique"`
	Name      string `gorm:"size:128;index:idx_user_category_name,unique"`
	Icon      string `gorm:"size:16"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Tasks     []Task `gorm:"foreignKey:CategoryID"`
}

var categoryIcons = map[string]string{
	"учеба":    "🎓",
	"учёба":    "🎓",
	"работа":   "💼",
	"покупки":  "🛒",
	"здоровье": "🩺",
	"спорт":    "🏃",
	"личное":   "🧩",
	"дом":      "🏠",
}

// CategoryIcon picks an emoji for well-known category names.
func CategoryIcon(name string) string {
	if icon, ok := categoryIcons[strings.ToLower(strings.TrimSpace(name))]; ok {
		return icon
	}
	return "🏷️"
}
