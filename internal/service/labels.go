package service

import (
	"strings"
	"time"

	"focal/internal/recurrence"
)

var kindLabels = map[recurrence.Kind]string{
	recurrence.KindNone:     "Без повтора",
	recurrence.KindDaily:    "Ежедневно",
	recurrence.KindWeekly:   "Еженедельно",
	recurrence.KindBiweekly: "Раз в две недели",
	recurrence.KindMonthly:  "Ежемесячно",
	recurrence.KindYearly:   "Ежегодно",
	recurrence.KindCustom:   "По дням",
}

var weekdayShort = [...]string{
	time.Sunday:    "Вс",
	time.Monday:    "Пн",
	time.Tuesday:   "Вт",
	time.Wednesday: "Ср",
	time.Thursday:  "Чт",
	time.Friday:    "Пт",
	time.Saturday:  "Сб",
}

// RecurrenceLabel is the user-facing name of a rule, e.g. "По дням: Пн, Ср".
func RecurrenceLabel(rule recurrence.Rule) string {
	label := kindLabels[rule.Kind()]
	if rule.Kind() != recurrence.KindCustom {
		return label
	}
	days := rule.Weekdays().Days()
	if len(days) == 0 {
		return label + ": —"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = WeekdayShort(d)
	}
	return label + ": " + strings.Join(names, ", ")
}

func WeekdayShort(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return "?"
	}
	return weekdayShort[d]
}

// KindLabel is the user-facing name of a recurrence kind.
func KindLabel(kind recurrence.Kind) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return kindLabels[recurrence.KindNone]
}
