package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"focal/internal/recurrence"
	"focal/internal/service"
)

const (
	dateLayout      = "2006-01-02"
	shortDateLayout = "02.01.2006"
)

var errBadArgs = errors.New("bad arguments")

var weekdayAliases = map[string]time.Weekday{
	"вс": time.Sunday, "воскресенье": time.Sunday, "sun": time.Sunday,
	"пн": time.Monday, "понедельник": time.Monday, "mon": time.Monday,
	"вт": time.Tuesday, "вторник": time.Tuesday, "tue": time.Tuesday,
	"ср": time.Wednesday, "среда": time.Wednesday, "wed": time.Wednesday,
	"чт": time.Thursday, "четверг": time.Thursday, "thu": time.Thursday,
	"пт": time.Friday, "пятница": time.Friday, "fri": time.Friday,
	"сб": time.Saturday, "суббота": time.Saturday, "sat": time.Saturday,
}

// parseDay reads a calendar day in now's location. It accepts 2025-11-30, 30.11.2025
// and the words "сегодня" and "завтра".
func parseDay(text string, now time.Time) (time.Time, error) {
	value := strings.ToLower(strings.TrimSpace(text))
	loc := now.Location()
	switch value {
	case "сегодня", "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	case "завтра", "tomorrow":
		return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc), nil
	}
	for _, layout := range []string{dateLayout, shortDateLayout} {
		if day, err := time.ParseInLocation(layout, value, loc); err == nil {
			return day, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown date %q", text)
}

// parseClock reads HH:MM.
func parseClock(text string) (int, int, error) {
	at, err := time.Parse("15:04", strings.TrimSpace(text))
	if err != nil {
		return 0, 0, fmt.Errorf("unknown time %q", text)
	}
	return at.Hour(), at.Minute(), nil
}

func parseDuration(text string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || minutes < 1 || minutes > 24*60 {
		return 0, fmt.Errorf("duration must be 1..1440 minutes")
	}
	return minutes, nil
}

func parseEnergy(text string) (int, error) {
	level, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || level < 0 || level > 4 {
		return 0, fmt.Errorf("energy must be 0..4")
	}
	return level, nil
}

// parseKind matches either a keyboard label or a rule name such as "weekly".
func parseKind(text string) (recurrence.Kind, bool) {
	value := strings.TrimSpace(text)
	for _, kind := range recurrence.Kinds() {
		if strings.EqualFold(value, service.KindLabel(kind)) {
			return kind, true
		}
	}
	return recurrence.ParseKind(value)
}

// parseWeekdays reads day names or 0..6 indices separated by spaces or commas.
func parseWeekdays(text string) ([]int, error) {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no weekdays")
	}
	days := make([]int, 0, len(fields))
	for _, field := range fields {
		if day, ok := weekdayAliases[field]; ok {
			days = append(days, int(day))
			continue
		}
		idx, err := strconv.Atoi(field)
		if err != nil || idx < 0 || idx > 6 {
			return nil, fmt.Errorf("unknown weekday %q", field)
		}
		days = append(days, idx)
	}
	return recurrence.NormalizeWeekdays(days), nil
}

func parseTaskID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("%w: task id %q", errBadArgs, raw)
	}
	return uint(value), nil
}

// doneArgs is "/done <id> [date]". A zero day means the default day for the task.
type doneArgs struct {
	taskID uint
	day    time.Time
}

func parseDoneArgs(args string, now time.Time) (doneArgs, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return doneArgs{}, errBadArgs
	}
	id, err := parseTaskID(fields[0])
	if err != nil {
		return doneArgs{}, err
	}
	out := doneArgs{taskID: id}
	if len(fields) == 2 {
		if out.day, err = parseDay(fields[1], now); err != nil {
			return doneArgs{}, fmt.Errorf("%w: %v", errBadArgs, err)
		}
	}
	return out, nil
}

// moveArgs is "/move <id> <date> <HH:MM>".
type moveArgs struct {
	taskID       uint
	day          time.Time
	hour, minute int
}

func parseMoveArgs(args string, now time.Time) (moveArgs, error) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return moveArgs{}, errBadArgs
	}
	id, err := parseTaskID(fields[0])
	if err != nil {
		return moveArgs{}, err
	}
	day, err := parseDay(fields[1], now)
	if err != nil {
		return moveArgs{}, fmt.Errorf("%w: %v", errBadArgs, err)
	}
	hour, minute, err := parseClock(fields[2])
	if err != nil {
		return moveArgs{}, fmt.Errorf("%w: %v", errBadArgs, err)
	}
	return moveArgs{taskID: id, day: day, hour: hour, minute: minute}, nil
}

func toggleData(prefix string, taskID uint, day time.Time) string {
	return fmt.Sprintf("%s%d:%s", prefix, taskID, day.Format(dateLayout))
}

// parseToggleData decodes <prefix><taskID>:<YYYY-MM-DD> in loc.
func parseToggleData(data, prefix string, loc *time.Location) (uint, time.Time, error) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, time.Time{}, errBadArgs
	}
	idPart, dayPart, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, time.Time{}, errBadArgs
	}
	id, err := parseTaskID(idPart)
	if err != nil {
		return 0, time.Time{}, err
	}
	day, err := time.ParseInLocation(dateLayout, dayPart, loc)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %v", errBadArgs, err)
	}
	return id, day, nil
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "пропустить" || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "подтвердить" || value == "да"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "отмена"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "отменить ввод" || value == "отмена"
}
