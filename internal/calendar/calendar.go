package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Calendar is the day arithmetic the recurrence engine relies on.
// Every method interprets its arguments in the calendar's location.
type Calendar interface {
	Location() *time.Location
	StartOfDay(t time.Time) time.Time
	AddDays(t time.Time, days int) time.Time
	Weekday(t time.Time) time.Weekday
	Day(t time.Time) int
	Month(t time.Time) time.Month
	// WeeksBetween returns the whole weeks elapsed from the day of a to the day of b,
	// truncated toward zero.
	WeeksBetween(a, b time.Time) int
	// DaysBetween returns the civil days from the day of a to the day of b.
	DaysBetween(a, b time.Time) int
	SameDay(a, b time.Time) bool
	// At returns the wall clock hour:minute on the day of t.
	At(t time.Time, hour, minute int) time.Time
	StartOfWeek(t time.Time) time.Time
}

// Gregorian is a Calendar bound to a fixed location and week start.
type Gregorian struct {
	loc       *time.Location
	weekStart time.Weekday
}

func New(loc *time.Location, weekStart time.Weekday) *Gregorian {
	if loc == nil {
		loc = time.Local
	}
	return &Gregorian{loc: loc, weekStart: weekStart}
}

func (g *Gregorian) Location() *time.Location {
	return g.loc
}

func (g *Gregorian) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(g.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, g.loc)
}

func (g *Gregorian) AddDays(t time.Time, days int) time.Time {
	return t.In(g.loc).AddDate(0, 0, days)
}

func (g *Gregorian) Weekday(t time.Time) time.Weekday {
	return t.In(g.loc).Weekday()
}

func (g *Gregorian) Day(t time.Time) int {
	return t.In(g.loc).Day()
}

func (g *Gregorian) Month(t time.Time) time.Month {
	return t.In(g.loc).Month()
}

func (g *Gregorian) WeeksBetween(a, b time.Time) int {
	return g.DaysBetween(a, b) / 7
}

func (g *Gregorian) DaysBetween(a, b time.Time) int {
	return civilDay(b.In(g.loc)) - civilDay(a.In(g.loc))
}

func (g *Gregorian) SameDay(a, b time.Time) bool {
	return civilDay(a.In(g.loc)) == civilDay(b.In(g.loc))
}

func (g *Gregorian) At(t time.Time, hour, minute int) time.Time {
	y, m, d := t.In(g.loc).Date()
	return time.Date(y, m, d, hour, minute, 0, 0, g.loc)
}

func (g *Gregorian) StartOfWeek(t time.Time) time.Time {
	day := g.StartOfDay(t)
	offset := (int(day.Weekday()) - int(g.weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// civilDay numbers the wall clock date independently of offsets, so a DST shift
// never turns one calendar day into 23 or 25 hours worth of "days".
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// LoadLocation resolves a configured zone name; empty and "Local" mean the host zone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	return loc, nil
}

// ParseWeekday accepts English weekday names or their three-letter prefixes.
func ParseWeekday(name string) (time.Weekday, error) {
	value := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if value == full || value == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}
