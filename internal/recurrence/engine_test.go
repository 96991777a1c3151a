package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"focal/internal/calendar"
)

// 2024-01-01 is a Monday.
var mondayAnchor = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(calendar.New(time.UTC, time.Monday))
}

func template(rule Rule, anchor time.Time) Template {
	return Template{ID: "tpl-1", AnchorStart: anchor, Duration: time.Hour, Rule: rule}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEngine_Occurs_AnchorDayAndBeforeAnchor(t *testing.T) {
	engine := newTestEngine()

	rules := []Rule{
		Daily(),
		Weekly(),
		Biweekly(),
		Monthly(),
		Yearly(),
		Custom(time.Monday, time.Thursday),
	}

	for _, rule := range rules {
		t.Run(rule.String(), func(t *testing.T) {
			tpl := template(rule, mondayAnchor)
			// Midnight of the anchor day is earlier than the anchor itself but the same day.
			assert.True(t, engine.Occurs(tpl, day(2024, 1, 1)), "anchor day")
			assert.True(t, engine.Occurs(tpl, mondayAnchor), "anchor instant")
			assert.False(t, engine.Occurs(tpl, day(2023, 12, 31)), "day before anchor")
			assert.False(t, engine.Occurs(tpl, time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)), "late evening before anchor")
		})
	}
}

func TestEngine_Occurs_None(t *testing.T) {
	engine := newTestEngine()
	tpl := template(None(), mondayAnchor)

	for i := -3; i < 400; i++ {
		assert.False(t, engine.Occurs(tpl, mondayAnchor.AddDate(0, 0, i)))
	}
}

func TestEngine_Occurs_UnknownRuleFallsBackToNone(t *testing.T) {
	engine := newTestEngine()
	tpl := template(ParseRule("Fortnightly-ish", nil), mondayAnchor)

	assert.True(t, tpl.Rule.IsNone())
	assert.False(t, engine.Occurs(tpl, mondayAnchor))
}

func TestEngine_Occurs_DailyTotality(t *testing.T) {
	engine := newTestEngine()
	tpl := template(Daily(), mondayAnchor)

	for i := 0; i < 30; i++ {
		assert.True(t, engine.Occurs(tpl, day(2024, 1, 1).AddDate(0, 0, i)), "day +%d", i)
	}
}

func TestEngine_Occurs_WeeklyPeriodicity(t *testing.T) {
	engine := newTestEngine()
	tpl := template(Weekly(), mondayAnchor)

	for i := 0; i < 14; i++ {
		d := day(2024, 1, 1).AddDate(0, 0, i)
		assert.Equal(t, d.Weekday() == time.Monday, engine.Occurs(tpl, d), d.Format("Mon 2006-01-02"))
	}
}

func TestEngine_Occurs_BiweeklyParity(t *testing.T) {
	engine := newTestEngine()
	tpl := template(Biweekly(), mondayAnchor)

	assert.True(t, engine.Occurs(tpl, day(2024, 1, 1)))
	assert.False(t, engine.Occurs(tpl, day(2024, 1, 8)))
	assert.True(t, engine.Occurs(tpl, day(2024, 1, 15)))
	assert.False(t, engine.Occurs(tpl, day(2024, 1, 22)))
	assert.True(t, engine.Occurs(tpl, day(2024, 1, 29)))
	assert.False(t, engine.Occurs(tpl, day(2024, 1, 16)), "wrong weekday on an even week")
}

func TestEngine_Occurs_BiweeklyAcrossYearBoundary(t *testing.T) {
	engine := newTestEngine()
	// 2024-12-23 is a Monday in ISO week 52; 2025-01-06 is two weeks later in week 2.
	tpl := template(Biweekly(), time.Date(2024, 12, 23, 18, 0, 0, 0, time.UTC))

	assert.False(t, engine.Occurs(tpl, day(2024, 12, 30)))
	assert.True(t, engine.Occurs(tpl, day(2025, 1, 6)))
	assert.False(t, engine.Occurs(tpl, day(2025, 1, 13)))
	assert.True(t, engine.Occurs(tpl, day(2025, 1, 20)))
}

func TestEngine_Occurs_BiweeklyAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	engine := NewEngine(calendar.New(berlin, time.Monday))
	// Clocks jump forward on 2024-03-31, between the two occurrences.
	tpl := template(Biweekly(), time.Date(2024, 3, 25, 23, 30, 0, 0, berlin))

	assert.True(t, engine.Occurs(tpl, time.Date(2024, 4, 8, 0, 0, 0, 0, berlin)))
	assert.False(t, engine.Occurs(tpl, time.Date(2024, 4, 1, 0, 0, 0, 0, berlin)))
}

func TestEngine_Occurs_CustomSetMembership(t *testing.T) {
	engine := newTestEngine()
	tpl := template(ParseRule("Custom", []int{1, 3, 5}), mondayAnchor)

	want := map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   false,
		time.Wednesday: true,
		time.Thursday:  false,
		time.Friday:    true,
		time.Saturday:  false,
		time.Sunday:    false,
	}
	for i := 0; i < 7; i++ {
		d := day(2024, 1, 8).AddDate(0, 0, i)
		assert.Equal(t, want[d.Weekday()], engine.Occurs(tpl, d), d.Weekday().String())
	}
}

func TestEngine_Occurs_CustomEmptyNeverOccurs(t *testing.T) {
	engine := newTestEngine()
	tpl := template(Custom(), mondayAnchor)

	for i := 0; i < 14; i++ {
		assert.False(t, engine.Occurs(tpl, day(2024, 1, 1).AddDate(0, 0, i)))
	}
}

func TestEngine_Occurs_CustomAnchorDayMustMatchSet(t *testing.T) {
	engine := newTestEngine()
	// Anchored on a Monday but repeating only on Saturdays.
	tpl := template(Custom(time.Saturday), mondayAnchor)

	assert.False(t, engine.Occurs(tpl, day(2024, 1, 1)))
	assert.True(t, engine.Occurs(tpl, day(2024, 1, 6)))
}

func TestEngine_Occurs_Monthly(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name   string
		anchor time.Time
		date   time.Time
		want   bool
	}{
		{"same day next month", time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), day(2024, 2, 15), true},
		{"different day", time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), day(2024, 2, 14), false},
		{"31st skips April", time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), day(2024, 4, 30), false},
		{"31st matches May", time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), day(2024, 5, 31), true},
		{"30th skips February", time.Date(2024, 1, 30, 8, 0, 0, 0, time.UTC), day(2024, 2, 29), false},
		{"29th in leap February", time.Date(2024, 1, 29, 8, 0, 0, 0, time.UTC), day(2024, 2, 29), true},
		{"29th skips plain February", time.Date(2025, 1, 29, 8, 0, 0, 0, time.UTC), day(2025, 2, 28), false},
		{"same day before anchor month", time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), day(2024, 2, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Occurs(template(Monthly(), tt.anchor), tt.date))
		})
	}
}

func TestEngine_Occurs_Yearly(t *testing.T) {
	engine := newTestEngine()
	leap := template(Yearly(), time.Date(2024, 2, 29, 7, 0, 0, 0, time.UTC))

	assert.True(t, engine.Occurs(leap, day(2024, 2, 29)))
	assert.False(t, engine.Occurs(leap, day(2025, 2, 28)))
	assert.False(t, engine.Occurs(leap, day(2025, 3, 1)))
	assert.True(t, engine.Occurs(leap, day(2028, 2, 29)))

	birthday := template(Yearly(), time.Date(2023, 6, 12, 7, 0, 0, 0, time.UTC))
	assert.True(t, engine.Occurs(birthday, day(2026, 6, 12)))
	assert.False(t, engine.Occurs(birthday, day(2026, 7, 12)))
	assert.False(t, engine.Occurs(birthday, day(2022, 6, 12)))
}

func TestEngine_Occurs_UsesCalendarLocation(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*3600)
	engine := NewEngine(calendar.New(tokyo, time.Monday))

	// 20:00 UTC Sunday is 05:00 Monday in UTC+9, so the anchor weekday is Monday there.
	tpl := template(Weekly(), time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC))

	assert.True(t, engine.Occurs(tpl, time.Date(2024, 1, 8, 0, 0, 0, 0, tokyo)))
	assert.False(t, engine.Occurs(tpl, time.Date(2024, 1, 7, 0, 0, 0, 0, tokyo)))
}
