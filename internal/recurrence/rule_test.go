package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		weekdays []int
		kind     Kind
		days     []int
	}{
		{"daily", "Daily", nil, KindDaily, []int{}},
		{"case insensitive", "biWEEKLY", nil, KindBiweekly, []int{}},
		{"surrounding spaces", "  Monthly ", nil, KindMonthly, []int{}},
		{"empty falls back", "", nil, KindNone, []int{}},
		{"unknown falls back", "Hourly", []int{1}, KindNone, []int{}},
		{"weekdays ignored outside custom", "Weekly", []int{1, 2}, KindWeekly, []int{}},
		{"custom", "Custom", []int{5, 1, 3, 1}, KindCustom, []int{1, 3, 5}},
		{"custom drops invalid", "Custom", []int{-1, 0, 7, 6}, KindCustom, []int{0, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := ParseRule(tt.input, tt.weekdays)
			assert.Equal(t, tt.kind, rule.Kind())
			assert.Equal(t, tt.days, rule.Weekdays().Indices())
		})
	}
}

func TestKind_String(t *testing.T) {
	for _, k := range Kinds() {
		parsed, ok := ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	assert.Equal(t, "None", Kind(42).String())
}

func TestWeekdaySet(t *testing.T) {
	set := NewWeekdaySet(time.Saturday, time.Sunday, time.Weekday(9))

	assert.True(t, set.Has(time.Sunday))
	assert.True(t, set.Has(time.Saturday))
	assert.False(t, set.Has(time.Monday))
	assert.False(t, set.Has(time.Weekday(9)))
	assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, set.Days())
	assert.True(t, NewWeekdaySet().Empty())
}

func TestRule_ZeroValueIsNone(t *testing.T) {
	var rule Rule
	assert.True(t, rule.IsNone())
	assert.False(t, Template{Rule: rule}.IsRecurring())
}

func TestNormalizeWeekdays(t *testing.T) {
	assert.Equal(t, []int{0, 2, 6}, NormalizeWeekdays([]int{6, 2, 2, 0, 9, -3}))
	assert.Equal(t, []int{}, NormalizeWeekdays(nil))
}
