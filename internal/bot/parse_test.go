package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focal/internal/recurrence"
)

var moscow = time.FixedZone("MSK", 3*60*60)

func TestParseDay(t *testing.T) {
	now := time.Date(2024, 1, 31, 23, 30, 0, 0, moscow)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-02-10", time.Date(2024, 2, 10, 0, 0, 0, 0, moscow)},
		{"10.02.2024", time.Date(2024, 2, 10, 0, 0, 0, 0, moscow)},
		{"Сегодня", time.Date(2024, 1, 31, 0, 0, 0, 0, moscow)},
		{"завтра", time.Date(2024, 2, 1, 0, 0, 0, 0, moscow)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDay(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := parseDay("31/01/2024", now)
	assert.Error(t, err)
}

func TestParseClockDurationEnergy(t *testing.T) {
	h, m, err := parseClock(" 07:05 ")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 5, m)

	_, _, err = parseClock("25:00")
	assert.Error(t, err)

	minutes, err := parseDuration("90")
	require.NoError(t, err)
	assert.Equal(t, 90, minutes)
	for _, bad := range []string{"0", "1441", "час"} {
		_, err := parseDuration(bad)
		assert.Error(t, err, bad)
	}

	level, err := parseEnergy("4")
	require.NoError(t, err)
	assert.Equal(t, 4, level)
	_, err = parseEnergy("5")
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	kind, ok := parseKind("Раз в две недели")
	require.True(t, ok)
	assert.Equal(t, recurrence.KindBiweekly, kind)

	kind, ok = parseKind("по дням")
	require.True(t, ok)
	assert.Equal(t, recurrence.KindCustom, kind)

	kind, ok = parseKind("monthly")
	require.True(t, ok)
	assert.Equal(t, recurrence.KindMonthly, kind)

	_, ok = parseKind("иногда")
	assert.False(t, ok)
}

func TestParseWeekdays(t *testing.T) {
	days, err := parseWeekdays("пт, Пн ср пн")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, days)

	days, err = parseWeekdays("0;6")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 6}, days)

	_, err = parseWeekdays("пн xx")
	assert.Error(t, err)
	_, err = parseWeekdays("7")
	assert.Error(t, err)
	_, err = parseWeekdays("  ")
	assert.Error(t, err)
}

func TestParseDoneArgs(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, moscow)

	args, err := parseDoneArgs("12", now)
	require.NoError(t, err)
	assert.Equal(t, uint(12), args.taskID)
	assert.True(t, args.day.IsZero())

	args, err = parseDoneArgs("12 2024-01-08", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", args.day.Format(dateLayout))

	for _, bad := range []string{"", "abc", "0", "12 monday", "1 2 3"} {
		_, err := parseDoneArgs(bad, now)
		assert.ErrorIs(t, err, errBadArgs, bad)
	}
}

func TestParseMoveArgs(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, moscow)

	args, err := parseMoveArgs("3 завтра 18:45", now)
	require.NoError(t, err)
	assert.Equal(t, uint(3), args.taskID)
	assert.Equal(t, "2024-01-11", args.day.Format(dateLayout))
	assert.Equal(t, 18, args.hour)
	assert.Equal(t, 45, args.minute)

	_, err = parseMoveArgs("3 завтра", now)
	assert.ErrorIs(t, err, errBadArgs)
	_, err = parseMoveArgs("3 завтра 7pm", now)
	assert.ErrorIs(t, err, errBadArgs)
}

func TestToggleDataRoundTrip(t *testing.T) {
	day := time.Date(2024, 3, 31, 0, 0, 0, 0, moscow)
	data := toggleData(cbTogglePrefix, 42, day)
	assert.Equal(t, "toggle:42:2024-03-31", data)
	assert.LessOrEqual(t, len(data), 64, "telegram callback data limit")

	id, got, err := parseToggleData(data, cbTogglePrefix, moscow)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.True(t, day.Equal(got))

	_, _, err = parseToggleData(data, cbMarkPrefix, moscow)
	assert.Error(t, err)
	_, _, err = parseToggleData("toggle:42", cbTogglePrefix, moscow)
	assert.Error(t, err)
	_, _, err = parseToggleData("toggle:x:2024-03-31", cbTogglePrefix, moscow)
	assert.Error(t, err)
}

func TestDialogInputs(t *testing.T) {
	assert.True(t, isSkipInput(btnSkip))
	assert.True(t, isSkipInput(" - "))
	assert.True(t, isConfirmInput("Да"))
	assert.True(t, isCancelInput(btnCancel))
	assert.True(t, isCancelDialogInput(btnCancelDialog))
	assert.False(t, isSkipInput("позже"))
}
