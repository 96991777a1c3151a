package recurrence

import (
	"time"

	"github.com/samber/mo"

	"focal/internal/calendar"
)

// CompletionLookup answers "was this template done on this day, and when".
// When several records match, the first one wins.
type CompletionLookup interface {
	Lookup(templateID string, day time.Time) mo.Option[time.Time]
}

// RecordList scans the records linearly on every lookup.
type RecordList struct {
	cal     calendar.Calendar
	records []CompletionRecord
}

func NewRecordList(cal calendar.Calendar, records []CompletionRecord) *RecordList {
	return &RecordList{cal: cal, records: records}
}

func (l *RecordList) Lookup(templateID string, day time.Time) mo.Option[time.Time] {
	for _, rec := range l.records {
		if rec.TemplateID == templateID && l.cal.SameDay(rec.OccurrenceDate, day) {
			return mo.Some(rec.CompletedAt)
		}
	}
	return mo.None[time.Time]()
}

type recordKey struct {
	templateID string
	day        string
}

// RecordIndex answers lookups from a map keyed by template id and calendar day.
// It returns the same answers as RecordList over the same records.
type RecordIndex struct {
	cal   calendar.Calendar
	index map[recordKey]time.Time
}

func NewRecordIndex(cal calendar.Calendar, records []CompletionRecord) *RecordIndex {
	idx := &RecordIndex{cal: cal, index: make(map[recordKey]time.Time, len(records))}
	for _, rec := range records {
		key := idx.key(rec.TemplateID, rec.OccurrenceDate)
		if _, exists := idx.index[key]; exists {
			continue
		}
		idx.index[key] = rec.CompletedAt
	}
	return idx
}

func (i *RecordIndex) Lookup(templateID string, day time.Time) mo.Option[time.Time] {
	if completedAt, ok := i.index[i.key(templateID, day)]; ok {
		return mo.Some(completedAt)
	}
	return mo.None[time.Time]()
}

func (i *RecordIndex) key(templateID string, day time.Time) recordKey {
	return recordKey{templateID: templateID, day: DayKey(i.cal, day)}
}

// DayKey formats the calendar day of t as YYYY-MM-DD in the calendar's location.
func DayKey(cal calendar.Calendar, t time.Time) string {
	return t.In(cal.Location()).Format("2006-01-02")
}

type noCompletions struct{}

func (noCompletions) Lookup(string, time.Time) mo.Option[time.Time] {
	return mo.None[time.Time]()
}
