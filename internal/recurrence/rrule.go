package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// ROption renders the rule as an RFC 5545 recurrence starting at dtstart.
// It returns nil for rules that produce no recurrence (None, or Custom with no weekdays).
// BYMONTHDAY/BYMONTH are left implicit, so RFC consumers skip months without the
// anchor's day exactly like Occurs does.
func (r Rule) ROption(dtstart time.Time) *rrule.ROption {
	opt := &rrule.ROption{Dtstart: dtstart}
	switch r.kind {
	case KindDaily:
		opt.Freq = rrule.DAILY
	case KindWeekly:
		opt.Freq = rrule.WEEKLY
	case KindBiweekly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	case KindMonthly:
		opt.Freq = rrule.MONTHLY
	case KindYearly:
		opt.Freq = rrule.YEARLY
	case KindCustom:
		if r.weekdays.Empty() {
			return nil
		}
		opt.Freq = rrule.WEEKLY
		for _, d := range r.weekdays.Days() {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
		}
	default:
		return nil
	}
	return opt
}
