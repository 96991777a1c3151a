package recurrence

import (
	"sort"
	"strings"
	"time"
)

// Kind enumerates the recurrence variants.
type Kind int

const (
	KindNone Kind = iota
	KindDaily
	KindWeekly
	KindBiweekly
	KindMonthly
	KindYearly
	KindCustom
)

var kindNames = [...]string{
	KindNone:     "None",
	KindDaily:    "Daily",
	KindWeekly:   "Weekly",
	KindBiweekly: "Biweekly",
	KindMonthly:  "Monthly",
	KindYearly:   "Yearly",
	KindCustom:   "Custom",
}

func (k Kind) String() string {
	if k < KindNone || int(k) >= len(kindNames) {
		return kindNames[KindNone]
	}
	return kindNames[k]
}

// Kinds lists every variant in display order.
func Kinds() []Kind {
	return []Kind{KindNone, KindDaily, KindWeekly, KindBiweekly, KindMonthly, KindYearly, KindCustom}
}

// WeekdaySet is a bit set indexed by time.Weekday (0=Sunday..6=Saturday).
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			s |= 1 << uint(d)
		}
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Empty() bool {
	return s == 0
}

// Days returns the members in ascending index order.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Indices returns the members as 0=Sunday..6=Saturday integers.
func (s WeekdaySet) Indices() []int {
	days := s.Days()
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}

// Rule is a recurrence variant. The zero value is the non-recurring rule.
// Only Custom rules carry weekdays.
type Rule struct {
	kind     Kind
	weekdays WeekdaySet
}

func None() Rule     { return Rule{kind: KindNone} }
func Daily() Rule    { return Rule{kind: KindDaily} }
func Weekly() Rule   { return Rule{kind: KindWeekly} }
func Biweekly() Rule { return Rule{kind: KindBiweekly} }
func Monthly() Rule  { return Rule{kind: KindMonthly} }
func Yearly() Rule   { return Rule{kind: KindYearly} }

// Custom repeats on the given weekdays. An empty set is allowed and never occurs.
func Custom(days ...time.Weekday) Rule {
	return Rule{kind: KindCustom, weekdays: NewWeekdaySet(days...)}
}

func (r Rule) Kind() Kind {
	return r.kind
}

func (r Rule) Weekdays() WeekdaySet {
	return r.weekdays
}

func (r Rule) IsNone() bool {
	return r.kind == KindNone
}

func (r Rule) String() string {
	return r.kind.String()
}

// ParseRule converts the stored rule name and weekday list into a Rule.
// Unknown or empty names fall back to None; out-of-range weekday indices are dropped.
func ParseRule(name string, weekdays []int) Rule {
	kind, ok := ParseKind(name)
	if !ok {
		return None()
	}
	if kind != KindCustom {
		return Rule{kind: kind}
	}
	days := make([]time.Weekday, 0, len(weekdays))
	for _, idx := range weekdays {
		days = append(days, time.Weekday(idx))
	}
	return Custom(days...)
}

// ParseKind matches a rule name case-insensitively, so "weekly" written by hand or by the
// HTTP API reads the same as the stored "Weekly".
func ParseKind(name string) (Kind, bool) {
	value := strings.TrimSpace(name)
	for k, n := range kindNames {
		if strings.EqualFold(value, n) {
			return Kind(k), true
		}
	}
	return KindNone, false
}

// NormalizeWeekdays sorts and de-duplicates weekday indices, dropping invalid ones.
func NormalizeWeekdays(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx > 6 {
			continue
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
