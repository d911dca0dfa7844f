package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Resolver maps Korean/English natural-language date and time phrases to
// absolute timestamps in a single fixed zone. The zone is injected so
// resolution is deterministic regardless of the host machine's locale.
type Resolver struct {
	loc *time.Location
}

func NewResolver(loc *time.Location) *Resolver {
	return &Resolver{loc: loc}
}

// Ordered so that ties resolve by first match, Korean day characters
// before English weekday names.
var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"월", time.Monday},
	{"화", time.Tuesday},
	{"수", time.Wednesday},
	{"목", time.Thursday},
	{"금", time.Friday},
	{"토", time.Saturday},
	{"일", time.Sunday},
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

var weekdayByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, len(weekdayNames))
	for _, w := range weekdayNames {
		m[w.name] = w.day
	}
	return m
}()

var (
	koreanNextWeekdayRe  = regexp.MustCompile(`(?:다음주|다음 주)\s*([월화수목금토일])`)
	englishNextWeekdayRe = regexp.MustCompile(`next week\s*(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)

	colonTimeRe      = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	meridiemTimeRe   = regexp.MustCompile(`(am|pm)\s*(\d{1,2})(:(\d{2}))?`)
	koreanTimeRe     = regexp.MustCompile(`(오전|오후)\s*(\d{1,2})시\s*(\d{1,2})?분?`)
	bareHourRe       = regexp.MustCompile(`(\d{1,2})시`)
	defaultClockHour = 9
)

// Resolve returns the absolute timestamp a date cue in text points at,
// relative to ref. A time-of-day cue alone never fabricates a result;
// without a date cue the second return value is false. When a date cue
// matched but no time cue did, the clock defaults to 09:00.
func (r *Resolver) Resolve(text string, ref time.Time) (time.Time, bool) {
	normalized := strings.ToLower(text)
	ref = ref.In(r.loc)

	date, ok := r.resolveDate(normalized, ref)
	if !ok {
		return time.Time{}, false
	}

	hour, minute, ok := parseClock(normalized)
	if !ok {
		hour, minute = defaultClockHour, 0
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, r.loc), true
}

func (r *Resolver) resolveDate(text string, ref time.Time) (time.Time, bool) {
	switch {
	case containsAny(text, "오늘", "today"):
		return ref, true
	case containsAny(text, "내일", "tomorrow"):
		return ref.AddDate(0, 0, 1), true
	case strings.Contains(text, "모레"):
		return ref.AddDate(0, 0, 2), true
	}

	// A weekday qualified by next week resolves to its occurrence after
	// advancing the reference by one week, so it must be recognized
	// before the bare "next week" cue consumes the text.
	if d, ok := qualifiedNextWeekday(text, ref); ok {
		return d, true
	}

	switch {
	case containsAny(text, "이번주", "이번 주", "this week"):
		return ref, true
	case containsAny(text, "다음주", "다음 주", "next week"):
		return ref.AddDate(0, 0, 7), true
	case containsAny(text, "이번달", "이번 달", "this month"):
		return ref, true
	case containsAny(text, "다음달", "다음 달", "next month"):
		return time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, r.loc), true
	}

	return findWeekday(text, ref)
}

func qualifiedNextWeekday(text string, ref time.Time) (time.Time, bool) {
	if m := koreanNextWeekdayRe.FindStringSubmatch(text); m != nil {
		if day, ok := weekdayByName[m[1]]; ok {
			return nextOrSame(ref.AddDate(0, 0, 7), day), true
		}
	}
	if m := englishNextWeekdayRe.FindStringSubmatch(text); m != nil {
		if day, ok := weekdayByName[m[1]]; ok {
			return nextOrSame(ref.AddDate(0, 0, 7), day), true
		}
	}
	return time.Time{}, false
}

func findWeekday(text string, ref time.Time) (time.Time, bool) {
	for _, w := range weekdayNames {
		if strings.Contains(text, w.name) {
			return nextOrSame(ref, w.day), true
		}
	}
	return time.Time{}, false
}

// nextOrSame returns the next occurrence of day on or after t,
// including t's own date when it already falls on that weekday.
func nextOrSame(t time.Time, day time.Weekday) time.Time {
	diff := (int(day) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, diff)
}

// parseClock checks time cues in priority order: HH:MM, am/pm + hour,
// Korean meridiem + hour, bare N시. Out-of-range components fall
// through to the next rule.
func parseClock(text string) (hour, minute int, ok bool) {
	if m := colonTimeRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if validClock(h, min) {
			return h, min, true
		}
	}
	if m := meridiemTimeRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[2])
		min := 0
		if m[4] != "" {
			min, _ = strconv.Atoi(m[4])
		}
		if m[1] == "pm" && h != 12 {
			h += 12
		}
		if m[1] == "am" && h == 12 {
			h = 0
		}
		if validClock(h, min) {
			return h, min, true
		}
	}
	if m := koreanTimeRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[2])
		min := 0
		if m[3] != "" {
			min, _ = strconv.Atoi(m[3])
		}
		if m[1] == "오후" && h != 12 {
			h += 12
		}
		if m[1] == "오전" && h == 12 {
			h = 0
		}
		if validClock(h, min) {
			return h, min, true
		}
	}
	if m := bareHourRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		if validClock(h, 0) {
			return h, 0, true
		}
	}
	return 0, 0, false
}

func validClock(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
