package parse

import (
	"time"

	"taskpilot/internal/model"
)

// BucketFor classifies a resolved due time relative to a reference
// instant using the whole calendar-day difference in loc. A due time
// earlier the same day is still TODAY.
func BucketFor(due, ref time.Time, loc *time.Location) model.DueBucket {
	days := calendarDaysBetween(ref.In(loc), due.In(loc))
	switch {
	case days <= 0:
		return model.BucketToday
	case days <= 7:
		return model.BucketWeek
	default:
		return model.BucketMonth
	}
}

func calendarDaysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
