package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskpilot/internal/model"
)

func TestBucketForSameDay(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 5, 1, 15, 0, 0, 0, seoul)

	// Same calendar date is TODAY even when the clock time already passed.
	due := time.Date(2024, 5, 1, 9, 0, 0, 0, seoul)
	assert.Equal(t, model.BucketToday, BucketFor(due, ref, seoul))
}

func TestBucketForPastDue(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 5, 1, 9, 0, 0, 0, seoul)
	due := time.Date(2024, 4, 28, 9, 0, 0, 0, seoul)
	assert.Equal(t, model.BucketToday, BucketFor(due, ref, seoul))
}

func TestBucketBoundaries(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 5, 1, 23, 30, 0, 0, seoul)
	tests := []struct {
		name string
		due  time.Time
		want model.DueBucket
	}{
		{"next day is week", time.Date(2024, 5, 2, 0, 30, 0, 0, seoul), model.BucketWeek},
		{"seventh day is week", time.Date(2024, 5, 8, 9, 0, 0, 0, seoul), model.BucketWeek},
		{"eighth day is month", time.Date(2024, 5, 9, 9, 0, 0, 0, seoul), model.BucketMonth},
		{"far future is month", time.Date(2024, 7, 1, 9, 0, 0, 0, seoul), model.BucketMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketFor(tt.due, ref, seoul))
		})
	}
}

func TestBucketUsesFixedZoneCalendar(t *testing.T) {
	t.Parallel()

	// 23:30 UTC on 5/1 is already 5/2 in Seoul; a due time the next UTC
	// morning shares that Seoul date and stays TODAY.
	ref := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
	due := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, model.BucketToday, BucketFor(due, ref, seoul))
}
