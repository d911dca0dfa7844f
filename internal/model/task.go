package model

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a normalized task. The only
// transition after creation is into COMPLETED.
type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusReview    TaskStatus = "REVIEW"
	StatusSnoozed   TaskStatus = "SNOOZED"
	StatusCompleted TaskStatus = "COMPLETED"
)

var taskStatuses = map[TaskStatus]struct{}{
	StatusPending:   {},
	StatusReview:    {},
	StatusSnoozed:   {},
	StatusCompleted: {},
}

// ParseTaskStatus maps a persisted or wire string to a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if _, ok := taskStatuses[st]; !ok {
		return "", fmt.Errorf("unknown task status: %q", s)
	}
	return st, nil
}

func (s TaskStatus) String() string { return string(s) }

func (s TaskStatus) Valid() bool {
	_, ok := taskStatuses[s]
	return ok
}

// DueBucket is the coarse due-date classification used for triage.
type DueBucket string

const (
	BucketToday DueBucket = "TODAY"
	BucketWeek  DueBucket = "WEEK"
	BucketMonth DueBucket = "MONTH"
)

var dueBuckets = map[DueBucket]struct{}{
	BucketToday: {},
	BucketWeek:  {},
	BucketMonth: {},
}

// ParseDueBucket maps a persisted or wire string to a DueBucket.
func ParseDueBucket(s string) (DueBucket, error) {
	b := DueBucket(s)
	if _, ok := dueBuckets[b]; !ok {
		return "", fmt.Errorf("unknown due bucket: %q", s)
	}
	return b, nil
}

func (b DueBucket) String() string { return string(b) }

func (b DueBucket) Valid() bool {
	_, ok := dueBuckets[b]
	return ok
}

// Task is a normalized actionable item derived from one raw message.
type Task struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	DueAt       *time.Time  `json:"due_at,omitempty"`
	DueBucket   DueBucket   `json:"due_bucket"`
	Score       float64     `json:"score"`
	Status      TaskStatus  `json:"status"`
	Source      AccountType `json:"source"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TaskWithMessages pairs a task with the raw messages that produced it.
type TaskWithMessages struct {
	Task     Task         `json:"task"`
	Messages []RawMessage `json:"linked_messages"`
}
