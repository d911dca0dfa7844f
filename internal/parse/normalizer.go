package parse

import (
	"time"

	"taskpilot/internal/model"
)

const (
	// Bounds keep storage and UI rendering predictable; truncation is
	// silent and never signaled to the caller.
	TitleLimit       = 80
	DescriptionLimit = 4000
)

// Normalizer turns raw text plus metadata into a complete task record.
// It is pure apart from stamping UpdatedAt and safe for concurrent use.
type Normalizer struct {
	resolver *Resolver
	loc      *time.Location
}

func NewNormalizer(resolver *Resolver, loc *time.Location) *Normalizer {
	return &Normalizer{resolver: resolver, loc: loc}
}

// NormalizeInput carries the raw fragment and the optional overrides an
// upstream reviewer (the OCR confirm flow) may have already computed.
type NormalizeInput struct {
	Title     string
	Body      string
	Source    model.AccountType
	Reference time.Time

	DueOverride    *time.Time
	ScoreOverride  *float64
	BucketOverride *model.DueBucket
}

// Normalize scores and time-resolves the concatenated title and body,
// derives the due bucket and the initial status, and bounds the title
// and description lengths.
func (n *Normalizer) Normalize(in NormalizeInput) model.Task {
	text := in.Title + "\n" + in.Body

	score := Score(text)
	if in.ScoreOverride != nil {
		score = *in.ScoreOverride
	}

	var due *time.Time
	if in.DueOverride != nil {
		due = in.DueOverride
	} else if resolved, ok := n.resolver.Resolve(text, in.Reference); ok {
		due = &resolved
	}

	// An item with no discoverable deadline is least urgent by default.
	bucket := model.BucketMonth
	if due != nil {
		bucket = BucketFor(*due, in.Reference, n.loc)
	}
	if in.BucketOverride != nil {
		bucket = *in.BucketOverride
	}

	return model.Task{
		Title:       truncateRunes(in.Title, TitleLimit),
		Description: truncateRunes(in.Body, DescriptionLimit),
		DueAt:       due,
		DueBucket:   bucket,
		Score:       score,
		Status:      StatusForScore(score),
		Source:      in.Source,
		CreatedAt:   in.Reference,
		UpdatedAt:   time.Now(),
	}
}

// StatusForScore derives the initial lifecycle status from the
// actionability score. It is applied once at creation; re-ingestion
// never re-derives the status of an existing task.
func StatusForScore(score float64) model.TaskStatus {
	switch {
	case score >= 0.75:
		return model.StatusPending
	case score >= 0.5:
		return model.StatusReview
	default:
		return model.StatusSnoozed
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
