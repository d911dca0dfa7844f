package parse

import (
	"strings"
	"time"

	"taskpilot/internal/model"
)

const (
	ocrTitleLimit       = 60
	ocrDescriptionLimit = 400
)

// Draft is a provisional task candidate shown to the user for review
// before it enters the ingestion pipeline. Edited fields come back as
// normalizer overrides on confirm.
type Draft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
	Bucket      model.DueBucket `json:"bucket"`
	Score       float64         `json:"score"`
}

// ParseDraft converts OCR-extracted text into a draft using the shared
// heuristics: first non-blank line as the title, full trimmed text as
// the description.
func (n *Normalizer) ParseDraft(text string, ref time.Time) Draft {
	title := "OCR Task"
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			title = truncateRunes(trimmed, ocrTitleLimit)
			break
		}
	}

	var due *time.Time
	if resolved, ok := n.resolver.Resolve(text, ref); ok {
		due = &resolved
	}

	bucket := model.BucketMonth
	if due != nil {
		bucket = BucketFor(*due, ref, n.loc)
	}

	return Draft{
		Title:       title,
		Description: truncateRunes(strings.TrimSpace(text), ocrDescriptionLimit),
		DueAt:       due,
		Bucket:      bucket,
		Score:       Score(text),
	}
}
