package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/internal/parse"
)

var ErrEmptyOCRText = errors.New("ocr text is empty")

// OCRService drives the two-step capture flow: Preview turns extracted
// text into an editable draft, Confirm feeds the reviewed draft through
// the regular ingestion pipeline with the reviewed values as overrides.
type OCRService struct {
	normalizer *parse.Normalizer
	ingest     *IngestService
	logger     *zap.Logger
}

func NewOCRService(normalizer *parse.Normalizer, ingest *IngestService, logger *zap.Logger) *OCRService {
	return &OCRService{normalizer: normalizer, ingest: ingest, logger: logger}
}

// Preview builds a draft from OCR text without persisting anything.
func (s *OCRService) Preview(text string, reference time.Time) (parse.Draft, error) {
	if strings.TrimSpace(text) == "" {
		return parse.Draft{}, ErrEmptyOCRText
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return s.normalizer.ParseDraft(text, reference), nil
}

// ConfirmRequest carries the reviewed draft back for persistence. The
// fields mirror the draft the user may have edited; the original text
// is kept as the raw message body for provenance.
type ConfirmRequest struct {
	Text      string          `json:"text"`
	Title     string          `json:"title"`
	DueAt     *time.Time      `json:"due_at,omitempty"`
	Bucket    model.DueBucket `json:"bucket"`
	Score     *float64        `json:"score,omitempty"`
	Reference time.Time       `json:"-"`
}

// Confirm persists a reviewed draft. The capture has no upstream id, so
// the dedup key is derived from the text itself; confirming the same
// capture twice is a no-op like any other duplicate.
func (s *OCRService) Confirm(ctx context.Context, req ConfirmRequest) (IngestResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return IngestResult{}, ErrEmptyOCRText
	}
	reference := req.Reference
	if reference.IsZero() {
		reference = time.Now()
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = s.normalizer.ParseDraft(req.Text, reference).Title
	}

	var bucketOverride *model.DueBucket
	if req.Bucket.Valid() {
		b := req.Bucket
		bucketOverride = &b
	}

	return s.ingest.Ingest(ctx, IngestRequest{
		Source:          model.AccountOCR,
		SourceMessageID: captureID(req.Text),
		Subject:         &title,
		Body:            req.Text,
		ReceivedAt:      reference,
		DueOverride:     req.DueAt,
		ScoreOverride:   req.Score,
		BucketOverride:  bucketOverride,
	})
}

func captureID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "ocr-" + hex.EncodeToString(sum[:])
}
