package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/internal/parse"
	"taskpilot/pkg/metrics"
)

var (
	ErrInvalidSource  = errors.New("invalid account type")
	ErrMissingSource  = errors.New("source message id is required")
	ErrMissingContent = errors.New("subject and body are both empty")
)

// ingestStore is the slice of repository.Store the ingestion flow needs.
type ingestStore interface {
	IngestAtomic(ctx context.Context, msg *model.RawMessage, task *model.Task) (messageID, taskID int64, created bool, err error)
}

// acquirer is the advisory dedup fast path in front of the store. A
// key acquired for an item whose persist fails must be released, or
// the redelivery would be mistaken for a duplicate until the TTL runs
// out.
type acquirer interface {
	AcquireOnce(ctx context.Context, accountType model.AccountType, sourceMessageID string) bool
	Release(ctx context.Context, accountType model.AccountType, sourceMessageID string)
}

// IngestRequest is one raw item arriving from any collaborator source.
// The override fields carry reviewer-confirmed values from the OCR
// confirm flow; when set they take precedence over rule extraction.
type IngestRequest struct {
	Source          model.AccountType
	SourceMessageID string
	Subject         *string
	Sender          *string
	Body            string
	SourcePayload   *string
	ReceivedAt      time.Time

	DueOverride    *time.Time
	ScoreOverride  *float64
	BucketOverride *model.DueBucket
}

// IngestResult reports what persisting one item produced. Created is
// false when the item was recognized as a duplicate and skipped; TaskID
// is zero in that case.
type IngestResult struct {
	MessageID int64 `json:"message_id"`
	TaskID    int64 `json:"task_id,omitempty"`
	Created   bool  `json:"created"`
}

// IngestService runs the full pipeline for one raw item: dedup,
// normalization, and the atomic persist of message, task, linkage, and
// change event.
type IngestService struct {
	store      ingestStore
	deduper    acquirer
	normalizer *parse.Normalizer
	logger     *zap.Logger
}

func NewIngestService(store ingestStore, deduper acquirer, normalizer *parse.Normalizer, logger *zap.Logger) *IngestService {
	return &IngestService{
		store:      store,
		deduper:    deduper,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Ingest validates, normalizes, and persists one item. Re-ingesting an
// item already seen under the same (source, source message id) key is
// skipped entirely: no new task is created and a completed task is
// never resurrected.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	start := time.Now()

	if err := validate(req); err != nil {
		metrics.MessagesIngested.WithLabelValues(req.Source.String(), "rejected").Inc()
		return IngestResult{}, err
	}

	if s.deduper != nil && !s.deduper.AcquireOnce(ctx, req.Source, req.SourceMessageID) {
		s.logger.Debug("Skipping recently seen item",
			zap.String("source", req.Source.String()),
			zap.String("source_message_id", req.SourceMessageID),
		)
		metrics.MessagesIngested.WithLabelValues(req.Source.String(), "duplicate").Inc()
		return IngestResult{Created: false}, nil
	}

	title := ""
	if req.Subject != nil {
		title = *req.Subject
	}
	reference := req.ReceivedAt
	if reference.IsZero() {
		reference = time.Now()
	}

	task := s.normalizer.Normalize(parse.NormalizeInput{
		Title:          title,
		Body:           req.Body,
		Source:         req.Source,
		Reference:      reference,
		DueOverride:    req.DueOverride,
		ScoreOverride:  req.ScoreOverride,
		BucketOverride: req.BucketOverride,
	})

	msg := model.RawMessage{
		AccountType:     req.Source,
		SourceMessageID: req.SourceMessageID,
		Subject:         req.Subject,
		Sender:          req.Sender,
		Body:            req.Body,
		SourcePayload:   req.SourcePayload,
		ReceivedAt:      reference,
		IngestedAt:      time.Now(),
	}

	messageID, taskID, created, err := s.store.IngestAtomic(ctx, &msg, &task)
	if err != nil {
		if s.deduper != nil {
			s.deduper.Release(ctx, req.Source, req.SourceMessageID)
		}
		metrics.MessagesIngested.WithLabelValues(req.Source.String(), "error").Inc()
		return IngestResult{}, fmt.Errorf("failed to ingest item: %w", err)
	}

	metrics.IngestDuration.WithLabelValues(req.Source.String()).Observe(time.Since(start).Seconds())
	if !created {
		metrics.MessagesIngested.WithLabelValues(req.Source.String(), "duplicate").Inc()
		s.logger.Info("Duplicate item skipped",
			zap.String("source", req.Source.String()),
			zap.String("source_message_id", req.SourceMessageID),
			zap.Int64("message_id", messageID),
		)
		return IngestResult{MessageID: messageID, Created: false}, nil
	}

	metrics.MessagesIngested.WithLabelValues(req.Source.String(), "created").Inc()
	metrics.TasksCreated.WithLabelValues(req.Source.String(), task.Status.String()).Inc()
	s.logger.Info("Ingested item",
		zap.String("source", req.Source.String()),
		zap.Int64("message_id", messageID),
		zap.Int64("task_id", taskID),
		zap.String("bucket", task.DueBucket.String()),
		zap.String("status", task.Status.String()),
		zap.Float64("score", task.Score),
	)
	return IngestResult{MessageID: messageID, TaskID: taskID, Created: true}, nil
}

func validate(req IngestRequest) error {
	if !req.Source.Valid() {
		return ErrInvalidSource
	}
	if req.SourceMessageID == "" {
		return ErrMissingSource
	}
	if req.Body == "" && (req.Subject == nil || *req.Subject == "") {
		return ErrMissingContent
	}
	return nil
}
