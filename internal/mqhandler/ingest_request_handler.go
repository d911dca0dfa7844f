package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/internal/mq"
	"taskpilot/internal/service"
)

type ingestor interface {
	Ingest(ctx context.Context, req service.IngestRequest) (service.IngestResult, error)
}

// IngestRequestHandler consumes ingest.request messages published by
// the collaborator bridges and feeds them into the ingestion pipeline.
type IngestRequestHandler struct {
	ingest ingestor
	logger *zap.Logger
}

func NewIngestRequestHandler(ingest ingestor, logger *zap.Logger) *IngestRequestHandler {
	return &IngestRequestHandler{ingest: ingest, logger: logger}
}

// Handle is the mq.MessageHandler for the ingest queue. Malformed
// payloads and unknown account types are permanent failures; the
// consumer drops them instead of requeueing.
func (h *IngestRequestHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mq.IngestRequestPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ingest request", zap.Error(err))
		return err
	}

	source, err := model.ParseAccountType(p.AccountType)
	if err != nil {
		h.logger.Error("Rejecting ingest request",
			zap.String("account_type", p.AccountType),
			zap.Error(err),
		)
		return fmt.Errorf("%w: unknown account type %q", mq.ErrPermanent, p.AccountType)
	}

	res, err := h.ingest.Ingest(ctx, service.IngestRequest{
		Source:          source,
		SourceMessageID: p.SourceMessageID,
		Subject:         p.Subject,
		Sender:          p.Sender,
		Body:            p.Body,
		SourcePayload:   p.SourcePayload,
		ReceivedAt:      p.ReceivedAt,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidSource) ||
			errors.Is(err, service.ErrMissingSource) ||
			errors.Is(err, service.ErrMissingContent) {
			return fmt.Errorf("%w: %s", mq.ErrPermanent, err)
		}
		return err
	}

	h.logger.Debug("Processed ingest request",
		zap.String("source", source.String()),
		zap.String("source_message_id", p.SourceMessageID),
		zap.Bool("created", res.Created),
		zap.Int64("task_id", res.TaskID),
	)
	return nil
}
