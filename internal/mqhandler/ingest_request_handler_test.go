package mqhandler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskpilot/internal/mq"
	"taskpilot/internal/service"
)

type fakeIngestor struct {
	got service.IngestRequest
	res service.IngestResult
	err error
}

func (f *fakeIngestor) Ingest(_ context.Context, req service.IngestRequest) (service.IngestResult, error) {
	f.got = req
	return f.res, f.err
}

func TestHandleIngestRequest(t *testing.T) {
	t.Parallel()

	ingest := &fakeIngestor{res: service.IngestResult{MessageID: 1, TaskID: 2, Created: true}}
	h := NewIngestRequestHandler(ingest, zap.NewNop())

	subject := "회의 일정"
	received := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(mq.IngestRequestPayload{
		AccountType:     "GMAIL",
		SourceMessageID: "msg-1",
		Subject:         &subject,
		Body:            "내일 오후 2시까지",
		ReceivedAt:      received,
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), raw))
	assert.Equal(t, "msg-1", ingest.got.SourceMessageID)
	assert.Equal(t, "GMAIL", ingest.got.Source.String())
	assert.Equal(t, received, ingest.got.ReceivedAt)
}

func TestHandleIngestRequestUnknownSourceIsPermanent(t *testing.T) {
	t.Parallel()

	h := NewIngestRequestHandler(&fakeIngestor{}, zap.NewNop())

	raw, err := json.Marshal(mq.IngestRequestPayload{
		AccountType:     "TELEGRAM",
		SourceMessageID: "x",
		Body:            "hi",
	})
	require.NoError(t, err)

	err = h.Handle(context.Background(), raw)
	require.Error(t, err)
	retryable, _ := mq.IsRetryableError(err)
	assert.False(t, retryable)
}

func TestHandleIngestRequestValidationIsPermanent(t *testing.T) {
	t.Parallel()

	ingest := &fakeIngestor{err: service.ErrMissingContent}
	h := NewIngestRequestHandler(ingest, zap.NewNop())

	raw, err := json.Marshal(mq.IngestRequestPayload{
		AccountType:     "SMS",
		SourceMessageID: "x",
	})
	require.NoError(t, err)

	err = h.Handle(context.Background(), raw)
	require.Error(t, err)
	retryable, _ := mq.IsRetryableError(err)
	assert.False(t, retryable)
}

func TestHandleIngestRequestBadJSON(t *testing.T) {
	t.Parallel()

	h := NewIngestRequestHandler(&fakeIngestor{}, zap.NewNop())

	err := h.Handle(context.Background(), json.RawMessage(`{not json`))
	require.Error(t, err)
	retryable, reason := mq.IsRetryableError(err)
	assert.False(t, retryable)
	assert.Equal(t, "json_decode_error", reason)
}
