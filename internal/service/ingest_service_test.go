package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/internal/parse"
)

var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		panic(err)
	}
	return loc
}()

type fakeStore struct {
	duplicate bool
	failErr   error

	msg  *model.RawMessage
	task *model.Task
}

func (f *fakeStore) IngestAtomic(_ context.Context, msg *model.RawMessage, task *model.Task) (int64, int64, bool, error) {
	if f.failErr != nil {
		return 0, 0, false, f.failErr
	}
	f.msg = msg
	f.task = task
	if f.duplicate {
		return 11, 0, false, nil
	}
	return 11, 21, true, nil
}

type fakeDeduper struct {
	firstSeen bool
	calls     int
	released  int
}

func (f *fakeDeduper) AcquireOnce(context.Context, model.AccountType, string) bool {
	f.calls++
	return f.firstSeen
}

func (f *fakeDeduper) Release(context.Context, model.AccountType, string) {
	f.released++
}

// setOnceDeduper mirrors redis SetNX semantics: first acquire of a key
// wins, repeats lose until the key is released.
type setOnceDeduper struct {
	seen map[string]bool
}

func newSetOnceDeduper() *setOnceDeduper {
	return &setOnceDeduper{seen: make(map[string]bool)}
}

func (d *setOnceDeduper) AcquireOnce(_ context.Context, at model.AccountType, id string) bool {
	key := at.String() + ":" + id
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

func (d *setOnceDeduper) Release(_ context.Context, at model.AccountType, id string) {
	delete(d.seen, at.String()+":"+id)
}

func newTestIngest(store ingestStore, deduper acquirer) *IngestService {
	resolver := parse.NewResolver(seoul)
	normalizer := parse.NewNormalizer(resolver, seoul)
	return NewIngestService(store, deduper, normalizer, zap.NewNop())
}

func strPtr(s string) *string { return &s }

func TestIngestCreatesTask(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestIngest(store, &fakeDeduper{firstSeen: true})

	ref := time.Date(2024, 5, 1, 10, 0, 0, 0, seoul)
	res, err := svc.Ingest(context.Background(), IngestRequest{
		Source:          model.AccountGmail,
		SourceMessageID: "msg-1",
		Subject:         strPtr("회의 일정"),
		Body:            "내일 오후 2시까지 검토 부탁드립니다",
		ReceivedAt:      ref,
	})
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, int64(11), res.MessageID)
	assert.Equal(t, int64(21), res.TaskID)

	require.NotNil(t, store.task)
	assert.Equal(t, "회의 일정", store.task.Title)
	assert.Equal(t, model.StatusPending, store.task.Status)
	assert.Equal(t, model.BucketWeek, store.task.DueBucket)
	require.NotNil(t, store.task.DueAt)
	assert.Equal(t, time.Date(2024, 5, 2, 14, 0, 0, 0, seoul), store.task.DueAt.In(seoul))

	require.NotNil(t, store.msg)
	assert.Equal(t, model.AccountGmail, store.msg.AccountType)
	assert.Equal(t, "msg-1", store.msg.SourceMessageID)
	assert.Equal(t, ref, store.msg.ReceivedAt)
}

func TestIngestDedupFastPathSkipsStore(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	deduper := &fakeDeduper{firstSeen: false}
	svc := newTestIngest(store, deduper)

	res, err := svc.Ingest(context.Background(), IngestRequest{
		Source:          model.AccountSMS,
		SourceMessageID: "sms-1",
		Body:            "hello",
		ReceivedAt:      time.Now(),
	})
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, 1, deduper.calls)
	assert.Nil(t, store.msg, "store must not be touched on the fast path")
}

func TestIngestDatabaseDuplicateSkipped(t *testing.T) {
	t.Parallel()

	store := &fakeStore{duplicate: true}
	svc := newTestIngest(store, &fakeDeduper{firstSeen: true})

	res, err := svc.Ingest(context.Background(), IngestRequest{
		Source:          model.AccountNaver,
		SourceMessageID: "naver-1",
		Body:            "hello again",
		ReceivedAt:      time.Now(),
	})
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, int64(11), res.MessageID)
	assert.Zero(t, res.TaskID)
}

func TestIngestValidation(t *testing.T) {
	t.Parallel()

	svc := newTestIngest(&fakeStore{}, &fakeDeduper{firstSeen: true})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, IngestRequest{
		Source:          model.AccountType("TELEGRAM"),
		SourceMessageID: "x",
		Body:            "hi",
	})
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = svc.Ingest(ctx, IngestRequest{
		Source: model.AccountGmail,
		Body:   "hi",
	})
	assert.ErrorIs(t, err, ErrMissingSource)

	_, err = svc.Ingest(ctx, IngestRequest{
		Source:          model.AccountGmail,
		SourceMessageID: "x",
	})
	assert.ErrorIs(t, err, ErrMissingContent)
}

func TestIngestNilDeduperGoesStraightToStore(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestIngest(store, nil)

	res, err := svc.Ingest(context.Background(), IngestRequest{
		Source:          model.AccountKakao,
		SourceMessageID: "k-1",
		Body:            "프로젝트 회의",
		ReceivedAt:      time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestIngestStoreFailureReleasesDedupKey(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failErr: errors.New("connection refused")}
	deduper := newSetOnceDeduper()
	svc := newTestIngest(store, deduper)

	req := IngestRequest{
		Source:          model.AccountGmail,
		SourceMessageID: "msg-retry",
		Body:            "내일 오후 2시까지 검토 부탁드립니다",
		ReceivedAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, seoul),
	}

	_, err := svc.Ingest(context.Background(), req)
	require.Error(t, err)

	// The broker redelivers after a transient store failure; the item
	// must go through to the store, not be mistaken for a duplicate.
	store.failErr = nil
	res, err := svc.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Created)
	require.NotNil(t, store.msg)
	assert.Equal(t, "msg-retry", store.msg.SourceMessageID)
}

func TestIngestOverridesWin(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestIngest(store, &fakeDeduper{firstSeen: true})

	due := time.Date(2024, 6, 1, 9, 0, 0, 0, seoul)
	score := 0.9
	bucket := model.BucketToday
	_, err := svc.Ingest(context.Background(), IngestRequest{
		Source:          model.AccountOCR,
		SourceMessageID: "ocr-1",
		Body:            "no cues here",
		ReceivedAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, seoul),
		DueOverride:     &due,
		ScoreOverride:   &score,
		BucketOverride:  &bucket,
	})
	require.NoError(t, err)

	require.NotNil(t, store.task)
	require.NotNil(t, store.task.DueAt)
	assert.Equal(t, due, *store.task.DueAt)
	assert.Equal(t, 0.9, store.task.Score)
	assert.Equal(t, model.BucketToday, store.task.DueBucket)
	assert.Equal(t, model.StatusPending, store.task.Status)
}
