package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskpilot/internal/model"
)

type fakeTaskReader struct {
	tasks map[int64]model.Task
	list  []model.Task
}

func (f *fakeTaskReader) FindByID(_ context.Context, id int64) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTaskReader) ListByBucket(context.Context, model.DueBucket) ([]model.Task, error) {
	return f.list, nil
}

func (f *fakeTaskReader) ListByStatus(context.Context, model.TaskStatus) ([]model.Task, error) {
	return f.list, nil
}

type fakeLinkReader struct {
	byTask map[int64][]model.RawMessage
}

func (f *fakeLinkReader) MessagesForTask(_ context.Context, taskID int64) ([]model.RawMessage, error) {
	return f.byTask[taskID], nil
}

func (f *fakeLinkReader) MessagesForTasks(_ context.Context, taskIDs []int64) (map[int64][]model.RawMessage, error) {
	out := make(map[int64][]model.RawMessage, len(taskIDs))
	for _, id := range taskIDs {
		if msgs, ok := f.byTask[id]; ok {
			out[id] = msgs
		}
	}
	return out, nil
}

type fakeCompleter struct {
	changed bool
	calls   []int64
}

func (f *fakeCompleter) CompleteTask(_ context.Context, id int64) (bool, error) {
	f.calls = append(f.calls, id)
	return f.changed, nil
}

func sampleTask(id int64) model.Task {
	return model.Task{
		ID:        id,
		Title:     "회의 준비",
		DueBucket: model.BucketWeek,
		Score:     0.7,
		Status:    model.StatusReview,
		Source:    model.AccountGmail,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestTaskGetAttachesMessages(t *testing.T) {
	t.Parallel()

	reader := &fakeTaskReader{tasks: map[int64]model.Task{5: sampleTask(5)}}
	links := &fakeLinkReader{byTask: map[int64][]model.RawMessage{
		5: {{ID: 100, AccountType: model.AccountGmail, SourceMessageID: "m-1", Body: "body"}},
	}}
	svc := NewTaskService(reader, links, &fakeCompleter{}, zap.NewNop())

	got, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Task.ID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "m-1", got.Messages[0].SourceMessageID)
}

func TestTaskGetNotFound(t *testing.T) {
	t.Parallel()

	svc := NewTaskService(&fakeTaskReader{tasks: map[int64]model.Task{}}, &fakeLinkReader{}, &fakeCompleter{}, zap.NewNop())

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskListByBucketAttachesProvenance(t *testing.T) {
	t.Parallel()

	reader := &fakeTaskReader{list: []model.Task{sampleTask(1), sampleTask(2)}}
	links := &fakeLinkReader{byTask: map[int64][]model.RawMessage{
		1: {{ID: 10, AccountType: model.AccountSMS, SourceMessageID: "s-1", Body: "b"}},
	}}
	svc := NewTaskService(reader, links, &fakeCompleter{}, zap.NewNop())

	got, err := svc.ListByBucket(context.Background(), model.BucketWeek)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Messages, 1)
	assert.Empty(t, got[1].Messages)
}

func TestTaskCompleteReportsChange(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{changed: true}
	svc := NewTaskService(&fakeTaskReader{}, &fakeLinkReader{}, completer, zap.NewNop())

	changed, err := svc.Complete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int64{7}, completer.calls)
}

func TestTaskCompleteAlreadyCompletedIsNoop(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{changed: false}
	svc := NewTaskService(&fakeTaskReader{}, &fakeLinkReader{}, completer, zap.NewNop())

	changed, err := svc.Complete(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, changed)
}
