package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/pkg/metrics"
)

var ErrTaskNotFound = errors.New("task not found")

type taskReader interface {
	FindByID(ctx context.Context, id int64) (*model.Task, error)
	ListByBucket(ctx context.Context, bucket model.DueBucket) ([]model.Task, error)
	ListByStatus(ctx context.Context, status model.TaskStatus) ([]model.Task, error)
}

type linkReader interface {
	MessagesForTask(ctx context.Context, taskID int64) ([]model.RawMessage, error)
	MessagesForTasks(ctx context.Context, taskIDs []int64) (map[int64][]model.RawMessage, error)
}

type taskCompleter interface {
	CompleteTask(ctx context.Context, taskID int64) (bool, error)
}

// TaskService serves the read side of the board and the one mutation a
// user can apply to a task.
type TaskService struct {
	tasks     taskReader
	links     linkReader
	completer taskCompleter
	logger    *zap.Logger
}

func NewTaskService(tasks taskReader, links linkReader, completer taskCompleter, logger *zap.Logger) *TaskService {
	return &TaskService{tasks: tasks, links: links, completer: completer, logger: logger}
}

// Get returns one task with its linked source messages.
func (s *TaskService) Get(ctx context.Context, id int64) (*model.TaskWithMessages, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	msgs, err := s.links.MessagesForTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked messages: %w", err)
	}
	return &model.TaskWithMessages{Task: *task, Messages: msgs}, nil
}

// ListByBucket returns one board column with provenance attached.
func (s *TaskService) ListByBucket(ctx context.Context, bucket model.DueBucket) ([]model.TaskWithMessages, error) {
	tasks, err := s.tasks.ListByBucket(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by bucket: %w", err)
	}
	return s.attachMessages(ctx, tasks)
}

// ListByStatus returns tasks filtered by lifecycle status.
func (s *TaskService) ListByStatus(ctx context.Context, status model.TaskStatus) ([]model.TaskWithMessages, error) {
	tasks, err := s.tasks.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by status: %w", err)
	}
	return s.attachMessages(ctx, tasks)
}

// Complete marks one task COMPLETED. Completing an already-completed
// task reports changed=false and publishes nothing.
func (s *TaskService) Complete(ctx context.Context, id int64) (bool, error) {
	changed, err := s.completer.CompleteTask(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to complete task: %w", err)
	}
	if changed {
		metrics.TasksCompleted.Inc()
		s.logger.Info("Task completed", zap.Int64("task_id", id))
	}
	return changed, nil
}

func (s *TaskService) attachMessages(ctx context.Context, tasks []model.Task) ([]model.TaskWithMessages, error) {
	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	byTask, err := s.links.MessagesForTasks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked messages: %w", err)
	}

	out := make([]model.TaskWithMessages, len(tasks))
	for i, t := range tasks {
		out[i] = model.TaskWithMessages{Task: t, Messages: byTask[t.ID]}
	}
	return out, nil
}
