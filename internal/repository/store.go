package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/internal/mq"
	"taskpilot/internal/outbox"
)

// Store composes the per-table repositories into the atomic units the
// ingestion and mutation flows need. Every unit runs in one pgx
// transaction together with its outbox event, so a cancelled or failed
// ingestion never leaves a raw message without its task and linkage.
type Store struct {
	db       *pgxpool.Pool
	Messages *MessageRepository
	Tasks    *TaskRepository
	Links    *LinkageRepository
	Outbox   *outbox.Repository
	logger   *zap.Logger
}

func NewStore(db *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{
		db:       db,
		Messages: NewMessageRepository(db, logger),
		Tasks:    NewTaskRepository(db, logger),
		Links:    NewLinkageRepository(db, logger),
		Outbox:   outbox.NewRepository(db),
		logger:   logger,
	}
}

// IngestAtomic persists the raw message, its normalized task, and the
// linkage between them as one unit. When the message's dedup key
// already exists the whole unit is skipped and created is false; the
// returned ids then identify the pre-existing message and no task.
func (s *Store) IngestAtomic(ctx context.Context, msg *model.RawMessage, task *model.Task) (messageID, taskID int64, created bool, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to begin ingest tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	messageID, created, err = s.Messages.InsertTx(ctx, tx, msg)
	if err != nil {
		return 0, 0, false, err
	}
	if !created {
		// Idempotent re-ingestion: nothing else to write.
		return messageID, 0, false, tx.Commit(ctx)
	}

	taskID, err = s.Tasks.InsertTx(ctx, tx, task)
	if err != nil {
		return 0, 0, false, err
	}

	if err = s.Links.InsertTx(ctx, tx, taskID, messageID); err != nil {
		return 0, 0, false, err
	}

	payload := mq.TaskChangedPayload{
		TaskID: taskID,
		Action: mq.TaskActionCreated,
		Bucket: task.DueBucket.String(),
		Status: task.Status.String(),
		DueAt:  task.DueAt,
	}
	if err = s.Outbox.InsertTx(ctx, tx, "task", &taskID, mq.RoutingKeyTaskChanged, payload); err != nil {
		return 0, 0, false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, 0, false, fmt.Errorf("failed to commit ingest tx: %w", err)
	}
	return messageID, taskID, true, nil
}

// CompleteTask transitions a task to COMPLETED. Missing or already
// completed tasks yield completed=false with no mutation and no event.
func (s *Store) CompleteTask(ctx context.Context, taskID int64) (completed bool, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin complete tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	changed, err := s.Tasks.CompleteTx(ctx, tx, taskID)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, tx.Commit(ctx)
	}

	payload := mq.TaskChangedPayload{
		TaskID: taskID,
		Action: mq.TaskActionCompleted,
		Status: model.StatusCompleted.String(),
	}
	if err = s.Outbox.InsertTx(ctx, tx, "task", &taskID, mq.RoutingKeyTaskChanged, payload); err != nil {
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit complete tx: %w", err)
	}
	return true, nil
}
