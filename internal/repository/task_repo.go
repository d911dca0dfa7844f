package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskpilot/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const taskColumns = `id, title, description, due_at, due_bucket, score, status, source, created_at, updated_at`

// InsertTx inserts a normalized task inside tx and returns its id.
func (r *TaskRepository) InsertTx(ctx context.Context, tx pgx.Tx, t *model.Task) (int64, error) {
	query := `
        INSERT INTO tasks (title, description, due_at, due_bucket, score, status, source, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	var id int64
	err := tx.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.DueAt,
		t.DueBucket.String(),
		t.Score,
		t.Status.String(),
		t.Source.String(),
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	return id, nil
}

// FindByID returns one task.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.db.QueryRow(ctx, query, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByBucket returns tasks in one due bucket, due time ascending with
// absent due times last.
func (r *TaskRepository) ListByBucket(ctx context.Context, bucket model.DueBucket) ([]model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE due_bucket = $1
        ORDER BY due_at ASC NULLS LAST, id ASC
    `
	return r.list(ctx, query, bucket.String())
}

// ListByStatus returns tasks in one lifecycle status, same ordering.
func (r *TaskRepository) ListByStatus(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE status = $1
        ORDER BY due_at ASC NULLS LAST, id ASC
    `
	return r.list(ctx, query, status.String())
}

// CompleteTx marks a task COMPLETED inside tx and reports whether a row
// actually changed. Completing a missing or already-completed task
// changes nothing, which also leaves updated_at untouched.
func (r *TaskRepository) CompleteTx(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	query := `
        UPDATE tasks
        SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status <> $1
    `
	tag, err := tx.Exec(ctx, query, model.StatusCompleted.String(), id)
	if err != nil {
		return false, fmt.Errorf("failed to complete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// PruneCompleted deletes COMPLETED tasks not updated since the cutoff.
// Pending, review, and snoozed tasks are never pruned by age alone.
func (r *TaskRepository) PruneCompleted(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM tasks WHERE status = $1 AND updated_at < $2`
	tag, err := r.db.Exec(ctx, query, model.StatusCompleted.String(), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune tasks: %w", err)
	}
	removed := tag.RowsAffected()
	if removed > 0 {
		r.logger.Info("Pruned completed tasks",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff),
		)
	}
	return removed, nil
}

func (r *TaskRepository) list(ctx context.Context, query string, arg any) ([]model.Task, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	var bucketStr, statusStr, sourceStr string
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.DueAt,
		&bucketStr,
		&t.Score,
		&statusStr,
		&sourceStr,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if t.DueBucket, err = model.ParseDueBucket(bucketStr); err != nil {
		return nil, err
	}
	if t.Status, err = model.ParseTaskStatus(statusStr); err != nil {
		return nil, err
	}
	if t.Source, err = model.ParseAccountType(sourceStr); err != nil {
		return nil, err
	}
	return &t, nil
}
