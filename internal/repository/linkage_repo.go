package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskpilot/internal/model"
)

type LinkageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLinkageRepository(db *pgxpool.Pool, logger *zap.Logger) *LinkageRepository {
	return &LinkageRepository{db: db, logger: logger}
}

// InsertTx links a task to the raw message that produced it, inside tx.
func (r *LinkageRepository) InsertTx(ctx context.Context, tx pgx.Tx, taskID, messageID int64) error {
	query := `
        INSERT INTO task_messages (task_id, message_id)
        VALUES ($1, $2)
        ON CONFLICT (task_id, message_id) DO NOTHING
    `
	if _, err := tx.Exec(ctx, query, taskID, messageID); err != nil {
		return fmt.Errorf("failed to insert linkage: %w", err)
	}
	return nil
}

// MessagesForTask returns the raw messages linked to one task.
func (r *LinkageRepository) MessagesForTask(ctx context.Context, taskID int64) ([]model.RawMessage, error) {
	query := `
        SELECT m.id, m.account_type, m.source_message_id, m.subject, m.sender, m.body, m.source_payload, m.received_at, m.ingested_at
        FROM task_messages tm
        JOIN raw_messages m ON m.id = tm.message_id
        WHERE tm.task_id = $1
        ORDER BY m.received_at ASC
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MessagesForTasks returns linked messages for a set of tasks in one
// round trip, keyed by task id.
func (r *LinkageRepository) MessagesForTasks(ctx context.Context, taskIDs []int64) (map[int64][]model.RawMessage, error) {
	out := make(map[int64][]model.RawMessage, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}

	query := `
        SELECT tm.task_id, m.id, m.account_type, m.source_message_id, m.subject, m.sender, m.body, m.source_payload, m.received_at, m.ingested_at
        FROM task_messages tm
        JOIN raw_messages m ON m.id = tm.message_id
        WHERE tm.task_id = ANY($1)
        ORDER BY m.received_at ASC
    `
	rows, err := r.db.Query(ctx, query, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID int64
		var m model.RawMessage
		var accountTypeStr string
		if err := rows.Scan(
			&taskID,
			&m.ID,
			&accountTypeStr,
			&m.SourceMessageID,
			&m.Subject,
			&m.Sender,
			&m.Body,
			&m.SourcePayload,
			&m.ReceivedAt,
			&m.IngestedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan linked message: %w", err)
		}
		accountType, err := model.ParseAccountType(accountTypeStr)
		if err != nil {
			return nil, err
		}
		m.AccountType = accountType
		out[taskID] = append(out[taskID], m)
	}
	return out, rows.Err()
}
