package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskpilot/internal/model"
)

type MessageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMessageRepository(db *pgxpool.Pool, logger *zap.Logger) *MessageRepository {
	return &MessageRepository{db: db, logger: logger}
}

// InsertTx inserts a raw message inside tx, ignoring the insert when the
// (account_type, source_message_id) key already exists. It returns the
// row id and whether a fresh row was created.
func (r *MessageRepository) InsertTx(ctx context.Context, tx pgx.Tx, m *model.RawMessage) (int64, bool, error) {
	query := `
        INSERT INTO raw_messages (account_type, source_message_id, subject, sender, body, source_payload, received_at, ingested_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        ON CONFLICT (account_type, source_message_id) DO NOTHING
        RETURNING id
    `
	var id int64
	err := tx.QueryRow(ctx, query,
		m.AccountType.String(),
		m.SourceMessageID,
		m.Subject,
		m.Sender,
		m.Body,
		m.SourcePayload,
		m.ReceivedAt,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to insert raw message: %w", err)
	}

	// Conflict: the source item was already ingested.
	existing := `
        SELECT id FROM raw_messages
        WHERE account_type = $1 AND source_message_id = $2
    `
	if err := tx.QueryRow(ctx, existing, m.AccountType.String(), m.SourceMessageID).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to find existing raw message: %w", err)
	}
	return id, false, nil
}

// ListRecent returns the newest messages for one channel.
func (r *MessageRepository) ListRecent(ctx context.Context, accountType model.AccountType, limit int) ([]model.RawMessage, error) {
	query := `
        SELECT id, account_type, source_message_id, subject, sender, body, source_payload, received_at, ingested_at
        FROM raw_messages
        WHERE account_type = $1
        ORDER BY received_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, accountType.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// PruneOlderThan deletes raw messages received before the cutoff and
// returns the number of rows removed. Linkages cascade.
func (r *MessageRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM raw_messages WHERE received_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune raw messages: %w", err)
	}
	removed := tag.RowsAffected()
	if removed > 0 {
		r.logger.Info("Pruned raw messages",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff),
		)
	}
	return removed, nil
}

func scanMessages(rows pgx.Rows) ([]model.RawMessage, error) {
	messages := []model.RawMessage{}
	for rows.Next() {
		var m model.RawMessage
		var accountTypeStr string
		if err := rows.Scan(
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
			return nil, fmt.Errorf("failed to scan raw message: %w", err)
		}
		accountType, err := model.ParseAccountType(accountTypeStr)
		if err != nil {
			return nil, err
		}
		m.AccountType = accountType
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
