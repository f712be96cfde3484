package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

// notificationRow flattens the data map to JSON for storage.
type notificationRow struct {
	model.Notification
	DataJSON []byte `db:"data"`
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	n.ID = uuid.New()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	n.Status = model.NotificationStatusPending

	data, err := json.Marshal(n.Data)
	if err != nil {
		return apperrors.NewStore(fmt.Errorf("marshal notification data: %w", err))
	}

	query := `
		INSERT INTO notifications (
			id, target_id, channel, recipient, title, body, data,
			status, retry_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		n.ID, n.TargetID, n.Channel, n.Recipient, n.Title, n.Body, data,
		n.Status, n.RetryCount, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewStore(fmt.Errorf("create notification: %w", err))
	}
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	n.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE notifications
		SET status = $1, retry_count = $2, last_error = $3,
		    next_retry_at = $4, sent_at = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		n.Status, n.RetryCount, n.LastError, n.NextRetryAt, n.SentAt, n.UpdatedAt, n.ID)
	if err != nil {
		return apperrors.NewStore(fmt.Errorf("update notification: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStore(fmt.Errorf("rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NewNotFound("notification")
	}
	return nil
}

// GetPendingWithLock claims a batch of dispatchable rows. SKIP LOCKED keeps
// concurrent workers from double-sending the same notification.
func (r *notificationRepository) GetPendingWithLock(ctx context.Context, limit int) ([]*model.Notification, error) {
	query := `
		SELECT id, target_id, channel, recipient, title, body, data,
		       status, retry_count, last_error, next_retry_at, sent_at,
		       created_at, updated_at
		FROM notifications
		WHERE status IN ('pending', 'retrying')
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	var rows []*notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, apperrors.NewStore(fmt.Errorf("get pending notifications: %w", err))
	}

	out := make([]*model.Notification, 0, len(rows))
	for _, row := range rows {
		n := row.Notification
		if len(row.DataJSON) > 0 {
			if err := json.Unmarshal(row.DataJSON, &n.Data); err != nil {
				return nil, apperrors.NewStore(fmt.Errorf("decode notification data: %w", err))
			}
		}
		out = append(out, &n)
	}
	return out, nil
}

func (r *notificationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE status IN ('pending', 'retrying')")
	if err != nil {
		return 0, apperrors.NewStore(fmt.Errorf("count pending notifications: %w", err))
	}
	return count, nil
}
