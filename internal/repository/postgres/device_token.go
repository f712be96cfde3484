package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

func (r *deviceTokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var tokens []string
	err := r.db.SelectContext(ctx, &tokens,
		"SELECT token FROM device_tokens WHERE user_id = $1 ORDER BY created_at ASC", userID)
	if err != nil {
		return nil, apperrors.NewStore(fmt.Errorf("list device tokens: %w", err))
	}
	return tokens, nil
}

func (r *deviceTokenRepository) Add(ctx context.Context, userID uuid.UUID, token string) error {
	query := `
		INSERT INTO device_tokens (id, user_id, token, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, token) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, uuid.New(), userID, token); err != nil {
		return apperrors.NewStore(fmt.Errorf("add device token: %w", err))
	}
	return nil
}

func (r *deviceTokenRepository) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM device_tokens WHERE user_id = $1 AND token = $2", userID, token)
	if err != nil {
		return apperrors.NewStore(fmt.Errorf("remove device token: %w", err))
	}
	return nil
}
