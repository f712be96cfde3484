package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

func (r *doctorRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM doctors WHERE id = $1)", id)
	if err != nil {
		return false, apperrors.NewStore(fmt.Errorf("check doctor: %w", err))
	}
	return exists, nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doc model.Doctor
	err := r.db.GetContext(ctx, &doc,
		"SELECT id, name, specialty, email, available FROM doctors WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("doctor")
	}
	if err != nil {
		return nil, apperrors.NewStore(fmt.Errorf("get doctor: %w", err))
	}
	return &doc, nil
}

func (r *doctorRepository) ListAvailable(ctx context.Context, specialty *string) ([]*model.Doctor, error) {
	query := "SELECT id, name, specialty, email, available FROM doctors WHERE available"
	args := []interface{}{}
	if specialty != nil {
		query += " AND specialty = $1"
		args = append(args, *specialty)
	}
	query += " ORDER BY name ASC"

	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, apperrors.NewStore(fmt.Errorf("list doctors: %w", err))
	}
	return doctors, nil
}
