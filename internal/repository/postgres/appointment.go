package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

const appointmentColumns = `
	id, patient_id, doctor_id, nurse_id, patient_name, doctor_name,
	date_time, reason, notes, status, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, nurse_id, patient_name, doctor_name,
			date_time, reason, notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	apt.ID = uuid.New()
	now := time.Now().UTC()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.PatientID,
		apt.DoctorID,
		apt.NurseID,
		apt.PatientName,
		apt.DoctorName,
		apt.DateTime,
		apt.Reason,
		apt.Notes,
		apt.Status,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewStore(fmt.Errorf("create appointment: %w", err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("appointment")
	}
	if err != nil {
		return nil, apperrors.NewStore(fmt.Errorf("get appointment: %w", err))
	}
	return &apt, nil
}

func (r *appointmentRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, role model.Role, status *model.AppointmentStatus) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE `

	switch role {
	case model.RolePatient:
		query += "patient_id = $1"
	case model.RoleDoctor:
		query += "doctor_id = $1"
	case model.RoleNurse:
		query += "nurse_id = $1"
	default:
		query += "(patient_id = $1 OR doctor_id = $1 OR nurse_id = $1)"
	}

	args := []interface{}{userID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY date_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, apperrors.NewStore(fmt.Errorf("list appointments: %w", err))
	}
	return appointments, nil
}

// writable whitelists the columns UpdateFields may touch. created_at and id
// are immutable; updated_at is owned by the CAS clause itself.
var writable = map[string]bool{
	"status":    true,
	"date_time": true,
	"notes":     true,
	"nurse_id":  true,
	"reason":    true,
}

// UpdateFields applies a compare-and-swap update: the row is written only
// if updated_at still equals expectedVersion. A concurrent writer that got
// there first leaves this call with a version conflict.
func (r *appointmentRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}, expectedVersion time.Time) (*model.Appointment, error) {
	if len(fields) == 0 {
		return nil, apperrors.NewValidation("no fields to update")
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !writable[col] {
			return nil, apperrors.NewValidation(fmt.Sprintf("field %q is not updatable", col))
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	query := "UPDATE appointments SET "
	args := make([]interface{}, 0, len(cols)+2)
	for i, col := range cols {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, fields[col])
	}
	query += fmt.Sprintf(", updated_at = NOW() WHERE id = $%d AND updated_at = $%d RETURNING "+appointmentColumns,
		len(cols)+1, len(cols)+2)
	args = append(args, id, expectedVersion)

	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		// Zero rows is ambiguous: the record is gone, or someone else won
		// the race. Disambiguate with a second read.
		var exists bool
		if probeErr := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)", id); probeErr != nil {
			return nil, apperrors.NewStore(fmt.Errorf("probe appointment: %w", probeErr))
		}
		if !exists {
			return nil, apperrors.NewNotFound("appointment")
		}
		return nil, apperrors.NewVersionConflict()
	}
	if err != nil {
		return nil, apperrors.NewStore(fmt.Errorf("update appointment: %w", err))
	}
	return &apt, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewStore(fmt.Errorf("delete appointment: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStore(fmt.Errorf("rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment")
	}
	return nil
}
