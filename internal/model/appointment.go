package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusDeclined  AppointmentStatus = "declined"
)

// ParseAppointmentStatus decodes a status string coming from storage or a
// client. Unknown values map to pending so a record with a garbled status
// is never silently treated as terminal (and never dropped on read).
func ParseAppointmentStatus(s string) AppointmentStatus {
	switch AppointmentStatus(s) {
	case AppointmentStatusPending,
		AppointmentStatusConfirmed,
		AppointmentStatusScheduled,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
		AppointmentStatusDeclined:
		return AppointmentStatus(s)
	default:
		return AppointmentStatusPending
	}
}

// Scan applies the unknown-to-pending decode rule on every read from the
// store, so a record with an unparseable status is never dropped or
// mistaken for terminal.
func (s *AppointmentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = ParseAppointmentStatus(v)
	case []byte:
		*s = ParseAppointmentStatus(string(v))
	case nil:
		*s = AppointmentStatusPending
	default:
		return fmt.Errorf("unsupported status type %T", src)
	}
	return nil
}

func (s AppointmentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Terminal reports whether no further status transition is legal.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusDeclined:
		return true
	}
	return false
}

type Appointment struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	PatientID   uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	NurseID     *uuid.UUID        `db:"nurse_id" json:"nurse_id,omitempty"`
	PatientName string            `db:"patient_name" json:"patient_name"`
	DoctorName  string            `db:"doctor_name" json:"doctor_name"`
	DateTime    time.Time         `db:"date_time" json:"date_time"`
	Reason      string            `db:"reason" json:"reason"`
	Notes       *string           `db:"notes" json:"notes,omitempty"`
	Status      AppointmentStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// Clone returns a shallow copy with the pointer fields duplicated, so a
// cached copy can be mutated without aliasing the original.
func (a *Appointment) Clone() *Appointment {
	clone := *a
	if a.NurseID != nil {
		id := *a.NurseID
		clone.NurseID = &id
	}
	if a.Notes != nil {
		n := *a.Notes
		clone.Notes = &n
	}
	return &clone
}

type CreateAppointmentRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id" binding:"required"`
	DoctorName  string    `json:"doctor_name" binding:"max=200"`
	PatientName string    `json:"patient_name" binding:"max=200"`
	DateTime    time.Time `json:"date_time" binding:"required"`
	Reason      string    `json:"reason" binding:"required,max=1000"`
	Notes       *string   `json:"notes" binding:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed scheduled completed cancelled declined"`
}

type RescheduleRequest struct {
	DateTime time.Time `json:"date_time" binding:"required"`
}
