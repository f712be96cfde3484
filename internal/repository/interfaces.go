package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository is the persistence contract for appointment
	// records. UpdateFields is a compare-and-swap: the write only applies
	// when the stored updated_at still equals expectedVersion, otherwise
	// it fails with a version conflict.
	AppointmentRepository interface {
		Create(ctx context.Context, apt *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		ListByParticipant(ctx context.Context, userID uuid.UUID, role model.Role, status *model.AppointmentStatus) ([]*model.Appointment, error)
		UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}, expectedVersion time.Time) (*model.Appointment, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	// DoctorRepository backs the doctor directory.
	DoctorRepository interface {
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		ListAvailable(ctx context.Context, specialty *string) ([]*model.Doctor, error)
	}

	// NotificationRepository is the notification outbox.
	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		Update(ctx context.Context, n *model.Notification) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.Notification, error)
		CountPending(ctx context.Context) (int64, error)
	}

	// DeviceTokenRepository stores push registration tokens per user.
	DeviceTokenRepository interface {
		ListByUser(ctx context.Context, userID uuid.UUID) ([]string, error)
		Add(ctx context.Context, userID uuid.UUID, token string) error
		Remove(ctx context.Context, userID uuid.UUID, token string) error
	}
)
