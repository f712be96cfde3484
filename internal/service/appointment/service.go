// Package appointment orchestrates the appointment lifecycle: it validates
// role and transition legality against the status policy, writes through
// the store with compare-and-swap semantics, and fires a best-effort
// notification to the counterpart after the write commits.
package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
	"github.com/mamacare/appointment-api/internal/policy"
	"github.com/mamacare/appointment-api/internal/repository"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
	"github.com/mamacare/appointment-api/pkg/logger"
	"github.com/mamacare/appointment-api/pkg/metrics"
)

// DoctorDirectory is the narrow slice of the directory the service needs
// for request-time validation.
type DoctorDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
}

// Notifier enqueues a message for later delivery. Failures are logged and
// never surfaced to the caller of a mutating operation.
type Notifier interface {
	Enqueue(ctx context.Context, targetID uuid.UUID, title, body string, data map[string]string) error
}

type Service struct {
	repo      repository.AppointmentRepository
	directory DoctorDirectory
	notifier  Notifier
	validate  *validator.Validate
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewService(repo repository.AppointmentRepository, directory DoctorDirectory, notifier Notifier, m *metrics.Metrics, logger *logger.Logger) *Service {
	// The same binding tags gin checks at the edge are re-checked here, so
	// callers that bypass HTTP (controllers, tests, future transports) hit
	// identical constraints.
	validate := validator.New()
	validate.SetTagName("binding")

	return &Service{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		validate:  validate,
		logger:    logger,
		metrics:   m,
	}
}

// Request creates a new pending appointment on behalf of the patient and
// notifies the doctor.
func (s *Service) Request(ctx context.Context, actor model.Actor, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if actor.Role != model.RolePatient {
		return nil, apperrors.NewAuth("only patients may request appointments")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperrors.NewValidation("reason must not be empty")
	}
	if !req.DateTime.After(time.Now()) {
		return nil, apperrors.NewValidation("date_time must be in the future")
	}
	if req.DoctorID == actor.UserID {
		return nil, apperrors.NewValidation("patient and doctor must be different users")
	}

	exists, err := s.directory.Exists(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewValidation("doctor does not exist")
	}

	doctorName := req.DoctorName
	if doctorName == "" {
		if doc, err := s.directory.Get(ctx, req.DoctorID); err == nil {
			doctorName = doc.Name
		}
	}

	apt := &model.Appointment{
		PatientID:   actor.UserID,
		DoctorID:    req.DoctorID,
		PatientName: req.PatientName,
		DoctorName:  doctorName,
		DateTime:    req.DateTime.UTC(),
		Reason:      reason,
		Notes:       req.Notes,
		Status:      model.AppointmentStatusPending,
	}
	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, err
	}

	s.notify(ctx, apt.DoctorID,
		"New Appointment Request",
		fmt.Sprintf("%s requested an appointment on %s: %s",
			displayName(apt.PatientName, "A patient"), apt.DateTime.Format(time.RFC1123), apt.Reason),
		map[string]string{
			"type":          "appointment_request",
			"appointmentId": apt.ID.String(),
			"route":         "/appointments/detail/" + apt.ID.String(),
		})

	return apt, nil
}

// Get returns the record if the actor is a named participant.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParticipant(apt, actor) {
		return nil, apperrors.NewAuth("not a participant of this appointment")
	}
	return apt, nil
}

// ListForRole returns all records where the actor is a named participant,
// optionally filtered to one status, ordered by date_time ascending.
func (s *Service) ListForRole(ctx context.Context, actor model.Actor, status *model.AppointmentStatus) ([]*model.Appointment, error) {
	if actor.Role == model.RoleUnknown {
		return nil, apperrors.NewAuth("not authenticated")
	}
	return s.repo.ListByParticipant(ctx, actor.UserID, actor.Role, status)
}

// SetStatus applies one status transition. Setting the current status again
// is an idempotent no-op that succeeds without touching updated_at. A lost
// compare-and-swap race is transparently retried exactly once against the
// fresh record before the conflict is surfaced.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, target model.AppointmentStatus, actor model.Actor) (*model.Appointment, error) {
	if actor.Role == model.RoleUnknown {
		return nil, apperrors.NewAuth("not authenticated")
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, changed, err := s.applyStatus(ctx, apt, target, actor)
	if apperrors.IsVersionConflict(err) {
		s.metrics.TransitionConflicts.Inc()
		if apt, err = s.repo.Get(ctx, id); err != nil {
			return nil, err
		}
		updated, changed, err = s.applyStatus(ctx, apt, target, actor)
	}
	if err != nil {
		return nil, err
	}

	if changed {
		s.metrics.Transitions.WithLabelValues(string(apt.Status), string(target), string(actor.Role)).Inc()
		s.notifyStatusChange(ctx, updated, actor)
	}
	return updated, nil
}

func (s *Service) applyStatus(ctx context.Context, apt *model.Appointment, target model.AppointmentStatus, actor model.Actor) (*model.Appointment, bool, error) {
	// Ownership is checked before the idempotent short-circuit, so a no-op
	// call never hands the record to a non-participant.
	if err := s.authorize(apt, actor); err != nil {
		return nil, false, err
	}
	if apt.Status == target {
		return apt, false, nil
	}
	if !policy.CanTransition(apt.Status, target, actor.Role) {
		s.metrics.TransitionsRejected.WithLabelValues(string(apt.Status), string(target), string(actor.Role)).Inc()
		return nil, false, apperrors.NewInvalidTransition(string(apt.Status), string(target), string(actor.Role))
	}

	updated, err := s.repo.UpdateFields(ctx, apt.ID, map[string]interface{}{
		"status": target,
	}, apt.UpdatedAt)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// Reschedule moves the appointment to a new time. A reschedule by the
// patient resets a confirmed or scheduled appointment back to pending so
// the doctor re-confirms; a reschedule by the doctor keeps the status.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDateTime time.Time, actor model.Actor) (*model.Appointment, error) {
	if actor.Role == model.RoleUnknown {
		return nil, apperrors.NewAuth("not authenticated")
	}
	if !policy.CanReschedule(actor.Role) {
		return nil, apperrors.NewAuth("role may not reschedule appointments")
	}
	if !newDateTime.After(time.Now()) {
		return nil, apperrors.NewValidation("date_time must be in the future")
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.applyReschedule(ctx, apt, newDateTime, actor)
	if apperrors.IsVersionConflict(err) {
		s.metrics.TransitionConflicts.Inc()
		if apt, err = s.repo.Get(ctx, id); err != nil {
			return nil, err
		}
		updated, err = s.applyReschedule(ctx, apt, newDateTime, actor)
	}
	if err != nil {
		return nil, err
	}

	target := counterpart(updated, actor)
	s.notify(ctx, target,
		"Appointment Rescheduled",
		fmt.Sprintf("Your appointment has been moved to %s.", updated.DateTime.Format(time.RFC1123)),
		map[string]string{
			"type":          "appointment_update",
			"appointmentId": updated.ID.String(),
			"newStatus":     string(updated.Status),
			"route":         "/appointments/detail/" + updated.ID.String(),
		})
	return updated, nil
}

func (s *Service) applyReschedule(ctx context.Context, apt *model.Appointment, newDateTime time.Time, actor model.Actor) (*model.Appointment, error) {
	if err := s.authorize(apt, actor); err != nil {
		return nil, err
	}
	if !policy.CanBeRescheduled(apt.Status) {
		return nil, apperrors.NewInvalidTransition(string(apt.Status), string(apt.Status), string(actor.Role))
	}
	if newDateTime.Equal(apt.DateTime) {
		return nil, apperrors.NewValidation("new date_time equals the current one")
	}

	fields := map[string]interface{}{"date_time": newDateTime.UTC()}
	if actor.Role == model.RolePatient && apt.Status != model.AppointmentStatusPending {
		fields["status"] = model.AppointmentStatusPending
	}
	return s.repo.UpdateFields(ctx, apt.ID, fields, apt.UpdatedAt)
}

// Delete hard-deletes a terminal appointment. Doctors only; no
// notification is sent.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	if actor.Role != model.RoleDoctor {
		return apperrors.NewAuth("only doctors may delete appointments")
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if apt.DoctorID != actor.UserID {
		return apperrors.NewAuth("not the doctor of this appointment")
	}
	if !policy.CanBeDeletedByDoctor(apt.Status) {
		return &apperrors.AppError{
			Code:    apperrors.CodeInvalidTransition,
			Message: fmt.Sprintf("appointments in status %s cannot be deleted", apt.Status),
		}
	}
	return s.repo.Delete(ctx, id)
}

// authorize checks that the acting user is the participant its role names.
func (s *Service) authorize(apt *model.Appointment, actor model.Actor) error {
	switch actor.Role {
	case model.RolePatient:
		if apt.PatientID != actor.UserID {
			return apperrors.NewAuth("not the patient of this appointment")
		}
	case model.RoleDoctor:
		if apt.DoctorID != actor.UserID {
			return apperrors.NewAuth("not the doctor of this appointment")
		}
	case model.RoleNurse:
		if apt.NurseID == nil || *apt.NurseID != actor.UserID {
			return apperrors.NewAuth("not the assigned nurse of this appointment")
		}
	case model.RoleAdmin:
		// Admins pass ownership; the transition table still gates them.
	default:
		return apperrors.NewAuth("not authenticated")
	}
	return nil
}

func isParticipant(apt *model.Appointment, actor model.Actor) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	if apt.PatientID == actor.UserID || apt.DoctorID == actor.UserID {
		return true
	}
	return apt.NurseID != nil && *apt.NurseID == actor.UserID
}

// counterpart is the other principal participant: the doctor for a patient
// action, the patient for a doctor or nurse action.
func counterpart(apt *model.Appointment, actor model.Actor) uuid.UUID {
	if actor.Role == model.RolePatient {
		return apt.DoctorID
	}
	return apt.PatientID
}

func (s *Service) notifyStatusChange(ctx context.Context, apt *model.Appointment, actor model.Actor) {
	target := counterpart(apt, actor)

	var body string
	if target == apt.PatientID {
		body = fmt.Sprintf("Your appointment with Dr. %s has been %s.",
			displayName(apt.DoctorName, "your doctor"), apt.Status)
	} else {
		body = fmt.Sprintf("%s %s the appointment scheduled for %s.",
			displayName(apt.PatientName, "The patient"), apt.Status, apt.DateTime.Format(time.RFC1123))
	}

	s.notify(ctx, target,
		"Appointment "+capitalize(string(apt.Status)),
		body,
		map[string]string{
			"type":          "appointment_update",
			"appointmentId": apt.ID.String(),
			"newStatus":     string(apt.Status),
			"route":         "/appointments/detail/" + apt.ID.String(),
		})
}

// notify is the post-commit hook: enqueue failures are logged and never
// propagated to the caller of the mutating operation.
func (s *Service) notify(ctx context.Context, target uuid.UUID, title, body string, data map[string]string) {
	if err := s.notifier.Enqueue(ctx, target, title, body, data); err != nil {
		s.logger.Error(apperrors.NewNotification(err), "failed to enqueue notification",
			"target_id", target.String())
	}
}

func displayName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
