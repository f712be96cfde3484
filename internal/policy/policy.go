// Package policy holds the appointment status transition rules. Everything
// here is a pure function of status and role; no I/O, no clock.
package policy

import (
	"github.com/mamacare/appointment-api/internal/model"
)

type transition struct {
	from model.AppointmentStatus
	to   model.AppointmentStatus
}

// transitions maps each legal status move to the roles allowed to make it.
// Terminal statuses (completed, cancelled, declined) have no outgoing edges.
var transitions = map[transition][]model.Role{
	{model.AppointmentStatusPending, model.AppointmentStatusConfirmed}:   {model.RoleDoctor},
	{model.AppointmentStatusPending, model.AppointmentStatusDeclined}:    {model.RoleDoctor},
	{model.AppointmentStatusPending, model.AppointmentStatusCancelled}:   {model.RolePatient},
	{model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled}: {model.RolePatient},
	{model.AppointmentStatusConfirmed, model.AppointmentStatusScheduled}: {model.RoleDoctor, model.RoleNurse},
	{model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted}: {model.RoleDoctor},
	{model.AppointmentStatusScheduled, model.AppointmentStatusCompleted}: {model.RoleDoctor},
}

// CanTransition reports whether role may move an appointment from one
// status to another.
func CanTransition(from, to model.AppointmentStatus, role model.Role) bool {
	roles, ok := transitions[transition{from, to}]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanBeApprovedOrDeclined reports whether a doctor decision is still open.
func CanBeApprovedOrDeclined(s model.AppointmentStatus) bool {
	return s == model.AppointmentStatusPending
}

// CanBeCancelled reports whether cancellation is still meaningful for this
// status. Note this is wider than the transition table: the table grants the
// patient no scheduled->cancelled edge, so a cancel attempt on a scheduled
// appointment passes this gate and then fails as an invalid transition.
func CanBeCancelled(s model.AppointmentStatus) bool {
	switch s {
	case model.AppointmentStatusPending, model.AppointmentStatusConfirmed, model.AppointmentStatusScheduled:
		return true
	}
	return false
}

// CanBeCompletedByDoctor reports whether the doctor may mark it completed.
func CanBeCompletedByDoctor(s model.AppointmentStatus) bool {
	return s == model.AppointmentStatusConfirmed || s == model.AppointmentStatusScheduled
}

// CanBeRescheduled reports whether the date may still be changed.
func CanBeRescheduled(s model.AppointmentStatus) bool {
	switch s {
	case model.AppointmentStatusPending, model.AppointmentStatusConfirmed, model.AppointmentStatusScheduled:
		return true
	}
	return false
}

// CanBeDeletedByDoctor reports whether the record may be purged. Only
// terminal records qualify.
func CanBeDeletedByDoctor(s model.AppointmentStatus) bool {
	return s.Terminal()
}

// CanReschedule reports whether role may issue a reschedule at all. The
// nurse role is read-mostly and only gets the confirmed->scheduled move.
func CanReschedule(role model.Role) bool {
	return role == model.RolePatient || role == model.RoleDoctor
}
