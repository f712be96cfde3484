package controller

import (
	"context"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
)

// PatientController is the patient's view: request new appointments and
// cancel pending or confirmed ones.
type PatientController struct {
	view
}

func NewPatientController(svc Service, actor model.Actor) *PatientController {
	return &PatientController{view: newView(svc, actor)}
}

// Request books a new appointment and appends it to the cached list on
// success. There is no optimistic phase since the record does not exist
// until the store accepts it.
func (c *PatientController) Request(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	apt, err := c.svc.Request(ctx, c.actor, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		return nil, err
	}
	c.lastErr = nil
	c.insertLocked(apt)
	return apt, nil
}

// Cancel withdraws a pending or confirmed appointment.
func (c *PatientController) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return c.ChangeStatus(ctx, id, model.AppointmentStatusCancelled)
}
