package controller

import (
	"context"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
)

// NurseController is the nurse's read-mostly view over assigned
// appointments. The only mutation a nurse performs is moving a confirmed
// appointment to scheduled.
type NurseController struct {
	view
}

func NewNurseController(svc Service, actor model.Actor) *NurseController {
	return &NurseController{view: newView(svc, actor)}
}

// MarkScheduled moves a confirmed appointment onto the day schedule.
func (c *NurseController) MarkScheduled(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return c.ChangeStatus(ctx, id, model.AppointmentStatusScheduled)
}
