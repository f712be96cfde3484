package controller

import (
	"context"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
)

// DoctorController is the doctor's view: triage incoming requests, mark
// visits scheduled or completed, and purge terminal records.
type DoctorController struct {
	view
}

func NewDoctorController(svc Service, actor model.Actor) *DoctorController {
	return &DoctorController{view: newView(svc, actor)}
}

// Approve confirms a pending request.
func (c *DoctorController) Approve(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return c.ChangeStatus(ctx, id, model.AppointmentStatusConfirmed)
}

// Decline rejects a pending request.
func (c *DoctorController) Decline(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return c.ChangeStatus(ctx, id, model.AppointmentStatusDeclined)
}

// MarkScheduled moves a confirmed appointment onto the day schedule.
func (c *DoctorController) MarkScheduled(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return c.ChangeStatus(ctx, id, model.AppointmentStatusScheduled)
}

// Complete closes out a confirmed or scheduled visit.
func (c *DoctorController) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return c.ChangeStatus(ctx, id, model.AppointmentStatusCompleted)
}

// Delete removes a terminal appointment. The optimistic phase removes the
// record from the cached list; on failure the snapshot is restored.
func (c *DoctorController) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.beginMutation(id); err != nil {
		return err
	}
	defer c.endMutation(id)

	c.mu.Lock()
	var snapshot *model.Appointment
	for _, r := range c.records {
		if r.ID == id {
			snapshot = r.Clone()
			break
		}
	}
	c.removeLocked(id)
	c.mu.Unlock()

	err := c.svc.Delete(ctx, id, c.actor)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if snapshot != nil {
			c.insertLocked(snapshot)
		}
		c.lastErr = err
		return err
	}
	c.lastErr = nil
	return nil
}
