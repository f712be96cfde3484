// Package appointment exposes the appointment lifecycle over HTTP. Every
// endpoint resolves the authenticated actor's controller from the registry
// so responses come from the actor's cached view, kept fresh by the
// optimistic commit protocol.
package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/controller"
	"github.com/mamacare/appointment-api/internal/handler"
	"github.com/mamacare/appointment-api/internal/middleware"
	"github.com/mamacare/appointment-api/internal/model"
	"github.com/mamacare/appointment-api/internal/service/appointment"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

type Handler struct {
	registry *controller.Registry
	svc      *appointment.Service
}

func NewHandler(registry *controller.Registry, svc *appointment.Service) *Handler {
	return &Handler{registry: registry, svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appts := r.Group("/appointments")
	{
		appts.POST("", h.Request)
		appts.GET("", h.List)
		appts.GET("/:id", h.Get)
		appts.PATCH("/:id/status", h.UpdateStatus)
		appts.PATCH("/:id/reschedule", h.Reschedule)
		appts.DELETE("/:id", h.Delete)
	}
}

// Request books a new appointment. Patients only.
func (h *Handler) Request(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		handler.RespondError(c, apperrors.NewAuth("not authenticated"))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondValidation(c, err)
		return
	}

	ctrl, err := h.registry.Patient(actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	apt, err := ctrl.Request(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondSuccess(c, http.StatusCreated, apt)
}

// List returns the actor's appointments, optionally filtered by status.
// The filter is applied through the controller so the cached view and the
// response stay in agreement.
func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		handler.RespondError(c, apperrors.NewAuth("not authenticated"))
		return
	}

	ctrl, err := h.registry.For(actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	var filter *model.AppointmentStatus
	if raw := c.Query("status"); raw != "" {
		// The unknown-to-pending decode rule is for storage reads only; a
		// garbled query value is a client error, not a pending filter.
		status := model.ParseAppointmentStatus(raw)
		if string(status) != raw {
			handler.RespondError(c, apperrors.NewValidation("unknown status filter: "+raw))
			return
		}
		filter = &status
	}

	if err := ctrl.SetFilter(c.Request.Context(), filter); err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondSuccess(c, http.StatusOK, ctrl.Records())
}

// Get returns a single appointment the actor participates in.
func (h *Handler) Get(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		handler.RespondError(c, apperrors.NewAuth("not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.NewValidation("invalid appointment id"))
		return
	}

	apt, err := h.svc.Get(c.Request.Context(), id, actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondSuccess(c, http.StatusOK, apt)
}

// UpdateStatus applies one lifecycle transition through the actor's
// controller.
func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		handler.RespondError(c, apperrors.NewAuth("not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.NewValidation("invalid appointment id"))
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondValidation(c, err)
		return
	}

	ctrl, err := h.registry.For(actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	apt, err := ctrl.ChangeStatus(c.Request.Context(), id, model.ParseAppointmentStatus(req.Status))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondSuccess(c, http.StatusOK, apt)
}

// Reschedule moves an appointment to a new time.
func (h *Handler) Reschedule(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		handler.RespondError(c, apperrors.NewAuth("not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.NewValidation("invalid appointment id"))
		return
	}

	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondValidation(c, err)
		return
	}

	ctrl, err := h.registry.For(actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	apt, err := ctrl.Reschedule(c.Request.Context(), id, req.DateTime)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondSuccess(c, http.StatusOK, apt)
}

// Delete removes a terminal appointment. Doctors only.
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		handler.RespondError(c, apperrors.NewAuth("not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.NewValidation("invalid appointment id"))
		return
	}

	ctrl, err := h.registry.Doctor(actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	if err := ctrl.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
