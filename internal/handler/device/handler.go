// Package device manages push registration tokens for the authenticated
// user.
package device

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/appointment-api/internal/handler"
	"github.com/mamacare/appointment-api/internal/middleware"
	"github.com/mamacare/appointment-api/internal/repository"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

type Handler struct {
	tokens repository.DeviceTokenRepository
}

func NewHandler(tokens repository.DeviceTokenRepository) *Handler {
	return &Handler{tokens: tokens}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	devices := r.Group("/devices")
	{
		devices.POST("", h.Register)
		devices.DELETE("", h.Unregister)
	}
}

type tokenRequest struct {
	Token string `json:"token" binding:"required,max=4096"`
}

// Register records a device token. Re-registering the same token is a
// no-op.
func (h *Handler) Register(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		handler.RespondError(c, apperrors.NewAuth("not authenticated"))
		return
	}

	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondValidation(c, err)
		return
	}

	if err := h.tokens.Add(c.Request.Context(), actor.UserID, req.Token); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Unregister(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		handler.RespondError(c, apperrors.NewAuth("not authenticated"))
		return
	}

	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondValidation(c, err)
		return
	}

	if err := h.tokens.Remove(c.Request.Context(), actor.UserID, req.Token); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
