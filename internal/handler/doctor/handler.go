// Package doctor serves the doctor directory used by the booking flow.
package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/handler"
	"github.com/mamacare/appointment-api/internal/service/directory"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

type Handler struct {
	directory *directory.Service
}

func NewHandler(directory *directory.Service) *Handler {
	return &Handler{directory: directory}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListAvailable)
		doctors.GET("/:id", h.Get)
	}
}

// ListAvailable returns bookable doctors, optionally filtered by specialty.
func (h *Handler) ListAvailable(c *gin.Context) {
	var specialty *string
	if s := c.Query("specialty"); s != "" {
		specialty = &s
	}

	doctors, err := h.directory.ListAvailable(c.Request.Context(), specialty)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondSuccess(c, http.StatusOK, doctors)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.NewValidation("invalid doctor id"))
		return
	}

	doc, err := h.directory.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondSuccess(c, http.StatusOK, doc)
}
