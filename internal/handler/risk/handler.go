// Package risk exposes the maternal risk assessment endpoint.
package risk

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/appointment-api/internal/handler"
	"github.com/mamacare/appointment-api/internal/model"
	"github.com/mamacare/appointment-api/internal/service/risk"
)

type Handler struct {
	svc *risk.Service
}

func NewHandler(svc *risk.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/risk/assess", h.Assess)
}

func (h *Handler) Assess(c *gin.Context) {
	var req model.RiskAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondValidation(c, err)
		return
	}

	result, err := h.svc.Assess(&req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondSuccess(c, http.StatusOK, result)
}
