package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/response"
)

// ScoreHandler score ledger endpoints
type ScoreHandler struct {
	scoreSvc service.ScoreService
}

// NewScoreHandler creates a ScoreHandler
func NewScoreHandler(scoreSvc service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreSvc: scoreSvc}
}

// Accept locks in the reviewed score of an approved submission
// POST /api/v1/workflow/submissions/:id/accept
func (h *ScoreHandler) Accept(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.scoreSvc.AcceptReview(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Total
// GET /api/v1/scores/me
func (h *ScoreHandler) Total(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.scoreSvc.Total(c.Request.Context(), actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Recompute rebuilds the caller's running total from accepted submissions
// POST /api/v1/scores/me/recompute
func (h *ScoreHandler) Recompute(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.scoreSvc.Recompute(c.Request.Context(), actor.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
