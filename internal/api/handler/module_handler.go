package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MRsanjuedit/FPMS-Backend/internal/dto"
	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/response"
)

// ModuleHandler per-module criteria and committee appeal endpoints
type ModuleHandler struct {
	moduleSvc service.ModuleService
}

// NewModuleHandler creates a ModuleHandler
func NewModuleHandler(moduleSvc service.ModuleService) *ModuleHandler {
	return &ModuleHandler{moduleSvc: moduleSvc}
}

// SubmitCriteria
// POST /api/v1/modules/:ns/criteria
func (h *ModuleHandler) SubmitCriteria(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SubmitCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request parameters")
		return
	}

	result, err := h.moduleSvc.SubmitCriteria(c.Request.Context(), actor, c.Param("ns"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ListCriteria the caller's own criteria in a module
// GET /api/v1/modules/:ns/criteria
func (h *ModuleHandler) ListCriteria(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.moduleSvc.ListCriteria(c.Request.Context(), actor, c.Param("ns"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Total the caller's final-score total in a module
// GET /api/v1/modules/:ns/total
func (h *ModuleHandler) Total(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	ns := c.Param("ns")
	total, err := h.moduleSvc.UserTotal(c.Request.Context(), ns, actor.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, dto.ModuleTotalResponse{Namespace: ns, UserID: actor.UserID, Total: total})
}

// ListForReview criteria of the verifier's scope
// GET /api/v1/modules/:ns/submissions
func (h *ModuleHandler) ListForReview(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.moduleSvc.ListForReview(c.Request.Context(), actor, c.Param("ns"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// VerifyCriterion
// PUT /api/v1/modules/:ns/criteria/:faculty_id/:subsection_id/:name/verify
func (h *ModuleHandler) VerifyCriterion(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.VerifyCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request parameters")
		return
	}

	result, err := h.moduleSvc.VerifyCriterion(c.Request.Context(), actor,
		c.Param("ns"), c.Param("faculty_id"), c.Param("subsection_id"), c.Param("name"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// RaiseAppeal
// POST /api/v1/modules/:ns/criteria/:subsection_id/:name/appeal
func (h *ModuleHandler) RaiseAppeal(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.RaiseModuleAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request parameters")
		return
	}

	result, err := h.moduleSvc.RaiseAppeal(c.Request.Context(), actor,
		c.Param("ns"), c.Param("subsection_id"), c.Param("name"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// MyAppeals
// GET /api/v1/appeals/mine
func (h *ModuleHandler) MyAppeals(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.moduleSvc.MyAppeals(c.Request.Context(), actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ListAppeals committee queue, optionally filtered by status
// GET /api/v1/appeals?status=
func (h *ModuleHandler) ListAppeals(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.ListAppealsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "status must be pending or committee_verified")
		return
	}

	result, err := h.moduleSvc.ListAppeals(c.Request.Context(), actor, q.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// VerifyAppeal closes an appeal with the committee score
// PUT /api/v1/appeals/:id/verify
func (h *ModuleHandler) VerifyAppeal(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.VerifyAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request parameters")
		return
	}

	result, err := h.moduleSvc.VerifyAppeal(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
