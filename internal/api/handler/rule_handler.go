package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/response"
)

// RuleHandler workflow rules and rubric reference data
type RuleHandler struct {
	ruleSvc service.RuleService
}

// NewRuleHandler creates a RuleHandler
func NewRuleHandler(ruleSvc service.RuleService) *RuleHandler {
	return &RuleHandler{ruleSvc: ruleSvc}
}

// ListRules
// GET /api/v1/workflow/rules
func (h *RuleHandler) ListRules(c *gin.Context) {
	result, err := h.ruleSvc.ListRules(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ListForms forms offered to the caller's role
// GET /api/v1/forms
func (h *RuleHandler) ListForms(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.ruleSvc.ApplicableForms(c.Request.Context(), actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetForm rubric tree of a form
// GET /api/v1/forms/:id
func (h *RuleHandler) GetForm(c *gin.Context) {
	result, err := h.ruleSvc.GetForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
