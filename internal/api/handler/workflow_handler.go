package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MRsanjuedit/FPMS-Backend/internal/dto"
	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/response"
)

// WorkflowHandler submission, review and appeal endpoints
type WorkflowHandler struct {
	workflowSvc service.WorkflowService
}

// NewWorkflowHandler creates a WorkflowHandler
func NewWorkflowHandler(workflowSvc service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowSvc: workflowSvc}
}

// SubmitTask claims a score against a rubric task.
// Accepts JSON, or multipart form data with an optional "evidence" file.
// POST /api/v1/workflow/submissions/task
func (h *WorkflowHandler) SubmitTask(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SubmitTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request parameters")
		return
	}

	var evidence *service.EvidenceUpload
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("evidence")
		if err == nil {
			f, err := fh.Open()
			if err != nil {
				response.BadRequest(c, 10001, "Unable to read the evidence file")
				return
			}
			defer f.Close()
			evidence = &service.EvidenceUpload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Body:        f,
			}
		}
	}

	result, err := h.workflowSvc.Submit(c.Request.Context(), actor, &req, evidence)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if result.Created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// Review records the caller's review of a pending submission
// POST /api/v1/workflow/submissions/:id/review
func (h *WorkflowHandler) Review(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	// every field is optional, so an empty body is a plain approval
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "Invalid request parameters")
		return
	}

	result, err := h.workflowSvc.Review(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Appeal sends an approved submission to the appeal reviewers
// POST /api/v1/workflow/submissions/:id/appeal
func (h *WorkflowHandler) Appeal(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.AppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request parameters")
		return
	}

	result, err := h.workflowSvc.Appeal(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ReviewQueue submissions waiting on the caller's role
// GET /api/v1/workflow/submissions/review-queue
func (h *WorkflowHandler) ReviewQueue(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.workflowSvc.ReviewQueue(c.Request.Context(), actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Reviewed submissions the caller has reviewed
// GET /api/v1/workflow/submissions/my-reviewed
func (h *WorkflowHandler) Reviewed(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.workflowSvc.Reviewed(c.Request.Context(), actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// MyStatuses the caller's submissions for a form, keyed by task
// GET /api/v1/workflow/submissions/my-statuses?form_id=
func (h *WorkflowHandler) MyStatuses(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.MyStatusesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "form_id is required")
		return
	}

	result, err := h.workflowSvc.MyStatuses(c.Request.Context(), actor, &q)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetSubmission
// GET /api/v1/workflow/submissions/:id
func (h *WorkflowHandler) GetSubmission(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.workflowSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// History immutable review log of a submission
// GET /api/v1/workflow/submissions/:id/history
func (h *WorkflowHandler) History(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.workflowSvc.History(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
