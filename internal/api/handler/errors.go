package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	pkgerrors "github.com/MRsanjuedit/FPMS-Backend/pkg/errors"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/response"
)

// handleServiceError maps business errors to the envelope. Anything
// unrecognised is a 500; services have already logged the cause.
func handleServiceError(c *gin.Context, err error) {
	switch {
	// 400
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, workflow.ErrNoRouteConfigured):
		response.BadRequest(c, 12001, err.Error())
	case errors.Is(err, workflow.ErrNoAppealRouteConfigured):
		response.BadRequest(c, 12002, err.Error())
	case errors.Is(err, workflow.ErrRoleNotAssigned):
		response.BadRequest(c, 12003, err.Error())
	case errors.Is(err, workflow.ErrAlreadyReviewed):
		response.BadRequest(c, 12004, err.Error())
	case errors.Is(err, workflow.ErrNotAppealable):
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, workflow.ErrAlreadyAppealed):
		response.BadRequest(c, 12006, err.Error())
	case errors.Is(err, service.ErrEvidenceTooLarge):
		response.BadRequest(c, 12007, err.Error())
	case errors.Is(err, service.ErrEvidenceDisabled):
		response.BadRequest(c, 12008, err.Error())
	case errors.Is(err, service.ErrNotAcceptable):
		response.BadRequest(c, 13001, err.Error())
	case errors.Is(err, service.ErrInvalidNamespace):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, service.ErrCriterionNotVerified):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, workflow.ErrInvalidRules):
		response.BadRequest(c, 15001, err.Error())

	// 401
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, err.Error())

	// 403
	case errors.Is(err, service.ErrForbidden), errors.Is(err, workflow.ErrNotOwner):
		response.Forbidden(c, 10003, err.Error())
	case errors.Is(err, service.ErrUnresolvedRole):
		response.Forbidden(c, 10003, err.Error())

	// 404
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 12404, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11404, err.Error())
	case errors.Is(err, service.ErrCriterionNotFound):
		response.NotFound(c, 14404, err.Error())
	case errors.Is(err, service.ErrAppealNotFound):
		response.NotFound(c, 14405, err.Error())
	case errors.Is(err, service.ErrFormNotFound):
		response.NotFound(c, 15404, err.Error())

	// 409
	case errors.Is(err, service.ErrAlreadyAccepted):
		response.Conflict(c, 13009, err.Error())
	case errors.Is(err, service.ErrAppealPending):
		response.Conflict(c, 14009, err.Error())
	case errors.Is(err, service.ErrAppealAlreadyVerified):
		response.Conflict(c, 14010, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10009, "The record was changed by someone else, please retry")

	default:
		response.InternalError(c)
	}
}
