package service

import (
	"errors"

	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	pkgerrors "github.com/MRsanjuedit/FPMS-Backend/pkg/errors"
)

// ── shared business errors ──

var (
	ErrValidation = errors.New("invalid request")
	ErrForbidden  = errors.New("you do not have access to this resource")
)

// rejectionReason short metric label for an expected business error.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, workflow.ErrNoRouteConfigured):
		return "no_route"
	case errors.Is(err, workflow.ErrNoAppealRouteConfigured):
		return "no_appeal_route"
	case errors.Is(err, workflow.ErrRoleNotAssigned):
		return "role_not_assigned"
	case errors.Is(err, workflow.ErrAlreadyReviewed):
		return "already_reviewed"
	case errors.Is(err, workflow.ErrNotOwner), errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, workflow.ErrNotAppealable), errors.Is(err, workflow.ErrAlreadyAppealed):
		return "not_appealable"
	case errors.Is(err, ErrNotAcceptable):
		return "not_acceptable"
	case errors.Is(err, ErrAlreadyAccepted):
		return "already_accepted"
	case errors.Is(err, ErrAppealAlreadyVerified):
		return "appeal_closed"
	case errors.Is(err, ErrAppealPending):
		return "appeal_pending"
	case errors.Is(err, ErrCriterionNotVerified):
		return "not_verified"
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		return "conflict"
	}
	return ""
}
