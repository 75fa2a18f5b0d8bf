package workflow

import "errors"

var (
	ErrNoRouteConfigured       = errors.New("no reviewer role configured for this role")
	ErrNoAppealRouteConfigured = errors.New("no appeal role configured for this role")
	ErrRoleNotAssigned         = errors.New("your role is not assigned to review this submission")
	ErrAlreadyReviewed         = errors.New("this submission step has already been reviewed")
	ErrNotOwner                = errors.New("only the submitting faculty may perform this action")
	ErrNotAppealable           = errors.New("only an approved, unaccepted submission can be appealed")
	ErrAlreadyAppealed         = errors.New("this submission has already been appealed")
	ErrInvalidRules            = errors.New("workflow rules contain invalid roles")
)
