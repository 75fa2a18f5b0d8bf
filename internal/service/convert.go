package service

import (
	"time"

	"github.com/MRsanjuedit/FPMS-Backend/internal/dto"
	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// toSubmissionResponse viewer and the routing in force decide the
// can_appeal / can_accept flags.
func toSubmissionResponse(sub *model.Submission, viewer *workflow.Actor, table *workflow.RoutingTable) dto.SubmissionResponse {
	owner := viewer != nil && viewer.Owns(sub.FacultyID, sub.FacultyUID, sub.FacultyEmail)

	assignments := make([]dto.AssignmentResponse, 0, len(sub.Assignments))
	for _, a := range sub.Assignments {
		assignments = append(assignments, dto.AssignmentResponse{
			Role:           a.Role,
			RoleKey:        a.RoleKey,
			Status:         a.Status,
			AssignedAt:     formatTime(a.AssignedAt),
			ReviewedAt:     formatTimePtr(a.ReviewedAt),
			ReviewerUserID: a.ReviewerUserID,
			VerifiedScore:  a.VerifiedScore,
			Remarks:        a.Remarks,
		})
	}

	var appeal *dto.AppealInfo
	if la := sub.LastAppeal; la != nil {
		appeal = &dto.AppealInfo{
			RequestedByUserID: la.RequestedByUserID,
			RequestedByRole:   la.RequestedByRole,
			Reason:            la.Reason,
			RequestedScore:    la.RequestedScore,
			CreatedAt:         formatTime(la.CreatedAt),
		}
	}

	active := []string(sub.ActiveRoleKeys)
	if active == nil {
		active = []string{}
	}

	return dto.SubmissionResponse{
		SubmissionID:     sub.SubmissionID,
		FacultyID:        sub.FacultyID,
		FacultyName:      sub.FacultyName,
		FacultyEmail:     sub.FacultyEmail,
		FacultyRole:      sub.FacultyRole,
		College:          sub.College,
		Department:       sub.Department,
		FormID:           sub.FormID,
		CriteriaID:       sub.CriteriaID,
		TaskID:           sub.TaskID,
		ClaimedScore:     sub.ClaimedScore,
		MaxMarks:         sub.MaxMarks,
		VerifiedScore:    sub.VerifiedScore,
		Status:           sub.Status,
		CurrentFlow:      sub.CurrentFlow,
		CompletionPolicy: sub.CompletionPolicy,
		Assignments:      assignments,
		ActiveRoleKeys:   active,
		SubmitToRoles:    nonNil(sub.SubmitToRoles),
		AppealToRoles:    nonNil(sub.AppealToRoles),
		LastAppeal:       appeal,
		EvidenceURL:      sub.EvidenceURL,
		Description:      sub.Description,
		ReviewedByRole:   sub.ReviewedByRole,
		ReviewedByUserID: sub.ReviewedByUserID,
		AcceptedAt:       formatTimePtr(sub.AcceptedAt),
		CanAppeal:        owner && workflow.CanAppeal(sub, viewer.RoleKey, table),
		CanAccept:        owner && sub.Status == model.SubmissionStatusApproved && sub.AcceptedAt == nil,
		Version:          sub.Version,
		CreatedAt:        formatTime(sub.CreatedAt),
		UpdatedAt:        formatTime(sub.UpdatedAt),
	}
}

func toCriterionResponse(c *model.ModuleCriterion) dto.CriterionResponse {
	return dto.CriterionResponse{
		CriterionID:      c.CriterionID,
		Namespace:        c.Namespace,
		OwnerID:          c.OwnerID,
		SubsectionID:     c.SubsectionID,
		SubsectionName:   c.SubsectionName,
		Name:             c.Name,
		ClaimedScore:     c.ClaimedScore,
		MaxScore:         c.MaxScore,
		Evidence:         c.Evidence,
		Description:      c.Description,
		ReviewerScore:    c.ReviewerScore,
		ReviewerRemarks:  c.ReviewerRemarks,
		IsVerified:       c.IsVerified,
		IsAppealed:       c.IsAppealed,
		AdjudicatedScore: c.AdjudicatedScore,
		FinalScore:       c.FinalScore(),
		Version:          c.Version,
	}
}

func toLegacyAppealResponse(a *model.LegacyAppeal) dto.LegacyAppealResponse {
	return dto.LegacyAppealResponse{
		AppealID:            a.AppealID,
		Namespace:           a.Namespace,
		CriterionID:         a.CriterionID,
		FacultyID:           a.FacultyID,
		SubsectionID:        a.SubsectionID,
		CriterionName:       a.CriterionName,
		ClaimedScore:        a.ClaimedScore,
		ReviewerScore:       a.ReviewerScore,
		RequestedScore:      a.RequestedScore,
		Reason:              a.Reason,
		Evidence:            a.Evidence,
		Status:              a.Status,
		VerifiedByCommittee: a.VerifiedByCommittee,
		CommitteeScore:      a.CommitteeScore,
		CommitteeRemarks:    a.CommitteeRemarks,
		CommitteeVerifiedAt: formatTimePtr(a.CommitteeVerifiedAt),
		CreatedAt:           formatTime(a.CreatedAt),
	}
}
