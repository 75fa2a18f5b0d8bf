package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
)

// SkippedRemark written on assignments made moot by another reviewer.
const SkippedRemark = "Skipped due to parallel ANY_ONE_REVIEWED completion"

const (
	idSeparator = "__"
	// ids longer than this are stored as a digest to fit the key column
	maxReadableIDLen = 200
)

// SubmissionID deterministic key of one (faculty, form, criteria, task) claim.
// Every byte outside [A-Za-z0-9-] is written as ~XX, so distinct tuples never
// share an id. Over-long keys collapse to "h_" plus the sha256 of the
// length-prefixed parts.
func SubmissionID(facultyID, formID, criteriaID, taskID string) string {
	parts := []string{
		strings.TrimSpace(facultyID),
		strings.TrimSpace(formID),
		strings.TrimSpace(criteriaID),
		strings.TrimSpace(taskID),
	}
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = escapeIDPart(p)
	}
	id := strings.Join(escaped, idSeparator)
	if len(id) <= maxReadableIDLen {
		return id
	}
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	return "h_" + hex.EncodeToString(h.Sum(nil))
}

func escapeIDPart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "~%02X", c)
		}
	}
	return b.String()
}

// ClampScore bounds score to [0, maxMarks]; non-finite input becomes 0.
func ClampScore(score, maxMarks float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	if math.IsNaN(maxMarks) || math.IsInf(maxMarks, 0) || maxMarks < 0 {
		maxMarks = 0
	}
	return math.Max(0, math.Min(score, maxMarks))
}

// SubmitInput a faculty claim against one rubric task.
type SubmitInput struct {
	FormID       string
	CriteriaID   string
	TaskID       string
	ClaimedScore float64
	MaxMarks     float64
	EvidenceURL  string
	Description  string
}

// NewSubmission builds the initial record for a first-time submission.
func NewSubmission(actor Actor, in SubmitInput, table *RoutingTable, now time.Time) (*model.Submission, error) {
	submitTo := table.Resolve(actor.RoleKey, model.FlowSubmission)
	if len(submitTo) == 0 {
		return nil, ErrNoRouteConfigured
	}
	appealTo := table.Resolve(actor.RoleKey, model.FlowAppeal)

	maxMarks := in.MaxMarks
	if math.IsNaN(maxMarks) || math.IsInf(maxMarks, 0) || maxMarks < 0 {
		maxMarks = 0
	}

	sub := &model.Submission{
		SubmissionID:     SubmissionID(actor.UserID, in.FormID, in.CriteriaID, in.TaskID),
		FacultyID:        actor.UserID,
		FacultyUID:       actor.UID,
		FacultyEmail:     actor.Email,
		FacultyName:      actor.Name,
		FacultyRole:      actor.Role,
		FacultyRoleKey:   actor.RoleKey,
		College:          actor.College,
		Department:       actor.Department,
		FormID:           strings.TrimSpace(in.FormID),
		CriteriaID:       strings.TrimSpace(in.CriteriaID),
		TaskID:           strings.TrimSpace(in.TaskID),
		ClaimedScore:     ClampScore(in.ClaimedScore, maxMarks),
		MaxMarks:         maxMarks,
		Status:           model.SubmissionStatusSubmitted,
		CurrentFlow:      model.FlowSubmission,
		CompletionPolicy: model.CompletionAnyOneReviewed,
		Assignments:      newAssignments(submitTo, now),
		SubmitToRoles:    submitTo,
		AppealToRoles:    appealTo,
		EvidenceURL:      in.EvidenceURL,
		Description:      in.Description,
	}
	sub.ActiveRoleKeys = activeKeys(sub.Assignments)
	sub.CreatedAt = now
	sub.UpdatedAt = now
	sub.CreatedBy = &actor.UserID
	sub.UpdatedBy = &actor.UserID
	sub.Version = 1
	return sub, nil
}

// ReviewInput a reviewer's decision. A nil score keeps the claimed score.
type ReviewInput struct {
	VerifiedScore *float64
	Remarks       string
}

// ReviewOutcome what a review changed.
type ReviewOutcome struct {
	Flow          string
	VerifiedScore float64
	NextRoles     []string
	Finalized     bool
}

// ApplyReview records the actor's review under the any-one-reviewed policy and
// advances the submission to the next routing step or to approved.
func ApplyReview(sub *model.Submission, actor Actor, in ReviewInput, table *RoutingTable, now time.Time) (*ReviewOutcome, error) {
	mine := sub.AssignmentFor(actor.RoleKey)
	if mine == nil {
		return nil, ErrRoleNotAssigned
	}
	if mine.Status != model.AssignmentSubmitted || sub.Status == model.SubmissionStatusApproved {
		return nil, ErrAlreadyReviewed
	}

	score := sub.ClaimedScore
	if in.VerifiedScore != nil {
		score = ClampScore(*in.VerifiedScore, sub.MaxMarks)
	}

	reviewedAt := now
	reviewer := actor.UserID
	mine.Status = model.AssignmentReviewed
	mine.ReviewedAt = &reviewedAt
	mine.ReviewerUserID = &reviewer
	mine.VerifiedScore = &score
	mine.Remarks = strings.TrimSpace(in.Remarks)

	for i := range sub.Assignments {
		a := &sub.Assignments[i]
		if a != mine && a.Status == model.AssignmentSubmitted {
			a.Status = model.AssignmentSkipped
			a.Remarks = SkippedRemark
		}
	}

	flow := model.FlowSubmission
	if sub.CurrentFlow == model.FlowAppeal || sub.Status == model.SubmissionStatusAppealed {
		flow = model.FlowAppeal
	}
	next := table.Resolve(actor.RoleKey, flow)

	sub.VerifiedScore = &score
	sub.ReviewedByRole = actor.Role
	sub.ReviewedByRoleKey = actor.RoleKey
	sub.ReviewedByUserID = actor.UserID
	sub.CurrentFlow = flow

	if len(next) > 0 {
		sub.Assignments = mergeAssignments(sub.Assignments, next, now)
		if flow == model.FlowAppeal {
			sub.Status = model.SubmissionStatusAppealed
		} else {
			sub.Status = model.SubmissionStatusSubmitted
		}
	} else {
		sub.Status = model.SubmissionStatusApproved
	}
	sub.ActiveRoleKeys = activeKeys(sub.Assignments)
	stamp(sub, actor, now)

	return &ReviewOutcome{
		Flow:          flow,
		VerifiedScore: score,
		NextRoles:     next,
		Finalized:     len(next) == 0,
	}, nil
}

// AppealInput the owner's appeal request. RequestedScore is optional.
type AppealInput struct {
	Reason         string
	RequestedScore *float64
}

// ApplyAppeal re-routes an approved submission into the appeal flow.
// Only the owner may appeal, once, and never after accepting the score.
func ApplyAppeal(sub *model.Submission, actor Actor, in AppealInput, table *RoutingTable, now time.Time) error {
	if !actor.Owns(sub.FacultyID, sub.FacultyUID, sub.FacultyEmail) {
		return ErrNotOwner
	}
	if sub.LastAppeal != nil {
		return ErrAlreadyAppealed
	}
	if sub.Status != model.SubmissionStatusApproved || sub.AcceptedAt != nil {
		return ErrNotAppealable
	}

	appealTo := appealRoutes(sub, actor.RoleKey, table)
	if len(appealTo) == 0 {
		return ErrNoAppealRouteConfigured
	}

	var requested *float64
	if in.RequestedScore != nil && !math.IsNaN(*in.RequestedScore) && !math.IsInf(*in.RequestedScore, 0) {
		v := ClampScore(*in.RequestedScore, sub.MaxMarks)
		requested = &v
	}

	sub.Assignments = newAssignments(appealTo, now)
	sub.ActiveRoleKeys = activeKeys(sub.Assignments)
	sub.AppealToRoles = appealTo
	sub.Status = model.SubmissionStatusAppealed
	sub.CurrentFlow = model.FlowAppeal
	sub.LastAppeal = &model.AppealRequest{
		RequestedByUserID:  actor.UserID,
		RequestedByRole:    actor.Role,
		RequestedByRoleKey: actor.RoleKey,
		Reason:             strings.TrimSpace(in.Reason),
		RequestedScore:     requested,
		CreatedAt:          now,
	}
	stamp(sub, actor, now)
	return nil
}

// CanReview the actor's role is active and its own assignment still open.
func CanReview(sub *model.Submission, roleKey string) bool {
	if sub.Status != model.SubmissionStatusSubmitted && sub.Status != model.SubmissionStatusAppealed {
		return false
	}
	if !sub.ActiveRoleKeys.Contains(roleKey) {
		return false
	}
	a := sub.AssignmentFor(roleKey)
	return a != nil && a.Status == model.AssignmentSubmitted
}

// CanAppeal mirrors the ApplyAppeal guard for an owner with roleKey.
// A nil table falls back to the roles stored at submit time.
func CanAppeal(sub *model.Submission, roleKey string, table *RoutingTable) bool {
	return sub.Status == model.SubmissionStatusApproved &&
		sub.LastAppeal == nil &&
		sub.AcceptedAt == nil &&
		len(appealRoutes(sub, roleKey, table)) > 0
}

// appealRoutes live appeal routing for roleKey, else the roles stored on sub.
func appealRoutes(sub *model.Submission, roleKey string, table *RoutingTable) []string {
	if roles := table.Resolve(roleKey, model.FlowAppeal); len(roles) > 0 {
		return roles
	}
	return NormalizeRoleList(sub.AppealToRoles)
}

// ── helpers ──

func newAssignments(roles []string, now time.Time) []model.Assignment {
	out := make([]model.Assignment, 0, len(roles))
	for _, r := range roles {
		out = append(out, model.Assignment{
			Role:       DisplayRole(r),
			RoleKey:    NormalizeRoleKey(r),
			Status:     model.AssignmentSubmitted,
			AssignedAt: now,
		})
	}
	return out
}

// mergeAssignments keeps every earlier entry and opens a new round for each
// routed role that has no open assignment yet.
func mergeAssignments(existing []model.Assignment, roles []string, now time.Time) []model.Assignment {
	out := append([]model.Assignment(nil), existing...)
	for _, a := range newAssignments(roles, now) {
		open := false
		for i := range out {
			if out[i].RoleKey == a.RoleKey && out[i].Status == model.AssignmentSubmitted {
				open = true
				break
			}
		}
		if !open {
			out = append(out, a)
		}
	}
	return out
}

func activeKeys(assignments []model.Assignment) model.RoleKeySet {
	keys := model.RoleKeySet{}
	for _, a := range assignments {
		if a.Status == model.AssignmentSubmitted && !keys.Contains(a.RoleKey) {
			keys = append(keys, a.RoleKey)
		}
	}
	return keys
}

func stamp(sub *model.Submission, actor Actor, now time.Time) {
	by := actor.UserID
	sub.UpdatedAt = now
	sub.UpdatedBy = &by
}
