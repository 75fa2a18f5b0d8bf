package model

import "time"

// Submission status
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusAppealed  = "appealed"
	SubmissionStatusApproved  = "approved"
)

// Flow that governs the active assignment set
const (
	FlowSubmission = "submission"
	FlowAppeal     = "appeal"
)

// Assignment status
const (
	AssignmentSubmitted = "submitted"
	AssignmentReviewed  = "reviewed"
	AssignmentSkipped   = "skipped"
)

// CompletionAnyOneReviewed first reviewer of a step completes it; the rest are skipped.
const CompletionAnyOneReviewed = "ANY_ONE_REVIEWED"

// Assignment one role's participation in a review step. Owned by its Submission.
type Assignment struct {
	Role           string     `json:"role"`
	RoleKey        string     `json:"role_key"`
	Status         string     `json:"status"`
	AssignedAt     time.Time  `json:"assigned_at"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	ReviewerUserID *string    `json:"reviewer_user_id"`
	VerifiedScore  *float64   `json:"verified_score"`
	Remarks        string     `json:"remarks"`
}

// AppealRequest the most recent appeal raised by the owner.
type AppealRequest struct {
	RequestedByUserID  string    `json:"requested_by_user_id"`
	RequestedByRole    string    `json:"requested_by_role"`
	RequestedByRoleKey string    `json:"requested_by_role_key"`
	Reason             string    `json:"reason"`
	RequestedScore     *float64  `json:"requested_score"`
	CreatedAt          time.Time `json:"created_at"`
}

// Submission one faculty claim against one rubric task: workflow_submissions
type Submission struct {
	SubmissionID   string `gorm:"type:varchar(255);primaryKey"                               json:"submission_id"`
	FacultyID      string `gorm:"type:varchar(64);not null;index:idx_submission_scope"       json:"faculty_id"`
	FacultyUID     string `gorm:"type:varchar(64)"                                           json:"faculty_uid"`
	FacultyEmail   string `gorm:"type:varchar(255)"                                          json:"faculty_email"`
	FacultyName    string `gorm:"type:varchar(120)"                                          json:"faculty_name"`
	FacultyRole    string `gorm:"type:varchar(100)"                                          json:"faculty_role"`
	FacultyRoleKey string `gorm:"type:varchar(100)"                                          json:"faculty_role_key"`
	College        string `gorm:"type:varchar(200)"                                          json:"college"`
	Department     string `gorm:"type:varchar(200)"                                          json:"department"`
	FormID         string `gorm:"type:varchar(64);not null;index:idx_submission_scope;index" json:"form_id"`
	CriteriaID     string `gorm:"type:varchar(64);not null;index:idx_submission_scope"       json:"criteria_id"`
	TaskID         string `gorm:"type:varchar(64);not null"                                  json:"task_id"`

	ClaimedScore  float64  `gorm:"not null;default:0" json:"claimed_score"`
	MaxMarks      float64  `gorm:"not null;default:0" json:"max_marks"`
	VerifiedScore *float64 `json:"verified_score"`

	Status           string         `gorm:"type:varchar(20);not null;index"        json:"status"`
	CurrentFlow      string         `gorm:"type:varchar(20);not null"              json:"current_flow"`
	CompletionPolicy string         `gorm:"type:varchar(40);not null"              json:"completion_policy"`
	Assignments      []Assignment   `gorm:"type:text;serializer:json"              json:"assignments"`
	ActiveRoleKeys   RoleKeySet     `gorm:"type:varchar(1000);not null;default:''" json:"active_role_keys"`
	SubmitToRoles    []string       `gorm:"type:text;serializer:json"              json:"submit_to_roles"`
	AppealToRoles    []string       `gorm:"type:text;serializer:json"              json:"appeal_to_roles"`
	LastAppeal       *AppealRequest `gorm:"type:text;serializer:json"              json:"last_appeal"`

	EvidenceURL string `gorm:"type:varchar(1024)" json:"evidence_url"`
	Description string `gorm:"type:text"          json:"description"`

	ReviewedByRole    string `gorm:"type:varchar(100)" json:"reviewed_by_role,omitempty"`
	ReviewedByRoleKey string `gorm:"type:varchar(100)" json:"reviewed_by_role_key,omitempty"`
	ReviewedByUserID  string `gorm:"type:varchar(64);index" json:"reviewed_by_user_id,omitempty"`

	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	VersionedModel
}

// TableName workflow_submissions
func (Submission) TableName() string { return "workflow_submissions" }

// AssignmentFor returns the latest assignment for roleKey, or nil.
// A role routed to again in a later step has one entry per round.
func (s *Submission) AssignmentFor(roleKey string) *Assignment {
	for i := len(s.Assignments) - 1; i >= 0; i-- {
		if s.Assignments[i].RoleKey == roleKey {
			return &s.Assignments[i]
		}
	}
	return nil
}

// SubmissionReview append-only review history: workflow_submission_reviews
type SubmissionReview struct {
	ReviewID          string    `gorm:"type:varchar(64);primaryKey"      json:"review_id"`
	SubmissionID      string    `gorm:"type:varchar(255);not null;index" json:"submission_id"`
	FlowType          string    `gorm:"type:varchar(20);not null"        json:"flow_type"`
	ReviewerRole      string    `gorm:"type:varchar(100);not null"       json:"reviewer_role"`
	ReviewerRoleKey   string    `gorm:"type:varchar(100);not null"       json:"reviewer_role_key"`
	ReviewerUserID    string    `gorm:"type:varchar(64);not null;index"  json:"reviewer_user_id"`
	ClaimedScore      float64   `gorm:"not null"                         json:"claimed_score"`
	VerifiedScore     float64   `gorm:"not null"                         json:"verified_score"`
	Remarks           string    `gorm:"type:text"                        json:"remarks"`
	NextSubmitToRoles []string  `gorm:"type:text;serializer:json"        json:"next_submit_to_roles"`
	ResultStatus      string    `gorm:"type:varchar(20);not null"        json:"result_status"`
	CreatedAt         time.Time `gorm:"not null"                         json:"created_at"`
}

// TableName workflow_submission_reviews
func (SubmissionReview) TableName() string { return "workflow_submission_reviews" }
