package dto

// ── submission workflow requests ──

// SubmitTaskRequest a faculty claim against one rubric task. Accepted as JSON
// or as multipart form data with an optional "evidence" file part.
type SubmitTaskRequest struct {
	FormID       string   `json:"form_id"       form:"form_id"       binding:"required,max=64"`
	CriteriaID   string   `json:"criteria_id"   form:"criteria_id"   binding:"required,max=64"`
	TaskID       string   `json:"task_id"       form:"task_id"       binding:"required,max=64"`
	ClaimedScore *float64 `json:"claimed_score" form:"claimed_score" binding:"required"`
	MaxMarks     float64  `json:"max_marks"     form:"max_marks"     binding:"omitempty,min=0"`
	EvidenceURL  string   `json:"evidence_url"  form:"evidence_url"  binding:"omitempty,max=1024"`
	Description  string   `json:"description"   form:"description"   binding:"omitempty,max=4000"`
}

// ReviewRequest an omitted verified_score keeps the claimed score
type ReviewRequest struct {
	VerifiedScore *float64 `json:"verified_score" binding:"omitempty,min=0"`
	Remarks       string   `json:"remarks"        binding:"omitempty,max=2000"`
}

// AppealRequest owner appeal against an approved submission
type AppealRequest struct {
	Reason         string   `json:"reason"          binding:"required,max=2000"`
	RequestedScore *float64 `json:"requested_score" binding:"omitempty,min=0"`
}

// MyStatusesQuery scope of GET /workflow/submissions/my-statuses
type MyStatusesQuery struct {
	FormID     string `form:"form_id" binding:"required"`
	CriteriaID string `form:"criteria_id"`
}

// ── submission workflow responses ──

// AssignmentResponse one role's participation in a review step
type AssignmentResponse struct {
	Role           string   `json:"role"`
	RoleKey        string   `json:"role_key"`
	Status         string   `json:"status"`
	AssignedAt     string   `json:"assigned_at"`
	ReviewedAt     *string  `json:"reviewed_at"`
	ReviewerUserID *string  `json:"reviewer_user_id"`
	VerifiedScore  *float64 `json:"verified_score"`
	Remarks        string   `json:"remarks"`
}

// AppealInfo the most recent appeal on a submission
type AppealInfo struct {
	RequestedByUserID string   `json:"requested_by_user_id"`
	RequestedByRole   string   `json:"requested_by_role"`
	Reason            string   `json:"reason"`
	RequestedScore    *float64 `json:"requested_score"`
	CreatedAt         string   `json:"created_at"`
}

// SubmissionResponse submission state as seen by its owner or a reviewer
type SubmissionResponse struct {
	SubmissionID     string               `json:"submission_id"`
	FacultyID        string               `json:"faculty_id"`
	FacultyName      string               `json:"faculty_name"`
	FacultyEmail     string               `json:"faculty_email"`
	FacultyRole      string               `json:"faculty_role"`
	College          string               `json:"college"`
	Department       string               `json:"department"`
	FormID           string               `json:"form_id"`
	CriteriaID       string               `json:"criteria_id"`
	TaskID           string               `json:"task_id"`
	ClaimedScore     float64              `json:"claimed_score"`
	MaxMarks         float64              `json:"max_marks"`
	VerifiedScore    *float64             `json:"verified_score"`
	Status           string               `json:"status"`
	CurrentFlow      string               `json:"current_flow"`
	CompletionPolicy string               `json:"completion_policy"`
	Assignments      []AssignmentResponse `json:"assignments"`
	ActiveRoleKeys   []string             `json:"active_role_keys"`
	SubmitToRoles    []string             `json:"submit_to_roles"`
	AppealToRoles    []string             `json:"appeal_to_roles"`
	LastAppeal       *AppealInfo          `json:"last_appeal"`
	EvidenceURL      string               `json:"evidence_url"`
	Description      string               `json:"description"`
	ReviewedByRole   string               `json:"reviewed_by_role,omitempty"`
	ReviewedByUserID string               `json:"reviewed_by_user_id,omitempty"`
	AcceptedAt       *string              `json:"accepted_at"`
	CanAppeal        bool                 `json:"can_appeal"`
	CanAccept        bool                 `json:"can_accept"`
	Version          int                  `json:"version"`
	CreatedAt        string               `json:"created_at"`
	UpdatedAt        string               `json:"updated_at"`
}

// SubmitTaskResponse Created reports whether this call created the record.
type SubmitTaskResponse struct {
	Submission SubmissionResponse `json:"submission"`
	Created    bool               `json:"created"`
}

// ReviewResponse outcome of one review
type ReviewResponse struct {
	Submission    SubmissionResponse `json:"submission"`
	Flow          string             `json:"flow"`
	VerifiedScore float64            `json:"verified_score"`
	NextRoles     []string           `json:"next_roles"`
	Finalized     bool               `json:"finalized"`
}

// MyStatusesResponse the caller's submissions keyed by task id
type MyStatusesResponse struct {
	FormID     string                        `json:"form_id"`
	CriteriaID string                        `json:"criteria_id,omitempty"`
	Statuses   map[string]SubmissionResponse `json:"statuses"`
}

// ReviewHistoryItem one immutable review record
type ReviewHistoryItem struct {
	ReviewID          string   `json:"review_id"`
	FlowType          string   `json:"flow_type"`
	ReviewerRole      string   `json:"reviewer_role"`
	ReviewerRoleKey   string   `json:"reviewer_role_key"`
	ReviewerUserID    string   `json:"reviewer_user_id"`
	ClaimedScore      float64  `json:"claimed_score"`
	VerifiedScore     float64  `json:"verified_score"`
	Remarks           string   `json:"remarks"`
	NextSubmitToRoles []string `json:"next_submit_to_roles"`
	ResultStatus      string   `json:"result_status"`
	CreatedAt         string   `json:"created_at"`
}

// ── reference data ──

// WorkflowRuleResponse routing for one submitter role
type WorkflowRuleResponse struct {
	Role          string   `json:"role"`
	RoleKey       string   `json:"role_key"`
	SubmitToRoles []string `json:"submit_to_roles"`
	AppealToRoles []string `json:"appeal_to_roles"`
}

// FormSummary a form offered to the caller's role
type FormSummary struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	ApplicableRoles []string `json:"applicable_roles"`
	UpdatedAt       string   `json:"updated_at"`
}

// FormResponse rubric tree
type FormResponse struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Criteria []CriteriaResponse `json:"criteria"`
}

// CriteriaResponse criteria group of a rubric
type CriteriaResponse struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Modules []ModuleResponse `json:"modules"`
}

// ModuleResponse module of a criteria group
type ModuleResponse struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Tasks []TaskResponse `json:"tasks"`
}

// TaskResponse rubric leaf
type TaskResponse struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Marks float64 `json:"marks"`
}

// ── score ledger ──

// AcceptResponse result of accepting a reviewed score
type AcceptResponse struct {
	SubmissionID  string  `json:"submission_id"`
	AcceptedScore float64 `json:"accepted_score"`
	TotalScore    float64 `json:"total_score"`
}

// ScoreResponse the stored running total next to the ledger sum
type ScoreResponse struct {
	UserID        string  `json:"user_id"`
	TotalScore    float64 `json:"total_score"`
	LedgerTotal   float64 `json:"ledger_total"`
	AcceptedCount int     `json:"accepted_count"`
}
