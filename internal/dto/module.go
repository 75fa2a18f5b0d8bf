package dto

// ── per-module criteria ──

// CriterionClaim one claimed criterion inside a subsection
type CriterionClaim struct {
	Name         string   `json:"name"          binding:"required,max=255"`
	ClaimedScore *float64 `json:"claimed_score" binding:"required"`
	MaxScore     float64  `json:"max_score"     binding:"omitempty,min=0"`
	Evidence     string   `json:"evidence"      binding:"omitempty,max=1024"`
	Description  string   `json:"description"   binding:"omitempty,max=4000"`
}

// SubmitCriteriaRequest claims for one subsection of a module
type SubmitCriteriaRequest struct {
	SubsectionID   string           `json:"subsection_id"   binding:"required,max=64"`
	SubsectionName string           `json:"subsection_name" binding:"omitempty,max=255"`
	Criteria       []CriterionClaim `json:"criteria"        binding:"required,min=1,dive"`
}

// SubmitCriteriaResponse Skipped lists criteria already verified and left unchanged.
type SubmitCriteriaResponse struct {
	Saved   []string `json:"saved"`
	Skipped []string `json:"skipped"`
}

// VerifyCriterionRequest reviewer score for one criterion
type VerifyCriterionRequest struct {
	Score   *float64 `json:"score"   binding:"required,min=0"`
	Remarks string   `json:"remarks" binding:"omitempty,max=2000"`
}

// RaiseModuleAppealRequest owner appeal against a verified criterion
type RaiseModuleAppealRequest struct {
	Reason         string   `json:"reason"          binding:"required,max=2000"`
	RequestedScore *float64 `json:"requested_score" binding:"omitempty,min=0"`
	Evidence       string   `json:"evidence"        binding:"omitempty,max=1024"`
}

// VerifyAppealRequest committee decision
type VerifyAppealRequest struct {
	CommitteeScore *float64 `json:"committee_score" binding:"required,min=0"`
	Remarks        string   `json:"remarks"         binding:"omitempty,max=2000"`
}

// ListAppealsQuery optional status filter
type ListAppealsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending committee_verified"`
}

// CriterionResponse one scored criterion
type CriterionResponse struct {
	CriterionID      string   `json:"criterion_id"`
	Namespace        string   `json:"namespace"`
	OwnerID          string   `json:"owner_id"`
	SubsectionID     string   `json:"subsection_id"`
	SubsectionName   string   `json:"subsection_name"`
	Name             string   `json:"name"`
	ClaimedScore     float64  `json:"claimed_score"`
	MaxScore         float64  `json:"max_score"`
	Evidence         string   `json:"evidence"`
	Description      string   `json:"description"`
	ReviewerScore    *float64 `json:"reviewer_score"`
	ReviewerRemarks  string   `json:"reviewer_remarks"`
	IsVerified       bool     `json:"is_verified"`
	IsAppealed       bool     `json:"is_appealed"`
	AdjudicatedScore *float64 `json:"adjudicated_score"`
	FinalScore       float64  `json:"final_score"`
	Version          int      `json:"version"`
}

// ModuleCriteriaResponse the caller's criteria in one module plus their total
type ModuleCriteriaResponse struct {
	Namespace string              `json:"namespace"`
	Criteria  []CriterionResponse `json:"criteria"`
	Total     float64             `json:"total"`
}

// ModuleTotalResponse the caller's final-score total in one module
type ModuleTotalResponse struct {
	Namespace string  `json:"namespace"`
	UserID    string  `json:"user_id"`
	Total     float64 `json:"total"`
}

// LegacyAppealResponse committee appeal
type LegacyAppealResponse struct {
	AppealID            string   `json:"appeal_id"`
	Namespace           string   `json:"namespace"`
	CriterionID         string   `json:"criterion_id"`
	FacultyID           string   `json:"faculty_id"`
	SubsectionID        string   `json:"subsection_id"`
	CriterionName       string   `json:"criterion_name"`
	ClaimedScore        float64  `json:"claimed_score"`
	ReviewerScore       *float64 `json:"reviewer_score"`
	RequestedScore      *float64 `json:"requested_score"`
	Reason              string   `json:"reason"`
	Evidence            string   `json:"evidence"`
	Status              string   `json:"status"`
	VerifiedByCommittee bool     `json:"verified_by_committee"`
	CommitteeScore      *float64 `json:"committee_score"`
	CommitteeRemarks    string   `json:"committee_remarks"`
	CommitteeVerifiedAt *string  `json:"committee_verified_at"`
	CreatedAt           string   `json:"created_at"`
}

// VerifyAppealResponse the closed appeal and the criterion it adjudicated
type VerifyAppealResponse struct {
	Appeal    LegacyAppealResponse `json:"appeal"`
	Criterion CriterionResponse    `json:"criterion"`
}
