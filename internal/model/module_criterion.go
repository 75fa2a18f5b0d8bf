package model

import "time"

// ModuleCriterion one scored criterion of a per-module self-assessment: module_criteria
// Namespace is the module collection (module1..module5, module1_hod).
// AdjudicatedScore is the committee decision and supersedes ReviewerScore once set.
type ModuleCriterion struct {
	CriterionID      string   `gorm:"type:varchar(255);primaryKey"                        json:"criterion_id"`
	Namespace        string   `gorm:"type:varchar(40);not null;index:idx_criterion_owner" json:"namespace"`
	OwnerID          string   `gorm:"type:varchar(64);not null;index:idx_criterion_owner" json:"owner_id"`
	SubsectionID     string   `gorm:"type:varchar(64);not null"                           json:"subsection_id"`
	SubsectionName   string   `gorm:"type:varchar(255)"                                   json:"subsection_name"`
	Name             string   `gorm:"type:varchar(255);not null"                          json:"name"`
	ClaimedScore     float64  `gorm:"not null;default:0"                                  json:"claimed_score"`
	MaxScore         float64  `gorm:"not null;default:0"                                  json:"max_score"`
	Evidence         string   `gorm:"type:varchar(1024)"                                  json:"evidence"`
	Description      string   `gorm:"type:text"                                           json:"description"`
	ReviewerScore    *float64 `json:"reviewer_score"`
	ReviewerRemarks  string   `gorm:"type:text"                                           json:"reviewer_remarks"`
	ReviewedBy       *string  `gorm:"type:varchar(64)"                                    json:"reviewed_by,omitempty"`
	IsVerified       bool     `gorm:"not null;default:false"                              json:"is_verified"`
	IsAppealed       bool     `gorm:"not null;default:false"                              json:"is_appealed"`
	AdjudicatedScore *float64 `json:"adjudicated_score"`
	VersionedModel
}

// TableName module_criteria
func (ModuleCriterion) TableName() string { return "module_criteria" }

// FinalScore adjudicated score, else reviewer score, else zero.
func (c *ModuleCriterion) FinalScore() float64 {
	if c.AdjudicatedScore != nil {
		return *c.AdjudicatedScore
	}
	if c.ReviewerScore != nil {
		return *c.ReviewerScore
	}
	return 0
}

// Legacy appeal status
const (
	AppealStatusPending           = "pending"
	AppealStatusCommitteeVerified = "committee_verified"
)

// LegacyAppeal single-reviewer appeal against a verified criterion: appeals
// Mutated once by the committee, never re-opened.
type LegacyAppeal struct {
	AppealID            string     `gorm:"type:varchar(64);primaryKey"      json:"appeal_id"`
	Namespace           string     `gorm:"type:varchar(40);not null"        json:"namespace"`
	CriterionID         string     `gorm:"type:varchar(255);not null;index" json:"criterion_id"`
	FacultyID           string     `gorm:"type:varchar(64);not null;index"  json:"faculty_id"`
	SubsectionID        string     `gorm:"type:varchar(64);not null"        json:"subsection_id"`
	CriterionName       string     `gorm:"type:varchar(255);not null"       json:"criterion_name"`
	ClaimedScore        float64    `gorm:"not null;default:0"               json:"claimed_score"`
	ReviewerScore       *float64   `json:"reviewer_score"`
	RequestedScore      *float64   `json:"requested_score"`
	Reason              string     `gorm:"type:text;not null"               json:"reason"`
	Evidence            string     `gorm:"type:varchar(1024)"               json:"evidence"`
	Status              string     `gorm:"type:varchar(30);not null;index"  json:"status"`
	VerifiedByCommittee bool       `gorm:"not null;default:false"           json:"verified_by_committee"`
	CommitteeScore      *float64   `json:"committee_score"`
	CommitteeRemarks    string     `gorm:"type:text"                        json:"committee_remarks"`
	CommitteeVerifiedAt *time.Time `json:"committee_verified_at"`
	CommitteeVerifiedBy *string    `gorm:"type:varchar(64)"                 json:"committee_verified_by,omitempty"`
	VersionedModel
}

// TableName appeals
func (LegacyAppeal) TableName() string { return "appeals" }
