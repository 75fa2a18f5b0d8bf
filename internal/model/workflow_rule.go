package model

// Role entry of the global role registry: roles
type Role struct {
	RoleID string `gorm:"type:varchar(64);primaryKey"            json:"id"`
	Name   string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Level  int    `gorm:"not null;default:0"                     json:"level"`
	BaseModel
}

// TableName roles
func (Role) TableName() string { return "roles" }

// WorkflowRule routing for one submitter role: workflow_rules
type WorkflowRule struct {
	RoleKey       string   `gorm:"type:varchar(100);primaryKey" json:"role_key"`
	Role          string   `gorm:"type:varchar(100);not null"   json:"role"`
	SubmitToRoles []string `gorm:"type:text;serializer:json"    json:"submit_to_roles"`
	AppealToRoles []string `gorm:"type:text;serializer:json"    json:"appeal_to_roles"`
	BaseModel
}

// TableName workflow_rules
func (WorkflowRule) TableName() string { return "workflow_rules" }
