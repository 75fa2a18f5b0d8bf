package model

// Form rubric root: forms
// ApplicableRoles role keys the form is offered to; empty offers it to no one.
type Form struct {
	FormID          string     `gorm:"type:varchar(64);primaryKey"             json:"form_id"`
	Title           string     `gorm:"type:varchar(255);not null"              json:"title"`
	ApplicableRoles RoleKeySet `gorm:"type:varchar(1000);not null;default:''" json:"applicable_roles"`
	BaseModel

	Criteria []FormCriteria `gorm:"foreignKey:FormID;references:FormID" json:"criteria,omitempty"`
}

// TableName forms
func (Form) TableName() string { return "forms" }

// FormCriteria criteria group of a form: form_criteria
type FormCriteria struct {
	CriteriaID string `gorm:"type:varchar(64);primaryKey"     json:"criteria_id"`
	FormID     string `gorm:"type:varchar(64);not null;index" json:"form_id"`
	Title      string `gorm:"type:varchar(255);not null"      json:"title"`
	Position   int    `gorm:"not null;default:0"              json:"position"`

	Modules []FormModule `gorm:"foreignKey:CriteriaID;references:CriteriaID" json:"modules,omitempty"`
}

// TableName form_criteria
func (FormCriteria) TableName() string { return "form_criteria" }

// FormModule module of a criteria group: form_modules
type FormModule struct {
	ModuleID   string `gorm:"type:varchar(64);primaryKey"     json:"module_id"`
	CriteriaID string `gorm:"type:varchar(64);not null;index" json:"criteria_id"`
	Title      string `gorm:"type:varchar(255);not null"      json:"title"`
	Position   int    `gorm:"not null;default:0"              json:"position"`

	Tasks []FormTask `gorm:"foreignKey:ModuleID;references:ModuleID" json:"tasks,omitempty"`
}

// TableName form_modules
func (FormModule) TableName() string { return "form_modules" }

// FormTask leaf of the rubric; Marks is the task's maximum score: form_tasks
type FormTask struct {
	TaskID     string  `gorm:"type:varchar(64);primaryKey"     json:"task_id"`
	ModuleID   string  `gorm:"type:varchar(64);not null;index" json:"module_id"`
	CriteriaID string  `gorm:"type:varchar(64);not null"       json:"criteria_id"`
	FormID     string  `gorm:"type:varchar(64);not null;index" json:"form_id"`
	Title      string  `gorm:"type:varchar(255);not null"      json:"title"`
	Marks      float64 `gorm:"not null;default:0"              json:"marks"`
	Position   int     `gorm:"not null;default:0"              json:"position"`
}

// TableName form_tasks
func (FormTask) TableName() string { return "form_tasks" }
