package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ── role key set column ──

// RoleKeySet is stored as ",a,b," so membership is a portable LIKE '%,key,%'
// on postgres, mysql and sqlite alike. Role keys are [a-z0-9] only.
type RoleKeySet []string

// Contains reports whether key is a member.
func (s RoleKeySet) Contains(key string) bool {
	for _, k := range s {
		if k == key {
			return true
		}
	}
	return false
}

// Pattern returns the LIKE pattern matching rows that contain key.
func (RoleKeySet) Pattern(key string) string {
	return "%," + key + ",%"
}

// Scan parses ",a,b," into a slice.
func (s *RoleKeySet) Scan(src interface{}) error {
	if src == nil {
		*s = RoleKeySet{}
		return nil
	}
	var raw string
	switch v := src.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("RoleKeySet.Scan: unsupported type %T", src)
	}
	out := RoleKeySet{}
	for _, part := range strings.Split(strings.Trim(raw, ","), ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	*s = out
	return nil
}

// Value serializes the set; an empty set is stored as "".
func (s RoleKeySet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}
	return "," + strings.Join(s, ",") + ",", nil
}

// BaseModel audit columns shared by every table
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(64)"                   json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(64)"                   json:"updated_by,omitempty"`
}

// VersionedModel rows mutated through optimistic read-modify-write
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Role{},
		&WorkflowRule{},
		&Form{},
		&FormCriteria{},
		&FormModule{},
		&FormTask{},
		&Submission{},
		&SubmissionReview{},
		&ModuleCriterion{},
		&LegacyAppeal{},
	}
}
