package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
)

// RoleRepository global role registry
type RoleRepository interface {
	List(ctx context.Context) ([]model.Role, error)
	Upsert(ctx context.Context, roles []model.Role) error
}

type roleRepo struct {
	db *gorm.DB
}

// NewRoleRepo creates a RoleRepository.
func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).
		Order("level ASC, name ASC").
		Find(&roles).Error
	return roles, err
}

func (r *roleRepo) Upsert(ctx context.Context, roles []model.Role) error {
	if len(roles) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "level", "updated_at", "updated_by"}),
		}).
		CreateInBatches(&roles, batchSize).Error
}

// WorkflowRuleRepository per-role routing rules
type WorkflowRuleRepository interface {
	List(ctx context.Context) ([]model.WorkflowRule, error)
	// ReplaceAll swaps the whole rule set in one transaction.
	ReplaceAll(ctx context.Context, rules []model.WorkflowRule) error
}

type workflowRuleRepo struct {
	db *gorm.DB
}

// NewWorkflowRuleRepo creates a WorkflowRuleRepository.
func NewWorkflowRuleRepo(db *gorm.DB) WorkflowRuleRepository {
	return &workflowRuleRepo{db: db}
}

func (r *workflowRuleRepo) List(ctx context.Context) ([]model.WorkflowRule, error) {
	var rules []model.WorkflowRule
	err := r.db.WithContext(ctx).
		Order("role_key ASC").
		Find(&rules).Error
	return rules, err
}

func (r *workflowRuleRepo) ReplaceAll(ctx context.Context, rules []model.WorkflowRule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.WorkflowRule{}).Error; err != nil {
			return err
		}
		if len(rules) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rules, batchSize).Error
	})
}
