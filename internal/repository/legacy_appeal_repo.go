package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	pkgerrors "github.com/MRsanjuedit/FPMS-Backend/pkg/errors"
)

// LegacyAppealRepository committee appeals against verified module criteria
type LegacyAppealRepository interface {
	// Raise runs build against the current criterion and, if it returns an
	// appeal, stores it and the criterion it marked in one transaction.
	Raise(ctx context.Context, criterionID string, build func(c *model.ModuleCriterion) (*model.LegacyAppeal, error)) (*model.LegacyAppeal, error)
	// Resolve runs apply against the appeal and its criterion and saves both
	// in one transaction. Either row having moved on aborts the write.
	Resolve(ctx context.Context, appealID string, apply func(a *model.LegacyAppeal, c *model.ModuleCriterion) error) (*model.LegacyAppeal, *model.ModuleCriterion, error)
	GetByID(ctx context.Context, id string) (*model.LegacyAppeal, error)
	List(ctx context.Context, status string) ([]model.LegacyAppeal, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]model.LegacyAppeal, error)
}

var appealMutableColumns = []string{
	"status", "verified_by_committee", "committee_score", "committee_remarks",
	"committee_verified_at", "committee_verified_by", "updated_at", "updated_by", "version",
}

type legacyAppealRepo struct {
	db   *gorm.DB
	opts Options
}

// NewLegacyAppealRepo creates a LegacyAppealRepository.
func NewLegacyAppealRepo(db *gorm.DB, opts Options) LegacyAppealRepository {
	return &legacyAppealRepo{db: db, opts: opts}
}

func (r *legacyAppealRepo) Raise(ctx context.Context, criterionID string, build func(c *model.ModuleCriterion) (*model.LegacyAppeal, error)) (*model.LegacyAppeal, error) {
	var out *model.LegacyAppeal
	err := withRetry(ctx, r.opts, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var c model.ModuleCriterion
			if err := tx.Where("criterion_id = ?", criterionID).First(&c).Error; err != nil {
				return err
			}
			appeal, err := build(&c)
			if err != nil {
				return err
			}
			if err := saveCriterion(tx, &c); err != nil {
				return err
			}
			if err := tx.Create(appeal).Error; err != nil {
				return err
			}
			out = appeal
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *legacyAppealRepo) Resolve(ctx context.Context, appealID string, apply func(a *model.LegacyAppeal, c *model.ModuleCriterion) error) (*model.LegacyAppeal, *model.ModuleCriterion, error) {
	var (
		appeal    model.LegacyAppeal
		criterion model.ModuleCriterion
	)
	err := withRetry(ctx, r.opts, func() error {
		appeal, criterion = model.LegacyAppeal{}, model.ModuleCriterion{}
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("appeal_id = ?", appealID).First(&appeal).Error; err != nil {
				return err
			}
			if err := tx.Where("criterion_id = ?", appeal.CriterionID).First(&criterion).Error; err != nil {
				return err
			}
			if err := apply(&appeal, &criterion); err != nil {
				return err
			}

			oldVersion := appeal.Version
			appeal.Version = oldVersion + 1
			result := tx.Model(&appeal).
				Where("version = ?", oldVersion).
				Select(appealMutableColumns).
				Updates(&appeal)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return pkgerrors.ErrOptimisticLock
			}
			return saveCriterion(tx, &criterion)
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return &appeal, &criterion, nil
}

func (r *legacyAppealRepo) GetByID(ctx context.Context, id string) (*model.LegacyAppeal, error) {
	var a model.LegacyAppeal
	err := r.db.WithContext(ctx).
		Where("appeal_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *legacyAppealRepo) List(ctx context.Context, status string) ([]model.LegacyAppeal, error) {
	var appeals []model.LegacyAppeal
	db := r.db.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at DESC").Find(&appeals).Error
	return appeals, err
}

func (r *legacyAppealRepo) ListByFaculty(ctx context.Context, facultyID string) ([]model.LegacyAppeal, error) {
	var appeals []model.LegacyAppeal
	err := r.db.WithContext(ctx).
		Where("faculty_id = ?", facultyID).
		Order("created_at DESC").
		Find(&appeals).Error
	return appeals, err
}
