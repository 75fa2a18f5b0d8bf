package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	pkgerrors "github.com/MRsanjuedit/FPMS-Backend/pkg/errors"
)

// ModuleCriterionRepository per-module self-assessment criteria
type ModuleCriterionRepository interface {
	// SaveClaims upserts the owner's claims. Rows already verified are left
	// untouched and returned as skipped.
	SaveClaims(ctx context.Context, items []model.ModuleCriterion) (saved, skipped []string, err error)
	GetByID(ctx context.Context, id string) (*model.ModuleCriterion, error)
	ListByOwner(ctx context.Context, namespace, ownerID string) ([]model.ModuleCriterion, error)
	// ListByNamespace every owner's criteria in one module, unverified first.
	ListByNamespace(ctx context.Context, namespace string) ([]model.ModuleCriterion, error)
	// Mutate applies fn to the current row and saves it under optimistic locking.
	Mutate(ctx context.Context, id string, fn func(c *model.ModuleCriterion) error) (*model.ModuleCriterion, error)
}

var criterionMutableColumns = []string{
	"subsection_name", "name", "claimed_score", "max_score", "evidence", "description",
	"reviewer_score", "reviewer_remarks", "reviewed_by", "is_verified", "is_appealed", "adjudicated_score",
	"updated_at", "updated_by", "version",
}

// claimUpsert overwrites the claim columns of an existing row unless it is verified.
var claimUpsert = clause.OnConflict{
	Columns: []clause.Column{{Name: "criterion_id"}},
	DoUpdates: append(
		clause.AssignmentColumns([]string{
			"subsection_name", "claimed_score", "max_score", "evidence", "description",
			"updated_at", "updated_by",
		}),
		clause.Assignment{Column: clause.Column{Name: "version"}, Value: gorm.Expr("module_criteria.version + 1")},
	),
	Where: clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: "module_criteria", Name: "is_verified"}, Value: false},
	}},
}

type moduleCriterionRepo struct {
	db   *gorm.DB
	opts Options
}

// NewModuleCriterionRepo creates a ModuleCriterionRepository.
func NewModuleCriterionRepo(db *gorm.DB, opts Options) ModuleCriterionRepository {
	return &moduleCriterionRepo{db: db, opts: opts}
}

func (r *moduleCriterionRepo) SaveClaims(ctx context.Context, items []model.ModuleCriterion) ([]string, []string, error) {
	if len(items) == 0 {
		return nil, nil, nil
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.CriterionID)
	}

	var saved, skipped []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the existing rows so a verification cannot commit mid-save
		var current []model.ModuleCriterion
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("criterion_id", "is_verified").
			Where("criterion_id IN ?", ids).
			Find(&current).Error; err != nil {
			return err
		}
		locked := make(map[string]struct{}, len(current))
		for _, c := range current {
			if c.IsVerified {
				locked[c.CriterionID] = struct{}{}
			}
		}

		for i := range items {
			it := items[i]
			if _, ok := locked[it.CriterionID]; ok {
				skipped = append(skipped, it.CriterionID)
				continue
			}
			result := tx.Clauses(claimUpsert).Create(&it)
			if result.Error != nil {
				return result.Error
			}
			// the conflict guard refused a row verified since the read
			if result.RowsAffected == 0 {
				skipped = append(skipped, it.CriterionID)
				continue
			}
			saved = append(saved, it.CriterionID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return saved, skipped, nil
}

func (r *moduleCriterionRepo) GetByID(ctx context.Context, id string) (*model.ModuleCriterion, error) {
	var c model.ModuleCriterion
	err := r.db.WithContext(ctx).
		Where("criterion_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *moduleCriterionRepo) ListByOwner(ctx context.Context, namespace, ownerID string) ([]model.ModuleCriterion, error) {
	var items []model.ModuleCriterion
	err := r.db.WithContext(ctx).
		Where("namespace = ? AND owner_id = ?", namespace, ownerID).
		Order("subsection_id ASC, name ASC").
		Find(&items).Error
	return items, err
}

func (r *moduleCriterionRepo) ListByNamespace(ctx context.Context, namespace string) ([]model.ModuleCriterion, error) {
	var items []model.ModuleCriterion
	err := r.db.WithContext(ctx).
		Where("namespace = ?", namespace).
		Order("is_verified ASC, owner_id ASC, subsection_id ASC, name ASC").
		Find(&items).Error
	return items, err
}

func (r *moduleCriterionRepo) Mutate(ctx context.Context, id string, fn func(c *model.ModuleCriterion) error) (*model.ModuleCriterion, error) {
	var out model.ModuleCriterion
	err := withRetry(ctx, r.opts, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var c model.ModuleCriterion
			if err := tx.Where("criterion_id = ?", id).First(&c).Error; err != nil {
				return err
			}
			if err := fn(&c); err != nil {
				return err
			}
			if err := saveCriterion(tx, &c); err != nil {
				return err
			}
			out = c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// saveCriterion writes c if its version is still current and bumps it.
func saveCriterion(tx *gorm.DB, c *model.ModuleCriterion) error {
	oldVersion := c.Version
	c.Version = oldVersion + 1
	result := tx.Model(c).
		Where("version = ?", oldVersion).
		Select(criterionMutableColumns).
		Updates(c)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
