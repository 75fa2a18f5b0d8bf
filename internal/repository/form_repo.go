package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
)

// FormRepository rubric tree access
type FormRepository interface {
	// List form rows without their trees, most recently updated first.
	List(ctx context.Context) ([]model.Form, error)
	// GetTree loads a form with criteria, modules and tasks in position order.
	GetTree(ctx context.Context, formID string) (*model.Form, error)
	GetTask(ctx context.Context, formID, criteriaID, taskID string) (*model.FormTask, error)
	// Save upserts the form row and every node of its tree.
	Save(ctx context.Context, form *model.Form) error
}

type formRepo struct {
	db *gorm.DB
}

// NewFormRepo creates a FormRepository.
func NewFormRepo(db *gorm.DB) FormRepository {
	return &formRepo{db: db}
}

func (r *formRepo) List(ctx context.Context) ([]model.Form, error) {
	var forms []model.Form
	err := r.db.WithContext(ctx).
		Order("updated_at DESC, form_id ASC").
		Find(&forms).Error
	return forms, err
}

func (r *formRepo) GetTree(ctx context.Context, formID string) (*model.Form, error) {
	var form model.Form
	err := r.db.WithContext(ctx).
		Preload("Criteria", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Criteria.Modules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Criteria.Modules.Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("form_id = ?", formID).
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *formRepo) GetTask(ctx context.Context, formID, criteriaID, taskID string) (*model.FormTask, error) {
	var task model.FormTask
	err := r.db.WithContext(ctx).
		Where("form_id = ? AND criteria_id = ? AND task_id = ?", formID, criteriaID, taskID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *formRepo) Save(ctx context.Context, form *model.Form) error {
	var (
		criteria []model.FormCriteria
		modules  []model.FormModule
		tasks    []model.FormTask
	)
	for ci, c := range form.Criteria {
		c.FormID = form.FormID
		c.Position = ci
		for mi, m := range c.Modules {
			m.CriteriaID = c.CriteriaID
			m.Position = mi
			for ti, t := range m.Tasks {
				t.ModuleID = m.ModuleID
				t.CriteriaID = c.CriteriaID
				t.FormID = form.FormID
				t.Position = ti
				tasks = append(tasks, t)
			}
			m.Tasks = nil
			modules = append(modules, m)
		}
		c.Modules = nil
		criteria = append(criteria, c)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		root := *form
		root.Criteria = nil
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "form_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "applicable_roles", "updated_at", "updated_by"}),
		}).Create(&root).Error; err != nil {
			return err
		}
		if len(criteria) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "criteria_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"form_id", "title", "position"}),
			}).CreateInBatches(&criteria, batchSize).Error; err != nil {
				return err
			}
		}
		if len(modules) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "module_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"criteria_id", "title", "position"}),
			}).CreateInBatches(&modules, batchSize).Error; err != nil {
				return err
			}
		}
		if len(tasks) > 0 {
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "task_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"module_id", "criteria_id", "form_id", "title", "marks", "position"}),
			}).CreateInBatches(&tasks, batchSize).Error
		}
		return nil
	})
}
