package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	pkgerrors "github.com/MRsanjuedit/FPMS-Backend/pkg/errors"
)

// SubmissionRepository workflow submission access.
//
// Every state change goes through Mutate: the row is read, changed in memory
// and written back only if its version is still the one read.
type SubmissionRepository interface {
	// FindOrCreate inserts sub unless a row with its id exists, and returns the stored row.
	FindOrCreate(ctx context.Context, sub *model.Submission) (*model.Submission, bool, error)
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	// Mutate applies fn to the current row and saves it under optimistic locking.
	// An error from fn aborts without writing and is returned as is.
	Mutate(ctx context.Context, id string, fn func(sub *model.Submission) error) (*model.Submission, error)
	ListByFaculty(ctx context.Context, facultyID, formID, criteriaID string) ([]model.Submission, error)
	ListByActiveRoleKey(ctx context.Context, roleKey string, statuses []string) ([]model.Submission, error)
	// ListByReviewer submissions the user reviewed in any round, whatever their status now.
	ListByReviewer(ctx context.Context, userID string) ([]model.Submission, error)
	ListByForm(ctx context.Context, formID string) ([]model.Submission, error)
	ListAcceptedByFaculty(ctx context.Context, facultyID string) ([]model.Submission, error)
}

// submissionMutableColumns columns a Mutate may change.
var submissionMutableColumns = []string{
	"claimed_score", "max_marks", "verified_score",
	"status", "current_flow", "completion_policy",
	"assignments", "active_role_keys", "submit_to_roles", "appeal_to_roles", "last_appeal",
	"evidence_url", "description",
	"reviewed_by_role", "reviewed_by_role_key", "reviewed_by_user_id",
	"accepted_at", "updated_at", "updated_by", "version",
}

type submissionRepo struct {
	db   *gorm.DB
	opts Options
}

// NewSubmissionRepo creates a SubmissionRepository.
func NewSubmissionRepo(db *gorm.DB, opts Options) SubmissionRepository {
	if opts.MaxSaveAttempts <= 0 {
		opts.MaxSaveAttempts = 3
	}
	return &submissionRepo{db: db, opts: opts}
}

func (r *submissionRepo) FindOrCreate(ctx context.Context, sub *model.Submission) (*model.Submission, bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(sub)
	if result.Error != nil {
		return nil, false, result.Error
	}
	stored, err := r.GetByID(ctx, sub.SubmissionID)
	if err != nil {
		return nil, false, err
	}
	return stored, result.RowsAffected > 0, nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) Mutate(ctx context.Context, id string, fn func(sub *model.Submission) error) (*model.Submission, error) {
	var sub *model.Submission
	err := withRetry(ctx, r.opts, func() error {
		var err error
		sub, err = r.mutateOnce(ctx, id, fn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *submissionRepo) mutateOnce(ctx context.Context, id string, fn func(sub *model.Submission) error) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).First(&sub).Error; err != nil {
			return err
		}
		oldVersion := sub.Version
		if err := fn(&sub); err != nil {
			return err
		}
		sub.SubmissionID = id
		sub.Version = oldVersion + 1

		result := tx.Model(&sub).
			Where("version = ?", oldVersion).
			Select(submissionMutableColumns).
			Updates(&sub)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) ListByFaculty(ctx context.Context, facultyID, formID, criteriaID string) ([]model.Submission, error) {
	var subs []model.Submission
	db := r.db.WithContext(ctx).Where("faculty_id = ?", facultyID)
	if formID != "" {
		db = db.Where("form_id = ?", formID)
	}
	if criteriaID != "" {
		db = db.Where("criteria_id = ?", criteriaID)
	}
	err := db.Order("created_at ASC").Find(&subs).Error
	return subs, err
}

func (r *submissionRepo) ListByActiveRoleKey(ctx context.Context, roleKey string, statuses []string) ([]model.Submission, error) {
	var subs []model.Submission
	db := r.db.WithContext(ctx).
		Where("active_role_keys LIKE ?", model.RoleKeySet{}.Pattern(roleKey))
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}
	err := db.Order("updated_at DESC").Find(&subs).Error
	return subs, err
}

func (r *submissionRepo) ListByReviewer(ctx context.Context, userID string) ([]model.Submission, error) {
	var subs []model.Submission
	// the log covers earlier rounds; the column covers a log append still missing
	logged := r.db.Model(&model.SubmissionReview{}).
		Select("submission_id").
		Where("reviewer_user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Where("reviewed_by_user_id = ? OR submission_id IN (?)", userID, logged).
		Order("updated_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *submissionRepo) ListByForm(ctx context.Context, formID string) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("faculty_id ASC, criteria_id ASC, task_id ASC").
		Find(&subs).Error
	return subs, err
}

func (r *submissionRepo) ListAcceptedByFaculty(ctx context.Context, facultyID string) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.db.WithContext(ctx).
		Where("faculty_id = ? AND accepted_at IS NOT NULL", facultyID).
		Find(&subs).Error
	return subs, err
}

// SubmissionReviewRepository append-only review log. Rows are never updated or deleted.
type SubmissionReviewRepository interface {
	Append(ctx context.Context, review *model.SubmissionReview) error
	ListBySubmission(ctx context.Context, submissionID string) ([]model.SubmissionReview, error)
}

type submissionReviewRepo struct {
	db *gorm.DB
}

// NewSubmissionReviewRepo creates a SubmissionReviewRepository.
func NewSubmissionReviewRepo(db *gorm.DB) SubmissionReviewRepository {
	return &submissionReviewRepo{db: db}
}

func (r *submissionReviewRepo) Append(ctx context.Context, review *model.SubmissionReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *submissionReviewRepo) ListBySubmission(ctx context.Context, submissionID string) ([]model.SubmissionReview, error) {
	var reviews []model.SubmissionReview
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}
