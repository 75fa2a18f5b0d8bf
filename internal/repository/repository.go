package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgerrors "github.com/MRsanjuedit/FPMS-Backend/pkg/errors"
)

// batchSize upper bound on rows per multi-row write.
const batchSize = 400

// Options tunes write behaviour shared by the repositories.
type Options struct {
	// MaxSaveAttempts bounds optimistic read-modify-write retries.
	MaxSaveAttempts int
	// OnConflict is called once per lost optimistic race.
	OnConflict func()
}

// Repository aggregates every repository of the service.
type Repository struct {
	User             UserRepository
	Role             RoleRepository
	WorkflowRule     WorkflowRuleRepository
	Form             FormRepository
	Submission       SubmissionRepository
	SubmissionReview SubmissionReviewRepository
	ModuleCriterion  ModuleCriterionRepository
	LegacyAppeal     LegacyAppealRepository
}

// NewRepository wires every repository onto db.
func NewRepository(db *gorm.DB, opts Options) *Repository {
	if opts.MaxSaveAttempts <= 0 {
		opts.MaxSaveAttempts = 3
	}
	return &Repository{
		User:             NewUserRepo(db),
		Role:             NewRoleRepo(db),
		WorkflowRule:     NewWorkflowRuleRepo(db),
		Form:             NewFormRepo(db),
		Submission:       NewSubmissionRepo(db, opts),
		SubmissionReview: NewSubmissionReviewRepo(db),
		ModuleCriterion:  NewModuleCriterionRepo(db, opts),
		LegacyAppeal:     NewLegacyAppealRepo(db, opts),
	}
}

// withRetry runs attempt until it stops losing optimistic races, at most
// opts.MaxSaveAttempts times. The last ErrOptimisticLock is returned.
func withRetry(ctx context.Context, opts Options, attempt func() error) error {
	attempts := opts.MaxSaveAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = attempt()
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return err
		}
		if opts.OnConflict != nil {
			opts.OnConflict()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
