package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/internal/dto"
	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/metrics"
)

// ── per-module criteria errors ──

var (
	ErrInvalidNamespace      = errors.New("unknown module")
	ErrCriterionNotFound     = errors.New("criterion not found")
	ErrCriterionNotVerified  = errors.New("criterion has not been verified yet")
	ErrAppealPending         = errors.New("this criterion has already been appealed")
	ErrAppealNotFound        = errors.New("appeal not found")
	ErrAppealAlreadyVerified = errors.New("this appeal has already been verified by the committee")
)

// namespaceRoles who claims and who verifies criteria in one module.
type namespaceRoles struct {
	submitter string
	verifier  string
}

var namespaces = map[string]namespaceRoles{
	"module1":     {submitter: workflow.RoleKeyFaculty, verifier: workflow.RoleKeyHOD},
	"module2":     {submitter: workflow.RoleKeyFaculty, verifier: workflow.RoleKeyHOD},
	"module3":     {submitter: workflow.RoleKeyFaculty, verifier: workflow.RoleKeyHOD},
	"module4":     {submitter: workflow.RoleKeyFaculty, verifier: workflow.RoleKeyHOD},
	"module5":     {submitter: workflow.RoleKeyFaculty, verifier: workflow.RoleKeyHOD},
	"module1_hod": {submitter: workflow.RoleKeyHOD, verifier: workflow.RoleKeyPrinciple},
}

// CriterionID deterministic key of one owner's criterion in a module.
func CriterionID(namespace, ownerID, subsectionID, name string) string {
	return workflow.SubmissionID(ownerID, namespace, subsectionID, name)
}

// ModuleService per-module self-assessment with a single verifier and a
// committee appeal path. One engine serves every module namespace.
type ModuleService interface {
	SubmitCriteria(ctx context.Context, actor *workflow.Actor, namespace string, req *dto.SubmitCriteriaRequest) (*dto.SubmitCriteriaResponse, error)
	ListCriteria(ctx context.Context, actor *workflow.Actor, namespace string) (*dto.ModuleCriteriaResponse, error)
	ListForReview(ctx context.Context, actor *workflow.Actor, namespace string) ([]dto.CriterionResponse, error)
	VerifyCriterion(ctx context.Context, actor *workflow.Actor, namespace, facultyID, subsectionID, name string, req *dto.VerifyCriterionRequest) (*dto.CriterionResponse, error)
	RaiseAppeal(ctx context.Context, actor *workflow.Actor, namespace, subsectionID, name string, req *dto.RaiseModuleAppealRequest) (*dto.LegacyAppealResponse, error)
	ListAppeals(ctx context.Context, actor *workflow.Actor, status string) ([]dto.LegacyAppealResponse, error)
	MyAppeals(ctx context.Context, actor *workflow.Actor) ([]dto.LegacyAppealResponse, error)
	VerifyAppeal(ctx context.Context, actor *workflow.Actor, appealID string, req *dto.VerifyAppealRequest) (*dto.VerifyAppealResponse, error)
	UserTotal(ctx context.Context, namespace, userID string) (float64, error)
}

type moduleService struct {
	repo    *repository.Repository
	metrics *metrics.Workflow
	logger  *zap.Logger
	now     func() time.Time
}

// NewModuleService creates a ModuleService.
func NewModuleService(repo *repository.Repository, m *metrics.Workflow, logger *zap.Logger) ModuleService {
	return &moduleService{
		repo:    repo,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ═══════════════════════════════════════════════════════════
// Criteria
// ═══════════════════════════════════════════════════════════

func (s *moduleService) SubmitCriteria(ctx context.Context, actor *workflow.Actor, namespace string, req *dto.SubmitCriteriaRequest) (*dto.SubmitCriteriaResponse, error) {
	roles, ok := namespaces[namespace]
	if !ok {
		return nil, ErrInvalidNamespace
	}
	if actor.RoleKey != roles.submitter {
		return nil, ErrForbidden
	}
	subsectionID := strings.TrimSpace(req.SubsectionID)
	if subsectionID == "" || len(req.Criteria) == 0 {
		return nil, ErrValidation
	}

	now := s.now()
	by := actor.UserID
	items := make([]model.ModuleCriterion, 0, len(req.Criteria))
	seen := make(map[string]struct{}, len(req.Criteria))
	for _, claim := range req.Criteria {
		name := strings.TrimSpace(claim.Name)
		if name == "" || claim.ClaimedScore == nil {
			return nil, ErrValidation
		}
		id := CriterionID(namespace, actor.UserID, subsectionID, name)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		items = append(items, model.ModuleCriterion{
			CriterionID:    id,
			Namespace:      namespace,
			OwnerID:        actor.UserID,
			SubsectionID:   subsectionID,
			SubsectionName: strings.TrimSpace(req.SubsectionName),
			Name:           name,
			ClaimedScore:   boundScore(*claim.ClaimedScore, claim.MaxScore),
			MaxScore:       boundScore(claim.MaxScore, 0),
			Evidence:       strings.TrimSpace(claim.Evidence),
			Description:    strings.TrimSpace(claim.Description),
			VersionedModel: model.VersionedModel{
				BaseModel: model.BaseModel{CreatedAt: now, CreatedBy: &by, UpdatedAt: now, UpdatedBy: &by},
				Version:   1,
			},
		})
	}

	saved, skipped, err := s.repo.ModuleCriterion.SaveClaims(ctx, items)
	if err != nil {
		s.logger.Error("save criteria failed",
			zap.String("namespace", namespace),
			zap.String("owner_id", actor.UserID),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("criteria submitted",
		zap.String("namespace", namespace),
		zap.String("owner_id", actor.UserID),
		zap.Int("saved", len(saved)),
		zap.Int("skipped", len(skipped)),
	)
	return &dto.SubmitCriteriaResponse{Saved: nonNil(saved), Skipped: nonNil(skipped)}, nil
}

func (s *moduleService) ListCriteria(ctx context.Context, actor *workflow.Actor, namespace string) (*dto.ModuleCriteriaResponse, error) {
	if _, ok := namespaces[namespace]; !ok {
		return nil, ErrInvalidNamespace
	}
	items, err := s.repo.ModuleCriterion.ListByOwner(ctx, namespace, actor.UserID)
	if err != nil {
		s.logger.Error("load criteria failed", zap.String("namespace", namespace), zap.Error(err))
		return nil, err
	}
	resp := &dto.ModuleCriteriaResponse{
		Namespace: namespace,
		Criteria:  make([]dto.CriterionResponse, 0, len(items)),
		Total:     sumFinal(items),
	}
	for i := range items {
		resp.Criteria = append(resp.Criteria, toCriterionResponse(&items[i]))
	}
	return resp, nil
}

// ListForReview criteria the verifier may act on. A verifier with a
// college or department only sees owners from the same one.
func (s *moduleService) ListForReview(ctx context.Context, actor *workflow.Actor, namespace string) ([]dto.CriterionResponse, error) {
	roles, ok := namespaces[namespace]
	if !ok {
		return nil, ErrInvalidNamespace
	}
	if actor.RoleKey != roles.verifier {
		return nil, ErrForbidden
	}
	items, err := s.repo.ModuleCriterion.ListByNamespace(ctx, namespace)
	if err != nil {
		s.logger.Error("load criteria failed", zap.String("namespace", namespace), zap.Error(err))
		return nil, err
	}

	visible := make(map[string]bool)
	out := make([]dto.CriterionResponse, 0, len(items))
	for i := range items {
		owner := items[i].OwnerID
		ok, seen := visible[owner]
		if !seen {
			ok, err = s.inScope(ctx, actor, owner)
			if err != nil {
				return nil, err
			}
			visible[owner] = ok
		}
		if ok {
			out = append(out, toCriterionResponse(&items[i]))
		}
	}
	return out, nil
}

func (s *moduleService) VerifyCriterion(ctx context.Context, actor *workflow.Actor, namespace, facultyID, subsectionID, name string, req *dto.VerifyCriterionRequest) (*dto.CriterionResponse, error) {
	roles, ok := namespaces[namespace]
	if !ok {
		return nil, ErrInvalidNamespace
	}
	if actor.RoleKey != roles.verifier {
		s.metrics.Rejection("verify_criterion", "forbidden")
		return nil, ErrForbidden
	}
	if req.Score == nil {
		return nil, ErrValidation
	}
	inScope, err := s.inScope(ctx, actor, facultyID)
	if err != nil {
		return nil, err
	}
	if !inScope {
		s.metrics.Rejection("verify_criterion", "forbidden")
		return nil, ErrForbidden
	}

	id := CriterionID(namespace, facultyID, subsectionID, name)
	now := s.now()
	by := actor.UserID
	c, err := s.repo.ModuleCriterion.Mutate(ctx, id, func(c *model.ModuleCriterion) error {
		score := boundScore(*req.Score, c.MaxScore)
		c.ReviewerScore = &score
		c.ReviewerRemarks = strings.TrimSpace(req.Remarks)
		c.ReviewedBy = &by
		c.IsVerified = true
		c.UpdatedAt = now
		c.UpdatedBy = &by
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCriterionNotFound
		}
		return nil, s.failure("verify_criterion", id, err)
	}
	s.metrics.Transition("verify_criterion", "verified")
	s.logger.Info("criterion verified",
		zap.String("criterion_id", id),
		zap.String("verifier", actor.UserID),
		zap.Float64("score", *c.ReviewerScore),
	)
	resp := toCriterionResponse(c)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// Committee appeals
// ═══════════════════════════════════════════════════════════

func (s *moduleService) RaiseAppeal(ctx context.Context, actor *workflow.Actor, namespace, subsectionID, name string, req *dto.RaiseModuleAppealRequest) (*dto.LegacyAppealResponse, error) {
	if _, ok := namespaces[namespace]; !ok {
		return nil, ErrInvalidNamespace
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrValidation
	}

	id := CriterionID(namespace, actor.UserID, subsectionID, name)
	now := s.now()
	by := actor.UserID
	appeal, err := s.repo.LegacyAppeal.Raise(ctx, id, func(c *model.ModuleCriterion) (*model.LegacyAppeal, error) {
		if !actor.Owns(c.OwnerID, "", "") {
			return nil, workflow.ErrNotOwner
		}
		if !c.IsVerified {
			return nil, ErrCriterionNotVerified
		}
		if c.IsAppealed {
			return nil, ErrAppealPending
		}
		c.IsAppealed = true
		c.UpdatedAt = now
		c.UpdatedBy = &by

		var requested *float64
		if req.RequestedScore != nil {
			v := boundScore(*req.RequestedScore, c.MaxScore)
			requested = &v
		}
		return &model.LegacyAppeal{
			AppealID:       uuid.NewString(),
			Namespace:      c.Namespace,
			CriterionID:    c.CriterionID,
			FacultyID:      c.OwnerID,
			SubsectionID:   c.SubsectionID,
			CriterionName:  c.Name,
			ClaimedScore:   c.ClaimedScore,
			ReviewerScore:  c.ReviewerScore,
			RequestedScore: requested,
			Reason:         reason,
			Evidence:       strings.TrimSpace(req.Evidence),
			Status:         model.AppealStatusPending,
			VersionedModel: model.VersionedModel{
				BaseModel: model.BaseModel{CreatedAt: now, CreatedBy: &by, UpdatedAt: now, UpdatedBy: &by},
				Version:   1,
			},
		}, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCriterionNotFound
		}
		return nil, s.failure("module_appeal", id, err)
	}
	s.metrics.Transition("module_appeal", appeal.Status)
	s.logger.Info("module appeal raised",
		zap.String("appeal_id", appeal.AppealID),
		zap.String("criterion_id", id),
	)
	resp := toLegacyAppealResponse(appeal)
	return &resp, nil
}

func (s *moduleService) ListAppeals(ctx context.Context, actor *workflow.Actor, status string) ([]dto.LegacyAppealResponse, error) {
	if actor.RoleKey != workflow.RoleKeyCommittee {
		return nil, ErrForbidden
	}
	if status != "" && status != model.AppealStatusPending && status != model.AppealStatusCommitteeVerified {
		return nil, ErrValidation
	}
	appeals, err := s.repo.LegacyAppeal.List(ctx, status)
	if err != nil {
		s.logger.Error("load appeals failed", zap.String("status", status), zap.Error(err))
		return nil, err
	}
	return toLegacyAppealResponses(appeals), nil
}

func (s *moduleService) MyAppeals(ctx context.Context, actor *workflow.Actor) ([]dto.LegacyAppealResponse, error) {
	appeals, err := s.repo.LegacyAppeal.ListByFaculty(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("load appeals failed", zap.String("faculty_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return toLegacyAppealResponses(appeals), nil
}

// VerifyAppeal closes a pending appeal and adjudicates its criterion in one
// transaction. A verified appeal is never re-opened.
func (s *moduleService) VerifyAppeal(ctx context.Context, actor *workflow.Actor, appealID string, req *dto.VerifyAppealRequest) (*dto.VerifyAppealResponse, error) {
	if actor.RoleKey != workflow.RoleKeyCommittee {
		s.metrics.Rejection("verify_appeal", "forbidden")
		return nil, ErrForbidden
	}
	if req.CommitteeScore == nil {
		return nil, ErrValidation
	}

	now := s.now()
	by := actor.UserID
	appeal, criterion, err := s.repo.LegacyAppeal.Resolve(ctx, appealID, func(a *model.LegacyAppeal, c *model.ModuleCriterion) error {
		if a.Status != model.AppealStatusPending {
			return ErrAppealAlreadyVerified
		}
		score := boundScore(*req.CommitteeScore, c.MaxScore)
		a.Status = model.AppealStatusCommitteeVerified
		a.VerifiedByCommittee = true
		a.CommitteeScore = &score
		a.CommitteeRemarks = strings.TrimSpace(req.Remarks)
		a.CommitteeVerifiedAt = &now
		a.CommitteeVerifiedBy = &by
		a.UpdatedAt = now
		a.UpdatedBy = &by

		c.AdjudicatedScore = &score
		c.UpdatedAt = now
		c.UpdatedBy = &by
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppealNotFound
		}
		return nil, s.failure("verify_appeal", appealID, err)
	}
	s.metrics.Transition("verify_appeal", appeal.Status)
	s.logger.Info("module appeal verified",
		zap.String("appeal_id", appeal.AppealID),
		zap.String("criterion_id", criterion.CriterionID),
		zap.Float64("committee_score", *appeal.CommitteeScore),
	)
	return &dto.VerifyAppealResponse{
		Appeal:    toLegacyAppealResponse(appeal),
		Criterion: toCriterionResponse(criterion),
	}, nil
}

// UserTotal sum of final scores over the owner's verified criteria in a module.
func (s *moduleService) UserTotal(ctx context.Context, namespace, userID string) (float64, error) {
	if _, ok := namespaces[namespace]; !ok {
		return 0, ErrInvalidNamespace
	}
	items, err := s.repo.ModuleCriterion.ListByOwner(ctx, namespace, userID)
	if err != nil {
		s.logger.Error("load criteria failed", zap.String("namespace", namespace), zap.Error(err))
		return 0, err
	}
	return sumFinal(items), nil
}

// inScope reports whether the owner sits in the verifier's college and department.
func (s *moduleService) inScope(ctx context.Context, actor *workflow.Actor, ownerID string) (bool, error) {
	if actor.College == "" && actor.Department == "" {
		return true, nil
	}
	owner, err := s.repo.User.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		s.logger.Error("load owner profile failed", zap.String("owner_id", ownerID), zap.Error(err))
		return false, err
	}
	if actor.College != "" && !strings.EqualFold(actor.College, owner.College) {
		return false, nil
	}
	// a principal's scope is the whole college
	if actor.RoleKey == workflow.RoleKeyHOD && actor.Department != "" &&
		!strings.EqualFold(actor.Department, owner.Department) {
		return false, nil
	}
	return true, nil
}

func (s *moduleService) failure(op, id string, err error) error {
	if reason := rejectionReason(err); reason != "" {
		s.metrics.Rejection(op, reason)
		return err
	}
	s.logger.Error(op+" failed", zap.String("id", id), zap.Error(err))
	return err
}

// boundScore clamps to [0, limit]; a non-positive limit only floors at zero.
func boundScore(score, limit float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	if limit > 0 && score > limit {
		return limit
	}
	return score
}

func sumFinal(items []model.ModuleCriterion) float64 {
	var total float64
	for i := range items {
		if items[i].IsVerified {
			total += items[i].FinalScore()
		}
	}
	return total
}

func toLegacyAppealResponses(appeals []model.LegacyAppeal) []dto.LegacyAppealResponse {
	out := make([]dto.LegacyAppealResponse, 0, len(appeals))
	for i := range appeals {
		out = append(out, toLegacyAppealResponse(&appeals[i]))
	}
	return out
}
