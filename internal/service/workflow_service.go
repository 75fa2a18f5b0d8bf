package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/config"
	"github.com/MRsanjuedit/FPMS-Backend/internal/dto"
	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/metrics"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/storage"
)

// ── submission workflow errors ──

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrEvidenceTooLarge   = errors.New("evidence file is too large")
	ErrEvidenceDisabled   = errors.New("evidence upload is not configured")
)

// EvidenceUpload an evidence file received with a submission.
type EvidenceUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// WorkflowService submission, review and appeal of rubric task claims.
//
// State lives on the submission row and changes only through
// SubmissionRepository.Mutate, so two reviewers racing on the same step
// cannot both win. The review log is written after the submission commit.
type WorkflowService interface {
	// Submit creates the submission, or returns the existing one unchanged.
	Submit(ctx context.Context, actor *workflow.Actor, req *dto.SubmitTaskRequest, evidence *EvidenceUpload) (*dto.SubmitTaskResponse, error)
	Review(ctx context.Context, actor *workflow.Actor, submissionID string, req *dto.ReviewRequest) (*dto.ReviewResponse, error)
	Appeal(ctx context.Context, actor *workflow.Actor, submissionID string, req *dto.AppealRequest) (*dto.SubmissionResponse, error)
	ReviewQueue(ctx context.Context, actor *workflow.Actor) ([]dto.SubmissionResponse, error)
	// Reviewed submissions the actor has reviewed, whatever their status now.
	Reviewed(ctx context.Context, actor *workflow.Actor) ([]dto.SubmissionResponse, error)
	MyStatuses(ctx context.Context, actor *workflow.Actor, q *dto.MyStatusesQuery) (*dto.MyStatusesResponse, error)
	Get(ctx context.Context, actor *workflow.Actor, submissionID string) (*dto.SubmissionResponse, error)
	History(ctx context.Context, actor *workflow.Actor, submissionID string) ([]dto.ReviewHistoryItem, error)
}

type workflowService struct {
	cfg     *config.Config
	repo    *repository.Repository
	routes  RoutingSource
	store   storage.EvidenceStore
	metrics *metrics.Workflow
	logger  *zap.Logger
	now     func() time.Time
}

// NewWorkflowService creates a WorkflowService. store and m may be nil.
func NewWorkflowService(
	cfg *config.Config,
	repo *repository.Repository,
	routes RoutingSource,
	store storage.EvidenceStore,
	m *metrics.Workflow,
	logger *zap.Logger,
) WorkflowService {
	return &workflowService{
		cfg:     cfg,
		repo:    repo,
		routes:  routes,
		store:   store,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ═══════════════════════════════════════════════════════════
// Submit
// ═══════════════════════════════════════════════════════════

func (s *workflowService) Submit(ctx context.Context, actor *workflow.Actor, req *dto.SubmitTaskRequest, evidence *EvidenceUpload) (*dto.SubmitTaskResponse, error) {
	if req.ClaimedScore == nil {
		return nil, ErrValidation
	}
	table, err := s.routes.Snapshot(ctx)
	if err != nil {
		s.logger.Error("load routing rules failed", zap.Error(err))
		return nil, err
	}
	if len(table.Resolve(actor.RoleKey, model.FlowSubmission)) == 0 {
		s.reject("submit", workflow.ErrNoRouteConfigured)
		return nil, workflow.ErrNoRouteConfigured
	}

	// 1. an already tracked task is returned as is
	id := workflow.SubmissionID(actor.UserID, req.FormID, req.CriteriaID, req.TaskID)
	existing, err := s.repo.Submission.GetByID(ctx, id)
	if err == nil {
		return &dto.SubmitTaskResponse{Submission: toSubmissionResponse(existing, actor, table), Created: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("load submission failed", zap.String("submission_id", id), zap.Error(err))
		return nil, err
	}

	// 2. rubric marks win over the caller's max
	maxMarks := req.MaxMarks
	task, err := s.repo.Form.GetTask(ctx, req.FormID, req.CriteriaID, req.TaskID)
	switch {
	case err == nil:
		maxMarks = task.Marks
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		s.logger.Error("load rubric task failed", zap.String("task_id", req.TaskID), zap.Error(err))
		return nil, err
	}

	// 3. evidence file
	evidenceURL := strings.TrimSpace(req.EvidenceURL)
	var evidenceObject string
	if evidence != nil {
		url, name, err := s.storeEvidence(ctx, actor, evidence)
		if err != nil {
			return nil, err
		}
		evidenceURL, evidenceObject = url, name
	}

	// 4. build and insert
	sub, err := workflow.NewSubmission(*actor, workflow.SubmitInput{
		FormID:       req.FormID,
		CriteriaID:   req.CriteriaID,
		TaskID:       req.TaskID,
		ClaimedScore: *req.ClaimedScore,
		MaxMarks:     maxMarks,
		EvidenceURL:  evidenceURL,
		Description:  strings.TrimSpace(req.Description),
	}, table, s.now())
	if err != nil {
		s.discardEvidence(ctx, evidenceObject)
		s.reject("submit", err)
		return nil, err
	}
	stored, created, err := s.repo.Submission.FindOrCreate(ctx, sub)
	if err != nil {
		s.discardEvidence(ctx, evidenceObject)
		s.logger.Error("create submission failed", zap.String("submission_id", sub.SubmissionID), zap.Error(err))
		return nil, err
	}
	if !created {
		// a concurrent submit of the same task won; its evidence is kept
		s.discardEvidence(ctx, evidenceObject)
	}
	if created {
		s.metrics.Transition("submit", stored.Status)
		s.logger.Info("submission created",
			zap.String("submission_id", stored.SubmissionID),
			zap.String("faculty_id", stored.FacultyID),
			zap.Strings("submit_to", stored.SubmitToRoles),
		)
	}
	return &dto.SubmitTaskResponse{Submission: toSubmissionResponse(stored, actor, table), Created: created}, nil
}

func (s *workflowService) storeEvidence(ctx context.Context, actor *workflow.Actor, ev *EvidenceUpload) (url, name string, err error) {
	if s.store == nil {
		return "", "", ErrEvidenceDisabled
	}
	limit := s.cfg.Evidence.MaxUploadBytes
	if limit > 0 && ev.Size > limit {
		return "", "", ErrEvidenceTooLarge
	}
	body := ev.Body
	if limit > 0 {
		body = io.LimitReader(ev.Body, limit)
	}
	name = storage.ObjectName(actor.UserID, ev.Filename)
	url, err = s.store.Put(ctx, name, ev.ContentType, body)
	if err != nil {
		s.logger.Error("store evidence failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return "", "", err
	}
	return url, name, nil
}

// viewTable routing for response flags; on a read error the flags fall back
// to the roles stored on each submission.
func (s *workflowService) viewTable(ctx context.Context) *workflow.RoutingTable {
	table, err := s.routes.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("load routing rules failed", zap.Error(err))
		return nil
	}
	return table
}

// discardEvidence removes an uploaded object no submission refers to.
func (s *workflowService) discardEvidence(ctx context.Context, name string) {
	if name == "" || s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, name); err != nil {
		s.logger.Warn("discard evidence failed", zap.String("object", name), zap.Error(err))
	}
}

// ═══════════════════════════════════════════════════════════
// Review
// ═══════════════════════════════════════════════════════════

func (s *workflowService) Review(ctx context.Context, actor *workflow.Actor, submissionID string, req *dto.ReviewRequest) (*dto.ReviewResponse, error) {
	table, err := s.routes.Snapshot(ctx)
	if err != nil {
		s.logger.Error("load routing rules failed", zap.Error(err))
		return nil, err
	}

	var outcome *workflow.ReviewOutcome
	now := s.now()
	sub, err := s.repo.Submission.Mutate(ctx, submissionID, func(sub *model.Submission) error {
		out, err := workflow.ApplyReview(sub, *actor, workflow.ReviewInput{
			VerifiedScore: req.VerifiedScore,
			Remarks:       req.Remarks,
		}, table, now)
		outcome = out
		return err
	})
	if err != nil {
		return nil, s.mutationError("review", submissionID, err)
	}
	s.metrics.Transition("review", sub.Status)

	// eventually consistent: the submission is already committed
	entry := &model.SubmissionReview{
		ReviewID:          uuid.NewString(),
		SubmissionID:      sub.SubmissionID,
		FlowType:          outcome.Flow,
		ReviewerRole:      actor.Role,
		ReviewerRoleKey:   actor.RoleKey,
		ReviewerUserID:    actor.UserID,
		ClaimedScore:      sub.ClaimedScore,
		VerifiedScore:     outcome.VerifiedScore,
		Remarks:           strings.TrimSpace(req.Remarks),
		NextSubmitToRoles: outcome.NextRoles,
		ResultStatus:      sub.Status,
		CreatedAt:         now,
	}
	if err := s.repo.SubmissionReview.Append(ctx, entry); err != nil {
		s.logger.Error("append review history failed",
			zap.String("submission_id", sub.SubmissionID),
			zap.String("reviewer", actor.UserID),
			zap.Error(err),
		)
	}

	s.logger.Info("submission reviewed",
		zap.String("submission_id", sub.SubmissionID),
		zap.String("reviewer_role", actor.RoleKey),
		zap.String("status", sub.Status),
		zap.Strings("next", outcome.NextRoles),
	)

	return &dto.ReviewResponse{
		Submission:    toSubmissionResponse(sub, actor, table),
		Flow:          outcome.Flow,
		VerifiedScore: outcome.VerifiedScore,
		NextRoles:     nonNil(outcome.NextRoles),
		Finalized:     outcome.Finalized,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// Appeal
// ═══════════════════════════════════════════════════════════

func (s *workflowService) Appeal(ctx context.Context, actor *workflow.Actor, submissionID string, req *dto.AppealRequest) (*dto.SubmissionResponse, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrValidation
	}
	table, err := s.routes.Snapshot(ctx)
	if err != nil {
		s.logger.Error("load routing rules failed", zap.Error(err))
		return nil, err
	}

	now := s.now()
	sub, err := s.repo.Submission.Mutate(ctx, submissionID, func(sub *model.Submission) error {
		return workflow.ApplyAppeal(sub, *actor, workflow.AppealInput{
			Reason:         req.Reason,
			RequestedScore: req.RequestedScore,
		}, table, now)
	})
	if err != nil {
		return nil, s.mutationError("appeal", submissionID, err)
	}
	s.metrics.Transition("appeal", sub.Status)
	s.logger.Info("submission appealed",
		zap.String("submission_id", sub.SubmissionID),
		zap.Strings("appeal_to", sub.AppealToRoles),
	)

	resp := toSubmissionResponse(sub, actor, table)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// Queries
// ═══════════════════════════════════════════════════════════

func (s *workflowService) ReviewQueue(ctx context.Context, actor *workflow.Actor) ([]dto.SubmissionResponse, error) {
	out := []dto.SubmissionResponse{}
	if actor.RoleKey == "" {
		return out, nil
	}
	table := s.viewTable(ctx)
	subs, err := s.repo.Submission.ListByActiveRoleKey(ctx, actor.RoleKey,
		[]string{model.SubmissionStatusSubmitted, model.SubmissionStatusAppealed})
	if err != nil {
		s.logger.Error("load review queue failed", zap.String("role_key", actor.RoleKey), zap.Error(err))
		return nil, err
	}
	for i := range subs {
		// the active key projection may lag the assignment list
		if workflow.CanReview(&subs[i], actor.RoleKey) {
			out = append(out, toSubmissionResponse(&subs[i], actor, table))
		}
	}
	return out, nil
}

func (s *workflowService) Reviewed(ctx context.Context, actor *workflow.Actor) ([]dto.SubmissionResponse, error) {
	table := s.viewTable(ctx)
	subs, err := s.repo.Submission.ListByReviewer(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("load reviewed submissions failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, toSubmissionResponse(&subs[i], actor, table))
	}
	return out, nil
}

func (s *workflowService) MyStatuses(ctx context.Context, actor *workflow.Actor, q *dto.MyStatusesQuery) (*dto.MyStatusesResponse, error) {
	table := s.viewTable(ctx)
	subs, err := s.repo.Submission.ListByFaculty(ctx, actor.UserID, q.FormID, q.CriteriaID)
	if err != nil {
		s.logger.Error("load statuses failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	resp := &dto.MyStatusesResponse{
		FormID:     q.FormID,
		CriteriaID: q.CriteriaID,
		Statuses:   make(map[string]dto.SubmissionResponse, len(subs)),
	}
	for i := range subs {
		resp.Statuses[subs[i].TaskID] = toSubmissionResponse(&subs[i], actor, table)
	}
	return resp, nil
}

func (s *workflowService) Get(ctx context.Context, actor *workflow.Actor, submissionID string) (*dto.SubmissionResponse, error) {
	sub, err := s.readable(ctx, actor, submissionID)
	if err != nil {
		return nil, err
	}
	resp := toSubmissionResponse(sub, actor, s.viewTable(ctx))
	return &resp, nil
}

func (s *workflowService) History(ctx context.Context, actor *workflow.Actor, submissionID string) ([]dto.ReviewHistoryItem, error) {
	if _, err := s.readable(ctx, actor, submissionID); err != nil {
		return nil, err
	}
	reviews, err := s.repo.SubmissionReview.ListBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("load review history failed", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.ReviewHistoryItem, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, dto.ReviewHistoryItem{
			ReviewID:          r.ReviewID,
			FlowType:          r.FlowType,
			ReviewerRole:      r.ReviewerRole,
			ReviewerRoleKey:   r.ReviewerRoleKey,
			ReviewerUserID:    r.ReviewerUserID,
			ClaimedScore:      r.ClaimedScore,
			VerifiedScore:     r.VerifiedScore,
			Remarks:           r.Remarks,
			NextSubmitToRoles: nonNil(r.NextSubmitToRoles),
			ResultStatus:      r.ResultStatus,
			CreatedAt:         formatTime(r.CreatedAt),
		})
	}
	return out, nil
}

// readable loads the submission if the actor owns it or their role was ever assigned to it.
func (s *workflowService) readable(ctx context.Context, actor *workflow.Actor, submissionID string) (*model.Submission, error) {
	sub, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("load submission failed", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}
	if actor.Owns(sub.FacultyID, sub.FacultyUID, sub.FacultyEmail) || sub.AssignmentFor(actor.RoleKey) != nil {
		return sub, nil
	}
	return nil, ErrForbidden
}

// mutationError maps a failed Mutate to a business error, counting expected rejections.
func (s *workflowService) mutationError(op, submissionID string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.reject(op, ErrSubmissionNotFound)
		return ErrSubmissionNotFound
	}
	if reason := rejectionReason(err); reason != "" {
		s.metrics.Rejection(op, reason)
		return err
	}
	s.logger.Error(op+" failed", zap.String("submission_id", submissionID), zap.Error(err))
	return err
}

func (s *workflowService) reject(op string, err error) {
	reason := rejectionReason(err)
	if reason == "" {
		reason = "not_found"
	}
	s.metrics.Rejection(op, reason)
}
