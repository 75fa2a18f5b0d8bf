package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/internal/dto"
	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/metrics"
)

// ── score ledger errors ──

var (
	ErrNotAcceptable   = errors.New("only an approved submission can be accepted")
	ErrAlreadyAccepted = errors.New("this score has already been accepted")
)

// ScoreService the faculty's running total of accepted scores.
//
// Acceptance is flagged on the submission first and added to users.total_score
// second. Recompute rebuilds the total from the flags when the two drift.
type ScoreService interface {
	AcceptReview(ctx context.Context, actor *workflow.Actor, submissionID string) (*dto.AcceptResponse, error)
	Total(ctx context.Context, actor *workflow.Actor) (*dto.ScoreResponse, error)
	Recompute(ctx context.Context, userID string) (*dto.ScoreResponse, error)
}

type scoreService struct {
	repo    *repository.Repository
	metrics *metrics.Workflow
	logger  *zap.Logger
	now     func() time.Time
}

// NewScoreService creates a ScoreService.
func NewScoreService(repo *repository.Repository, m *metrics.Workflow, logger *zap.Logger) ScoreService {
	return &scoreService{
		repo:    repo,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *scoreService) AcceptReview(ctx context.Context, actor *workflow.Actor, submissionID string) (*dto.AcceptResponse, error) {
	sub, err := s.repo.Submission.Mutate(ctx, submissionID, func(sub *model.Submission) error {
		if !actor.Owns(sub.FacultyID, sub.FacultyUID, sub.FacultyEmail) {
			return workflow.ErrNotOwner
		}
		if sub.AcceptedAt != nil {
			return ErrAlreadyAccepted
		}
		if sub.Status != model.SubmissionStatusApproved {
			return ErrNotAcceptable
		}
		now := s.now()
		by := actor.UserID
		sub.AcceptedAt = &now
		sub.UpdatedAt = now
		sub.UpdatedBy = &by
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		if reason := rejectionReason(err); reason != "" {
			s.metrics.Rejection("accept", reason)
			return nil, err
		}
		s.logger.Error("accept review failed", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}
	s.metrics.Transition("accept", sub.Status)

	score := acceptedScore(sub)
	if err := s.repo.User.IncrementTotalScore(ctx, sub.FacultyID, score); err != nil {
		s.logger.Warn("increment total score failed, recomputing from ledger",
			zap.String("user_id", sub.FacultyID),
			zap.Error(err),
		)
		if _, err := s.Recompute(ctx, sub.FacultyID); err != nil {
			return nil, err
		}
	}

	total := score
	if user, err := s.repo.User.GetByID(ctx, sub.FacultyID); err == nil {
		total = user.TotalScore
	}

	s.logger.Info("score accepted",
		zap.String("submission_id", sub.SubmissionID),
		zap.String("user_id", sub.FacultyID),
		zap.Float64("score", score),
	)
	return &dto.AcceptResponse{SubmissionID: sub.SubmissionID, AcceptedScore: score, TotalScore: total}, nil
}

func (s *scoreService) Total(ctx context.Context, actor *workflow.Actor) (*dto.ScoreResponse, error) {
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	ledger, count, err := s.ledger(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.ScoreResponse{UserID: user.UserID, TotalScore: user.TotalScore, LedgerTotal: ledger, AcceptedCount: count}, nil
}

func (s *scoreService) Recompute(ctx context.Context, userID string) (*dto.ScoreResponse, error) {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	ledger, count, err := s.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.User.SetTotalScore(ctx, userID, ledger); err != nil {
		s.logger.Error("set total score failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("total score recomputed", zap.String("user_id", userID), zap.Float64("total", ledger))
	return &dto.ScoreResponse{UserID: userID, TotalScore: ledger, LedgerTotal: ledger, AcceptedCount: count}, nil
}

func (s *scoreService) ledger(ctx context.Context, userID string) (float64, int, error) {
	subs, err := s.repo.Submission.ListAcceptedByFaculty(ctx, userID)
	if err != nil {
		s.logger.Error("load accepted submissions failed", zap.String("user_id", userID), zap.Error(err))
		return 0, 0, err
	}
	var total float64
	for i := range subs {
		total += acceptedScore(&subs[i])
	}
	return total, len(subs), nil
}

func acceptedScore(sub *model.Submission) float64 {
	if sub.VerifiedScore != nil {
		return *sub.VerifiedScore
	}
	return sub.ClaimedScore
}
