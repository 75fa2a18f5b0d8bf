package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/jwt"
)

// ErrUnresolvedRole no source yielded a role for the caller.
var ErrUnresolvedRole = errors.New("unable to determine your role")

// AuthProvider verifies a bearer credential. pkg/jwt.Manager is the HS256
// implementation; Verify fails with jwt.ErrTokenInvalid or jwt.ErrTokenExpired.
type AuthProvider interface {
	Verify(ctx context.Context, token string) (*jwt.Identity, error)
}

// IdentityService turns a verified token into the workflow actor.
//
// Role precedence: token claim (a committeeMember claim counts as the
// committee role), then the stored user profile, then the email address.
// A generic dean or principle key is refined to the profile's specific label.
type IdentityService interface {
	ResolveActor(ctx context.Context, identity *jwt.Identity) (*workflow.Actor, error)
}

type identityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewIdentityService creates an IdentityService.
func NewIdentityService(repo *repository.Repository, logger *zap.Logger) IdentityService {
	return &identityService{repo: repo, logger: logger}
}

func (s *identityService) ResolveActor(ctx context.Context, identity *jwt.Identity) (*workflow.Actor, error) {
	if identity == nil || strings.TrimSpace(identity.SubjectID) == "" {
		return nil, ErrUnresolvedRole
	}

	var profile *model.User
	user, err := s.repo.User.GetByID(ctx, identity.SubjectID)
	switch {
	case err == nil:
		profile = user
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		s.logger.Error("load user profile failed", zap.String("user_id", identity.SubjectID), zap.Error(err))
		return nil, err
	}

	claimRole := identity.RoleClaim
	if strings.TrimSpace(claimRole) == "" && identity.CommitteeMember {
		claimRole = workflow.RoleKeyCommittee
	}
	profileRole := ""
	if profile != nil {
		profileRole = profile.Role
	}
	email := identity.Email
	if email == "" && profile != nil {
		email = profile.Email
	}

	label, key, source := workflow.ResolveActorRole(
		workflow.RoleCandidate{Source: workflow.RoleSourceClaim, Label: claimRole},
		workflow.RoleCandidate{Source: workflow.RoleSourceProfile, Label: profileRole},
		workflow.RoleCandidate{Source: workflow.RoleSourceEmail, Label: workflow.InferRoleFromEmail(email)},
	)
	if key == "" {
		return nil, ErrUnresolvedRole
	}
	label, key = workflow.RefineRole(label, key, profileRole)

	actor := &workflow.Actor{
		UserID:     identity.SubjectID,
		UID:        identity.SubjectID,
		Email:      email,
		Role:       label,
		RoleKey:    key,
		RoleSource: source,
		College:    identity.College,
		Department: identity.Department,
	}
	if profile != nil {
		actor.Name = profile.Name
		if actor.College == "" {
			actor.College = profile.College
		}
		if actor.Department == "" {
			actor.Department = profile.Department
		}
	}
	return actor, nil
}
