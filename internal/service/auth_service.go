package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/config"
	"github.com/MRsanjuedit/FPMS-Backend/internal/dto"
	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenBlacklist revokes access tokens before they expire.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// UserSeed a user account as provisioned by an administrator.
type UserSeed struct {
	UserID          string `yaml:"user_id"`
	Name            string `yaml:"name"`
	Email           string `yaml:"email"`
	Password        string `yaml:"password"`
	Role            string `yaml:"role"`
	College         string `yaml:"college"`
	Department      string `yaml:"department"`
	CommitteeMember bool   `yaml:"committee_member"`
}

// AuthService login, logout and account provisioning
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout revokes the presented token for the rest of its lifetime.
	Logout(ctx context.Context, identity *jwt.Identity) error
	Me(ctx context.Context, actor *workflow.Actor) (*dto.UserResponse, error)
	SeedUsers(ctx context.Context, seeds []UserSeed, by string) (int, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. look the account up
	user, err := s.repo.User.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user failed", zap.Error(err))
		return nil, err
	}

	// 2. check the password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. issue the token
	token, err := s.jwtMgr.GenerateAccessToken(jwt.Subject{
		UserID:          user.UserID,
		Email:           user.Email,
		Role:            user.Role,
		College:         user.College,
		Department:      user.Department,
		CommitteeMember: user.CommitteeMember,
	})
	if err != nil {
		s.logger.Error("issue access token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        toUserResponse(user, nil),
	}, nil
}

func (s *authService) Logout(ctx context.Context, identity *jwt.Identity) error {
	if s.blacklist == nil || identity == nil || identity.TokenID == "" {
		return nil
	}
	ttl := time.Until(identity.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, identity.TokenID, ttl); err != nil {
		s.logger.Error("blacklist token failed", zap.String("user_id", identity.SubjectID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, actor *workflow.Actor) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("load user failed", zap.Error(err))
			return nil, err
		}
		// token-only identity without a stored profile
		user = &model.User{UserID: actor.UserID, Name: actor.Name, Email: actor.Email, College: actor.College, Department: actor.Department}
	}
	resp := toUserResponse(user, actor)
	return &resp, nil
}

func (s *authService) SeedUsers(ctx context.Context, seeds []UserSeed, by string) (int, error) {
	users := make([]model.User, 0, len(seeds))
	for _, seed := range seeds {
		email := strings.ToLower(strings.TrimSpace(seed.Email))
		if seed.UserID == "" || email == "" || seed.Password == "" {
			return 0, ErrValidation
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return 0, err
		}
		role := strings.TrimSpace(seed.Role)
		if role == "" {
			role = workflow.InferRoleFromEmail(email)
		}
		u := model.User{
			UserID:          seed.UserID,
			Name:            strings.TrimSpace(seed.Name),
			Email:           email,
			PasswordHash:    string(hash),
			Role:            role,
			College:         seed.College,
			Department:      seed.Department,
			CommitteeMember: seed.CommitteeMember,
		}
		if by != "" {
			u.CreatedBy = &by
			u.UpdatedBy = &by
		}
		users = append(users, u)
	}
	if err := s.repo.User.Upsert(ctx, users); err != nil {
		s.logger.Error("seed users failed", zap.Error(err))
		return 0, err
	}
	s.logger.Info("users seeded", zap.Int("count", len(users)))
	return len(users), nil
}

// toUserResponse actor, when given, supplies the resolved role.
func toUserResponse(u *model.User, actor *workflow.Actor) dto.UserResponse {
	resp := dto.UserResponse{
		ID:              u.UserID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            workflow.DisplayRole(u.Role),
		RoleKey:         workflow.NormalizeRoleKey(u.Role),
		College:         u.College,
		Department:      u.Department,
		CommitteeMember: u.CommitteeMember,
		TotalScore:      u.TotalScore,
	}
	if actor != nil {
		resp.Role = actor.Role
		resp.RoleKey = actor.RoleKey
		resp.RoleSource = actor.RoleSource
	}
	return resp
}
