package jwt

import (
	"context"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MRsanjuedit/FPMS-Backend/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims access token claims. Role is optional: when empty the profile decides.
type Claims struct {
	UserID          string `json:"uid"`
	Email           string `json:"email"`
	Role            string `json:"role,omitempty"`
	College         string `json:"college,omitempty"`
	Department      string `json:"department,omitempty"`
	CommitteeMember bool   `json:"committeeMember,omitempty"`
	jwtv5.RegisteredClaims
}

// Subject what a token is issued for.
type Subject struct {
	UserID          string
	Email           string
	Role            string
	College         string
	Department      string
	CommitteeMember bool
}

// Identity verified token contents handed to the request pipeline.
type Identity struct {
	SubjectID       string
	Email           string
	RoleClaim       string
	College         string
	Department      string
	CommitteeMember bool
	TokenID         string
	ExpiresAt       time.Time
}

// Manager issues and verifies HS256 tokens.
type Manager struct {
	secret         []byte
	issuer         string
	accessTokenTTL time.Duration
}

// NewManager creates a Manager from AuthConfig.
func NewManager(cfg *config.AuthConfig) *Manager {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "fpms"
	}
	return &Manager{
		secret:         []byte(cfg.JWTSecret),
		issuer:         issuer,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// AccessTokenTTL lifetime of issued tokens.
func (m *Manager) AccessTokenTTL() time.Duration { return m.accessTokenTTL }

// GenerateAccessToken signs a token for sub.
func (m *Manager) GenerateAccessToken(sub Subject) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:          sub.UserID,
		Email:           sub.Email,
		Role:            sub.Role,
		College:         sub.College,
		Department:      sub.Department,
		CommitteeMember: sub.CommitteeMember,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   sub.UserID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.accessTokenTTL)),
			Issuer:    m.issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies signature, expiry and issuer.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Verify implements the request pipeline's AuthProvider.
func (m *Manager) Verify(_ context.Context, tokenString string) (*Identity, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	id := &Identity{
		SubjectID:       claims.UserID,
		Email:           claims.Email,
		RoleClaim:       claims.Role,
		College:         claims.College,
		Department:      claims.Department,
		CommitteeMember: claims.CommitteeMember,
		TokenID:         claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
