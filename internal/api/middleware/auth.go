package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/redis"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/response"
)

// Context keys set by JWTAuth.
const (
	IdentityKey = "identity"
	ActorKey    = "actor"
	UserIDKey   = "user_id"
	RoleKeyKey  = "role_key"
)

// JWTAuth verifies the Bearer access token and resolves the workflow actor.
// rdb may be nil; revoked tokens are then only rejected once they expire.
func JWTAuth(auth service.AuthProvider, rdb *redis.Client, identities service.IdentityService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Unauthorized(c, 10002, "Invalid authorization header")
			c.Abort()
			return
		}

		identity, err := auth.Verify(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(c, 10002, "Invalid or expired token")
			c.Abort()
			return
		}

		if rdb != nil && identity.TokenID != "" {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), identity.TokenID)
			if err != nil {
				// fail open, same as RateLimit
				logger.Warn("token blacklist lookup failed", zap.Error(err))
			} else if revoked {
				response.Unauthorized(c, 10002, "Token has been revoked")
				c.Abort()
				return
			}
		}

		actor, err := identities.ResolveActor(c.Request.Context(), identity)
		if err != nil {
			if errors.Is(err, service.ErrUnresolvedRole) {
				response.Forbidden(c, 10003, "Unable to determine your role")
			} else {
				response.InternalError(c)
			}
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(ActorKey, actor)
		c.Set(UserIDKey, actor.UserID)
		c.Set(RoleKeyKey, actor.RoleKey)

		c.Next()
	}
}

// RoleAuth lets the request through when the actor holds one of the roles.
// Labels are compared as role keys; "dean" admits every dean role.
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	allowed := make([]string, 0, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed = append(allowed, workflow.NormalizeRoleKey(r))
	}

	return func(c *gin.Context) {
		v, exists := c.Get(ActorKey)
		actor, ok := v.(*workflow.Actor)
		if !exists || !ok || actor == nil {
			response.Unauthorized(c, 10002, "Not authenticated")
			c.Abort()
			return
		}

		for _, key := range allowed {
			if workflow.RoleAdmits(key, actor.RoleKey) {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "You do not have access to this resource")
		c.Abort()
	}
}
