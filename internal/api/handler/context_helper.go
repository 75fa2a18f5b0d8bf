package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MRsanjuedit/FPMS-Backend/internal/api/middleware"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/jwt"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/response"
)

// MustGetActor extracts the actor set by JWTAuth.
// On failure a 401 is written; the caller should return when ok is false.
func MustGetActor(c *gin.Context) (*workflow.Actor, bool) {
	v, exists := c.Get(middleware.ActorKey)
	if !exists {
		response.Unauthorized(c, 10002, "Not authenticated")
		return nil, false
	}
	actor, ok := v.(*workflow.Actor)
	if !ok || actor == nil || actor.UserID == "" {
		response.Unauthorized(c, 10002, "Not authenticated")
		return nil, false
	}
	return actor, true
}

// MustGetIdentity extracts the verified token contents.
func MustGetIdentity(c *gin.Context) (*jwt.Identity, bool) {
	v, exists := c.Get(middleware.IdentityKey)
	if !exists {
		response.Unauthorized(c, 10002, "Not authenticated")
		return nil, false
	}
	identity, ok := v.(*jwt.Identity)
	if !ok || identity == nil {
		response.Unauthorized(c, 10002, "Not authenticated")
		return nil, false
	}
	return identity, true
}
