package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/MRsanjuedit/FPMS-Backend/internal/dto"
	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/response"
)

// AuthHandler authentication endpoints
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login email + password login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request parameters")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, 11001, "Invalid email or password")
			return
		}
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the presented token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), identity); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKMessage(c, "Logged out", nil)
}

// Me current user with the resolved workflow role
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	result, err := h.authSvc.Me(c.Request.Context(), actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
