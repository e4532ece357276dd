package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/response"
)

// AuthHandler authentication endpoints.
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login exchanges a login id and password for an access token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the presented token.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenIdentity(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"logged_out": true})
}

// Me returns the authenticated user.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, user)
}

// ResetPassword sets a new password for the caller, or for anyone when the
// caller is a manager.
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), caller, &req); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"reset": true})
}
