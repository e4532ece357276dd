package dto

// ── auth DTOs ──

// LoginRequest POST /auth/login
type LoginRequest struct {
	LoginID  string `json:"login_id" binding:"required,max=20"`
	Password string `json:"password" binding:"required,max=72"`
}

// ResetPasswordRequest POST /auth/reset-password
type ResetPasswordRequest struct {
	LoginID     string `json:"login_id"     binding:"required,max=20"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// TokenResponse login result.
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // seconds
	User      UserResponse `json:"user"`
}
