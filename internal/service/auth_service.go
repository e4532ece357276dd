package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/jwt"
)

// TokenRevoker blacklists single token ids or every token of a user until
// they expire.
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
}

// AuthService authentication.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	ResetPassword(ctx context.Context, caller Caller, req *dto.ResetPasswordRequest) error
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, caller Caller) (*dto.UserResponse, error)
}

type authService struct {
	repo    *repository.Repository
	jwtMgr  *jwt.Manager
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewAuthService creates an AuthService. revoker may be nil, in which
// case logout is client-side only.
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, revoker TokenRevoker, logger *zap.Logger) AuthService {
	return &authService{
		repo:    repo,
		jwtMgr:  jwtMgr,
		revoker: revoker,
		logger:  logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. look up the user
	user, err := s.repo.User.GetByLoginID(ctx, req.LoginID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user for login failed", zap.Error(err))
		return nil, err
	}

	// 2. verify the password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. record the login; a failure here must not block the user
	now := time.Now()
	if err := s.repo.User.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("update last_login_at failed", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	// 4. issue the token
	token, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Role, user.LoginID)
	if err != nil {
		s.logger.Error("sign access token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		Token:     token,
		ExpiresIn: int(s.jwtMgr.TTL().Seconds()),
		User:      toUserResponse(user),
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, caller Caller, req *dto.ResetPasswordRequest) error {
	user, err := s.repo.User.GetByLoginID(ctx, req.LoginID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("load user for password reset failed", zap.Error(err))
		return err
	}

	if !caller.canActFor(user.ID) {
		return ErrForbidden
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.User.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("update password failed", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	s.logger.Info("password reset",
		zap.String("login_id", user.LoginID),
		zap.String("by", caller.LoginID),
	)
	return nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.revoker == nil || jti == "" {
		return nil
	}
	if err := s.revoker.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, caller Caller) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}
