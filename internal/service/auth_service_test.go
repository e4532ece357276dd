package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/jwt"
)

type fakeRevoker struct {
	revoked map[string]time.Duration
	users   map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: map[string]time.Duration{}, users: map[string]time.Duration{}}
}

func (r *fakeRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	r.revoked[jti] = ttl
	return nil
}

func (r *fakeRevoker) RevokeUser(_ context.Context, userID string, ttl time.Duration) error {
	r.users[userID] = ttl
	return nil
}

func setupAuthService(t *testing.T) (*fixture, AuthService, *jwt.Manager, *fakeRevoker) {
	t.Helper()
	f := newFixture()
	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Hour})
	revoker := newFakeRevoker()
	return f, NewAuthService(f.repo, mgr, revoker, zap.NewNop()), mgr, revoker
}

func TestAuthService_Login(t *testing.T) {
	f, svc, mgr, _ := setupAuthService(t)
	store := f.store(t, "Shibuya")
	u := f.user(t, model.RoleStaff, "sby-001", "Aiko", store)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{LoginID: "sby-001", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLoginAt)

	claims, err := mgr.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, model.RoleStaff, claims.Role)
	assert.Equal(t, "sby-001", claims.LoginID)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	f, svc, _, _ := setupAuthService(t)
	f.user(t, model.RoleManager, "mgr-001", "Mana")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{LoginID: "mgr-001", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{LoginID: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ResetPassword(t *testing.T) {
	f, svc, _, _ := setupAuthService(t)
	store := f.store(t, "Shibuya")
	mgr := f.user(t, model.RoleManager, "mgr-001", "Mana")
	staff := f.user(t, model.RoleStaff, "sby-001", "Aiko", store)
	other := f.user(t, model.RoleStaff, "sby-002", "Ren", store)
	ctx := context.Background()

	err := svc.ResetPassword(ctx, callerOf(other), &dto.ResetPasswordRequest{LoginID: "sby-001", NewPassword: "secret99"})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.ResetPassword(ctx, callerOf(staff), &dto.ResetPasswordRequest{LoginID: "sby-001", NewPassword: "secret99"}))
	stored := f.db.users[staff.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret99")))
	assert.False(t, stored.IsFirstLogin)

	require.NoError(t, svc.ResetPassword(ctx, callerOf(mgr), &dto.ResetPasswordRequest{LoginID: "sby-002", NewPassword: "secret77"}))

	err = svc.ResetPassword(ctx, callerOf(mgr), &dto.ResetPasswordRequest{LoginID: "sby-404", NewPassword: "secret77"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	_, svc, _, revoker := setupAuthService(t)

	require.NoError(t, svc.Logout(context.Background(), "jti-1", time.Now().Add(30*time.Minute)))
	require.Contains(t, revoker.revoked, "jti-1")
	assert.InDelta(t, (30 * time.Minute).Seconds(), revoker.revoked["jti-1"].Seconds(), 5)

	assert.NoError(t, svc.Logout(context.Background(), "", time.Now()))
	assert.Len(t, revoker.revoked, 1)
}

func TestAuthService_Me(t *testing.T) {
	f, svc, _, _ := setupAuthService(t)
	store := f.store(t, "Shibuya")
	u := f.user(t, model.RoleStaff, "sby-001", "Aiko", store)

	me, err := svc.Me(context.Background(), callerOf(u))
	require.NoError(t, err)
	assert.Equal(t, "sby-001", me.LoginID)
	require.Len(t, me.Stores, 1)
	assert.Equal(t, "Shibuya", me.Stores[0].StoreName)

	_, err = svc.Me(context.Background(), Caller{UserID: "gone"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
