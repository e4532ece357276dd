package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
)

const tempPasswordLength = 10

// UserService staff and manager accounts.
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string) error
	SetFlexible(ctx context.Context, req *dto.SetFlexibleRequest) (*dto.SetFlexibleResponse, error)
}

type userService struct {
	repo     *repository.Repository
	loginIDs *loginIDGenerator
	revoker  TokenRevoker
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewUserService creates a UserService. revoker may be nil, in which case
// a role change or deletion takes effect when the user's token expires.
func NewUserService(repo *repository.Repository, cfg *config.LoginIDConfig, revoker TokenRevoker, tokenTTL time.Duration, logger *zap.Logger) UserService {
	return &userService{
		repo:     repo,
		loginIDs: newLoginIDGenerator(cfg),
		revoker:  revoker,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	// 1. staff must belong to at least one store
	if req.Role == model.RoleStaff && len(req.Stores) == 0 {
		return nil, invalidFields("staff must be assigned to at least one store", "stores")
	}
	links, err := s.storeLinks(ctx, req.Stores)
	if err != nil {
		return nil, err
	}

	// 2. email must be free
	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	// 3. password: supplied or a temporary one returned exactly once
	var tempPassword string
	password := ""
	if req.Password != nil {
		password = *req.Password
	} else {
		tempPassword = generateTempPassword()
		password = tempPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	skill := req.SkillLevel
	if skill == "" {
		skill = model.SkillRegular
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
		SkillLevel:   skill,
		PasswordHash: string(hash),
		IsFirstLogin: true,
	}

	// 4. login id + user + memberships in one transaction
	var firstStore *model.Store
	if len(links) > 0 {
		firstStore = links[0].Store
	}
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		loginID, err := s.loginIDs.next(ctx, tx, req.Role, firstStore)
		if err != nil {
			return err
		}
		user.LoginID = loginID
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		return tx.UserStore.ReplaceForUser(ctx, user.ID, stripStores(links))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Kind: ErrEmailTaken, ConflictType: "email", Fields: []string{"email"}}
		}
		if errors.Is(err, ErrLoginIDExhausted) {
			return nil, err
		}
		s.logger.Error("create user failed", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	created, err := s.repo.User.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("login_id", created.LoginID), zap.String("role", created.Role))
	return &dto.CreateUserResponse{User: toUserResponse(created), TempPassword: tempPassword}, nil
}

// ────────────────────── Get / List ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx, repository.UserFilter{
		StoreID: req.StoreID,
		Role:    req.Role,
		LoginID: req.LoginID,
	})
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *req.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	roleChanged := req.Role != nil && *req.Role != user.Role
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.SkillLevel != nil {
		user.SkillLevel = *req.SkillLevel
	}

	var links []model.UserStore
	if req.Stores != nil {
		if user.Role == model.RoleStaff && len(*req.Stores) == 0 {
			return nil, invalidFields("staff must be assigned to at least one store", "stores")
		}
		if links, err = s.storeLinks(ctx, *req.Stores); err != nil {
			return nil, err
		}
	}

	// memberships are replaced wholesale together with the user row
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}
		if req.Stores == nil {
			return nil
		}
		return tx.UserStore.ReplaceForUser(ctx, user.ID, stripStores(links))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Kind: ErrEmailTaken, ConflictType: "email", Fields: []string{"email"}}
		}
		s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if roleChanged {
		s.revokeSessions(ctx, id)
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string) error {
	if err := s.repo.User.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("delete user failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.revokeSessions(ctx, id)
	return nil
}

// revokeSessions signs the user out everywhere so a stale role in an
// outstanding token stops working.
func (s *userService) revokeSessions(ctx context.Context, userID string) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.RevokeUser(ctx, userID, s.tokenTTL); err != nil {
		s.logger.Error("revoke user tokens failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// ────────────────────── Flexible staff ──────────────────────

func (s *userService) SetFlexible(ctx context.Context, req *dto.SetFlexibleRequest) (*dto.SetFlexibleResponse, error) {
	if _, err := s.repo.Store.GetByID(ctx, req.StoreID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	var n int64
	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.UserStore.ResetFlexible(ctx, req.StoreID); err != nil {
			return err
		}
		var err error
		n, err = tx.UserStore.SetFlexible(ctx, req.StoreID, req.UserIDs)
		return err
	})
	if err != nil {
		s.logger.Error("set flexible staff failed", zap.String("store_id", req.StoreID), zap.Error(err))
		return nil, err
	}

	return &dto.SetFlexibleResponse{StoreID: req.StoreID, FlexibleCount: n}, nil
}

// ── helpers ──

// storeLinks resolves membership inputs, keeping request order so the
// first entry decides the login prefix.
func (s *userService) storeLinks(ctx context.Context, inputs []dto.UserStoreInput) ([]model.UserStore, error) {
	links := make([]model.UserStore, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.StoreID] {
			continue
		}
		seen[in.StoreID] = true

		store, err := s.repo.Store.GetByID(ctx, in.StoreID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStoreNotFound
			}
			return nil, err
		}
		links = append(links, model.UserStore{StoreID: store.ID, IsFlexible: in.IsFlexible, Store: store})
	}
	return links, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.User.GetByEmail(ctx, email)
	if err == nil && existing.ID != selfID {
		return &ConflictError{Kind: ErrEmailTaken, ConflictType: "email", Fields: []string{"email"}}
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func stripStores(links []model.UserStore) []model.UserStore {
	out := make([]model.UserStore, len(links))
	for i, l := range links {
		out[i] = model.UserStore{StoreID: l.StoreID, IsFlexible: l.IsFlexible}
	}
	return out
}

func generateTempPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tempPasswordLength]
}
