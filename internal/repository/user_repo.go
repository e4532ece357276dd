package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
)

// UserFilter list filters for users.
type UserFilter struct {
	StoreID string
	Role    string
	LoginID string
}

// UserRepository user data access.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByLoginID(ctx context.Context, loginID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, filter UserFilter) ([]model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role string) (int64, error)
	CountStaffInStore(ctx context.Context, storeID string) (int64, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates the gorm UserRepository.
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Stores").Preload("Stores.Store").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByLoginID(ctx context.Context, loginID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Stores").Preload("Stores.Store").
		Where("login_id = ?", loginID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context, filter UserFilter) ([]model.User, error) {
	var users []model.User
	db := r.db.WithContext(ctx).Model(&model.User{})

	if filter.StoreID != "" {
		db = db.Where("id IN (?)",
			r.db.Model(&model.UserStore{}).Select("user_id").Where("store_id = ?", filter.StoreID))
	}
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	if filter.LoginID != "" {
		db = db.Where("login_id = ?", filter.LoginID)
	}

	err := db.Preload("Stores").Preload("Stores.Store").
		Order("role ASC, login_id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":  hash,
			"is_first_login": false,
			"updated_at":     gorm.Expr("NOW()"),
		}))
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}))
}

func (r *userRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}

func (r *userRepo) CountStaffInStore(ctx context.Context, storeID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Joins("JOIN user_stores us ON us.user_id = users.id").
		Where("users.role = ? AND us.store_id = ?", model.RoleStaff, storeID).
		Count(&n).Error
	return n, err
}

// ── UserStore ──

// UserStoreRepository membership data access.
type UserStoreRepository interface {
	ReplaceForUser(ctx context.Context, userID string, links []model.UserStore) error
	ListByStore(ctx context.Context, storeID string) ([]model.UserStore, error)
	ListByUser(ctx context.Context, userID string) ([]model.UserStore, error)
	// ListFlexible returns every link flagged flexible, at any store.
	ListFlexible(ctx context.Context) ([]model.UserStore, error)
	ResetFlexible(ctx context.Context, storeID string) error
	SetFlexible(ctx context.Context, storeID string, userIDs []string) (int64, error)
}

type userStoreRepo struct {
	db *gorm.DB
}

// NewUserStoreRepo creates the gorm UserStoreRepository.
func NewUserStoreRepo(db *gorm.DB) UserStoreRepository {
	return &userStoreRepo{db: db}
}

func (r *userStoreRepo) ReplaceForUser(ctx context.Context, userID string, links []model.UserStore) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserStore{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	for i := range links {
		links[i].UserID = userID
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&links).Error
}

func (r *userStoreRepo) ListByStore(ctx context.Context, storeID string) ([]model.UserStore, error) {
	var links []model.UserStore
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Find(&links).Error
	return links, err
}

func (r *userStoreRepo) ListByUser(ctx context.Context, userID string) ([]model.UserStore, error) {
	var links []model.UserStore
	err := r.db.WithContext(ctx).
		Preload("Store").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&links).Error
	return links, err
}

func (r *userStoreRepo) ListFlexible(ctx context.Context) ([]model.UserStore, error) {
	var links []model.UserStore
	err := r.db.WithContext(ctx).Where("is_flexible = ?", true).Find(&links).Error
	return links, err
}

func (r *userStoreRepo) ResetFlexible(ctx context.Context, storeID string) error {
	return r.db.WithContext(ctx).
		Model(&model.UserStore{}).
		Where("store_id = ?", storeID).
		Update("is_flexible", false).Error
}

func (r *userStoreRepo) SetFlexible(ctx context.Context, storeID string, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.UserStore{}).
		Where("store_id = ? AND user_id IN ?", storeID, userIDs).
		Update("is_flexible", true)
	return result.RowsAffected, result.Error
}

// ── LoginIDSequence ──

// LoginIDSequenceRepository atomic per-scope counters.
type LoginIDSequenceRepository interface {
	// Next returns the next value for scope. A scope seen for the first time
	// starts at initial.
	Next(ctx context.Context, scope string, initial int) (int, error)
}

type loginIDSequenceRepo struct {
	db *gorm.DB
}

// NewLoginIDSequenceRepo creates the gorm LoginIDSequenceRepository.
func NewLoginIDSequenceRepo(db *gorm.DB) LoginIDSequenceRepository {
	return &loginIDSequenceRepo{db: db}
}

func (r *loginIDSequenceRepo) Next(ctx context.Context, scope string, initial int) (int, error) {
	var value int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO login_id_sequences (scope, last_value) VALUES (?, ?)
		ON CONFLICT (scope) DO UPDATE SET last_value = login_id_sequences.last_value + 1
		RETURNING last_value`, scope, initial).
		Scan(&value).Error
	return value, err
}
