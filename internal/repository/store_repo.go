package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
)

// StoreRepository store data access.
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id string) (*model.Store, error)
	List(ctx context.Context) ([]model.Store, error)
	Update(ctx context.Context, store *model.Store) error
	Delete(ctx context.Context, id string) error
}

type storeRepo struct {
	db *gorm.DB
}

// NewStoreRepo creates the gorm StoreRepository.
func NewStoreRepo(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepo) GetByID(ctx context.Context, id string) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) List(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Order("name ASC").Find(&stores).Error
	return stores, err
}

func (r *storeRepo) Update(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

func (r *storeRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Store{}))
}

// ── ShiftPattern ──

// ShiftPatternRepository shift pattern data access.
type ShiftPatternRepository interface {
	Create(ctx context.Context, pattern *model.ShiftPattern) error
	GetByID(ctx context.Context, id string) (*model.ShiftPattern, error)
	List(ctx context.Context) ([]model.ShiftPattern, error)
	Update(ctx context.Context, pattern *model.ShiftPattern) error
	Delete(ctx context.Context, id string) error
}

type shiftPatternRepo struct {
	db *gorm.DB
}

// NewShiftPatternRepo creates the gorm ShiftPatternRepository.
func NewShiftPatternRepo(db *gorm.DB) ShiftPatternRepository {
	return &shiftPatternRepo{db: db}
}

func (r *shiftPatternRepo) Create(ctx context.Context, pattern *model.ShiftPattern) error {
	return r.db.WithContext(ctx).Create(pattern).Error
}

func (r *shiftPatternRepo) GetByID(ctx context.Context, id string) (*model.ShiftPattern, error) {
	var pattern model.ShiftPattern
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pattern).Error; err != nil {
		return nil, err
	}
	return &pattern, nil
}

func (r *shiftPatternRepo) List(ctx context.Context) ([]model.ShiftPattern, error) {
	var patterns []model.ShiftPattern
	err := r.db.WithContext(ctx).Order("start_time ASC, name ASC").Find(&patterns).Error
	return patterns, err
}

func (r *shiftPatternRepo) Update(ctx context.Context, pattern *model.ShiftPattern) error {
	return r.db.WithContext(ctx).Save(pattern).Error
}

func (r *shiftPatternRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ShiftPattern{}))
}
