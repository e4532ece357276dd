package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
)

var weekdayKeys = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// StoreService store CRUD.
type StoreService interface {
	Create(ctx context.Context, req *dto.CreateStoreRequest) (*dto.StoreResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StoreResponse, error)
	List(ctx context.Context) ([]dto.StoreResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStoreRequest) (*dto.StoreResponse, error)
	Delete(ctx context.Context, id string) error
}

type storeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStoreService creates a StoreService.
func NewStoreService(repo *repository.Repository, logger *zap.Logger) StoreService {
	return &storeService{repo: repo, logger: logger}
}

func (s *storeService) Create(ctx context.Context, req *dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	if err := validateRequiredStaff(req.RequiredStaff); err != nil {
		return nil, err
	}

	store := &model.Store{Name: req.Name, RequiredStaff: model.RequiredStaff(req.RequiredStaff)}
	if store.RequiredStaff == nil {
		store.RequiredStaff = model.RequiredStaff{}
	}
	if err := s.repo.Store.Create(ctx, store); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Kind: ErrStoreNameTaken, ConflictType: "name", Fields: []string{"name"}}
		}
		s.logger.Error("create store failed", zap.Error(err))
		return nil, err
	}

	resp := toStoreResponse(store)
	return &resp, nil
}

func (s *storeService) GetByID(ctx context.Context, id string) (*dto.StoreResponse, error) {
	store, err := s.repo.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	resp := toStoreResponse(store)
	return &resp, nil
}

func (s *storeService) List(ctx context.Context) ([]dto.StoreResponse, error) {
	stores, err := s.repo.Store.List(ctx)
	if err != nil {
		s.logger.Error("list stores failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.StoreResponse, 0, len(stores))
	for i := range stores {
		result = append(result, toStoreResponse(&stores[i]))
	}
	return result, nil
}

func (s *storeService) Update(ctx context.Context, id string, req *dto.UpdateStoreRequest) (*dto.StoreResponse, error) {
	store, err := s.repo.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.RequiredStaff != nil {
		if err := validateRequiredStaff(*req.RequiredStaff); err != nil {
			return nil, err
		}
		store.RequiredStaff = model.RequiredStaff(*req.RequiredStaff)
	}

	if err := s.repo.Store.Update(ctx, store); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Kind: ErrStoreNameTaken, ConflictType: "name", Fields: []string{"name"}}
		}
		s.logger.Error("update store failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toStoreResponse(store)
	return &resp, nil
}

func (s *storeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		s.logger.Error("delete store failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// validateRequiredStaff checks weekday → slot name → non-negative count.
func validateRequiredStaff(rs map[string]map[string]int) error {
	for day, slots := range rs {
		if !weekdayKeys[day] {
			return invalidFields("required_staff keys must be lower-case weekday names, got "+day, "required_staff")
		}
		for slot, n := range slots {
			if slot == "" {
				return invalidFields("required_staff slot names must not be empty", "required_staff")
			}
			if n < 0 {
				return invalidFields("required_staff counts must not be negative", "required_staff")
			}
		}
	}
	return nil
}
