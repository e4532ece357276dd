package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

// TimeSlotService per-store time slot CRUD.
type TimeSlotService interface {
	Create(ctx context.Context, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error)
	List(ctx context.Context, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error)
	Delete(ctx context.Context, id string) error
}

type timeSlotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeSlotService creates a TimeSlotService.
func NewTimeSlotService(repo *repository.Repository, logger *zap.Logger) TimeSlotService {
	return &timeSlotService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *timeSlotService) Create(ctx context.Context, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	// 1. normalize and order-check the times
	start, end, err := normalizeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	// 2. the store must exist
	if _, err := s.repo.Store.GetByID(ctx, req.StoreID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	// 3. no overlap with the store's other slots
	existing, err := s.repo.TimeSlot.List(ctx, req.StoreID)
	if err != nil {
		s.logger.Error("list time slots failed", zap.Error(err))
		return nil, err
	}
	for _, other := range existing {
		if timeutil.Overlaps(start, end, clock(other.StartTime), clock(other.EndTime)) {
			return nil, &ConflictError{
				Kind:         ErrTimeSlotOverlap,
				ConflictType: "overlap",
				Fields:       []string{"start_time", "end_time"},
			}
		}
	}

	slot := &model.TimeSlot{
		StoreID:      req.StoreID,
		Name:         req.Name,
		StartTime:    start,
		EndTime:      end,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.repo.TimeSlot.Create(ctx, slot); err != nil {
		s.logger.Error("create time slot failed", zap.Error(err))
		return nil, err
	}

	resp := toTimeSlotResponse(slot)
	return &resp, nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *timeSlotService) GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("load time slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toTimeSlotResponse(slot)
	return &resp, nil
}

func (s *timeSlotService) List(ctx context.Context, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error) {
	slots, err := s.repo.TimeSlot.List(ctx, req.StoreID)
	if err != nil {
		s.logger.Error("list time slots failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, toTimeSlotResponse(&slots[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

// Update re-validates the range; the overlap scan runs on creation only.
func (s *timeSlotService) Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		return nil, err
	}

	start, end := slot.StartTime, slot.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if slot.StartTime, slot.EndTime, err = normalizeRange(start, end); err != nil {
		return nil, err
	}
	if req.Name != nil {
		slot.Name = *req.Name
	}
	if req.DisplayOrder != nil {
		slot.DisplayOrder = *req.DisplayOrder
	}

	if err := s.repo.TimeSlot.Update(ctx, slot); err != nil {
		s.logger.Error("update time slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toTimeSlotResponse(slot)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *timeSlotService) Delete(ctx context.Context, id string) error {
	if err := s.repo.TimeSlot.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeSlotNotFound
		}
		s.logger.Error("delete time slot failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
