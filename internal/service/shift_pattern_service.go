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

const defaultPatternColor = "#3B82F6"

// ShiftPatternService shift pattern CRUD.
type ShiftPatternService interface {
	Create(ctx context.Context, req *dto.CreateShiftPatternRequest) (*dto.ShiftPatternResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftPatternResponse, error)
	List(ctx context.Context) ([]dto.ShiftPatternResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftPatternRequest) (*dto.ShiftPatternResponse, error)
	Delete(ctx context.Context, id string) error
}

type shiftPatternService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftPatternService creates a ShiftPatternService.
func NewShiftPatternService(repo *repository.Repository, logger *zap.Logger) ShiftPatternService {
	return &shiftPatternService{repo: repo, logger: logger}
}

func (s *shiftPatternService) Create(ctx context.Context, req *dto.CreateShiftPatternRequest) (*dto.ShiftPatternResponse, error) {
	start, end, err := normalizeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	color := req.Color
	if color == "" {
		color = defaultPatternColor
	}

	pattern := &model.ShiftPattern{
		Name:      req.Name,
		StartTime: start,
		EndTime:   end,
		Color:     color,
		BreakTime: req.BreakTime,
	}
	if err := s.repo.ShiftPattern.Create(ctx, pattern); err != nil {
		s.logger.Error("create shift pattern failed", zap.Error(err))
		return nil, err
	}

	resp := toPatternResponse(pattern)
	return &resp, nil
}

func (s *shiftPatternService) GetByID(ctx context.Context, id string) (*dto.ShiftPatternResponse, error) {
	pattern, err := s.repo.ShiftPattern.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, err
	}
	resp := toPatternResponse(pattern)
	return &resp, nil
}

func (s *shiftPatternService) List(ctx context.Context) ([]dto.ShiftPatternResponse, error) {
	patterns, err := s.repo.ShiftPattern.List(ctx)
	if err != nil {
		s.logger.Error("list shift patterns failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ShiftPatternResponse, 0, len(patterns))
	for i := range patterns {
		result = append(result, toPatternResponse(&patterns[i]))
	}
	return result, nil
}

func (s *shiftPatternService) Update(ctx context.Context, id string, req *dto.UpdateShiftPatternRequest) (*dto.ShiftPatternResponse, error) {
	pattern, err := s.repo.ShiftPattern.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, err
	}

	start, end := pattern.StartTime, pattern.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if pattern.StartTime, pattern.EndTime, err = normalizeRange(start, end); err != nil {
		return nil, err
	}
	if req.Name != nil {
		pattern.Name = *req.Name
	}
	if req.Color != nil {
		pattern.Color = *req.Color
	}
	if req.BreakTime != nil {
		pattern.BreakTime = *req.BreakTime
	}

	if err := s.repo.ShiftPattern.Update(ctx, pattern); err != nil {
		s.logger.Error("update shift pattern failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toPatternResponse(pattern)
	return &resp, nil
}

func (s *shiftPatternService) Delete(ctx context.Context, id string) error {
	inUse, err := s.repo.Shift.CountByPattern(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return &ConflictError{Kind: ErrPatternInUse, ConflictType: "in_use"}
	}

	if err := s.repo.ShiftPattern.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrPatternNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			// referenced by an emergency request
			return &ConflictError{Kind: ErrPatternInUse, ConflictType: "in_use"}
		}
		s.logger.Error("delete shift pattern failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// normalizeRange canonicalizes both clock strings and requires start < end.
func normalizeRange(start, end string) (string, string, error) {
	ns, err := timeutil.NormalizeTime(start)
	if err != nil {
		return "", "", invalidFields("start_time: "+err.Error(), "start_time")
	}
	ne, err := timeutil.NormalizeTime(end)
	if err != nil {
		return "", "", invalidFields("end_time: "+err.Error(), "end_time")
	}
	if ok, _ := timeutil.ValidRange(ns, ne); !ok {
		return "", "", invalidFields("start_time must be before end_time", "start_time", "end_time")
	}
	return ns, ne, nil
}
