package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

// DashboardService per-store daily overview.
type DashboardService interface {
	Get(ctx context.Context, req *dto.DashboardRequest) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &dashboardService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// Get counts the store's shifts for the date and compares, per time slot,
// the confirmed headcount whose pattern overlaps the slot with the
// required_staff entry for that weekday.
func (s *dashboardService) Get(ctx context.Context, req *dto.DashboardRequest) (*dto.DashboardResponse, error) {
	store, err := s.repo.Store.GetByID(ctx, req.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	dateStr := req.Date
	if dateStr == "" {
		dateStr = s.now().In(s.loc).Format(timeutil.DateLayout)
	}
	date, err := timeutil.ParseDate(dateStr)
	if err != nil {
		return nil, invalidFields(err.Error(), "date")
	}

	shifts, err := s.repo.Shift.List(ctx, repository.ShiftFilter{StoreID: store.ID, DateFrom: &date, DateTo: &date})
	if err != nil {
		s.logger.Error("dashboard: list shifts failed", zap.Error(err))
		return nil, err
	}
	slots, err := s.repo.TimeSlot.List(ctx, store.ID)
	if err != nil {
		s.logger.Error("dashboard: list time slots failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.DashboardResponse{
		Date:  timeutil.FormatDate(date),
		Store: dto.StoreBrief{ID: store.ID, Name: store.Name},
		Slots: make([]dto.SlotStaffing, 0, len(slots)),
	}

	var confirmed []model.Shift
	for _, sh := range shifts {
		switch sh.Status {
		case model.ShiftStatusConfirmed:
			resp.ConfirmedShifts++
			confirmed = append(confirmed, sh)
		case model.ShiftStatusDraft:
			resp.DraftShifts++
		}
	}

	required := store.RequiredStaff[timeutil.WeekdayKey(date)]
	for _, slot := range slots {
		item := dto.SlotStaffing{
			TimeSlotID: slot.ID,
			Name:       slot.Name,
			StartTime:  clock(slot.StartTime),
			EndTime:    clock(slot.EndTime),
			Required:   required[slot.Name],
		}
		for _, sh := range confirmed {
			if sh.Pattern != nil && timeutil.Overlaps(sh.Pattern.StartTime, sh.Pattern.EndTime, slot.StartTime, slot.EndTime) {
				item.Assigned++
			}
		}
		if item.Required > item.Assigned {
			item.Shortage = item.Required - item.Assigned
		}
		resp.Slots = append(resp.Slots, item)
	}

	// pending time off of the store's members on that date
	members, err := s.repo.User.List(ctx, repository.UserFilter{StoreID: store.ID})
	if err != nil {
		s.logger.Error("dashboard: list members failed", zap.Error(err))
		return nil, err
	}
	memberSet := make(map[string]struct{}, len(members))
	for _, u := range members {
		memberSet[u.ID] = struct{}{}
	}
	pending, err := s.repo.TimeOff.List(ctx, repository.TimeOffFilter{
		Status:   model.TimeOffPending,
		DateFrom: &date,
		DateTo:   &date,
	})
	if err != nil {
		s.logger.Error("dashboard: list time off failed", zap.Error(err))
		return nil, err
	}
	for _, r := range pending {
		if _, ok := memberSet[r.UserID]; ok {
			resp.PendingTimeOff++
		}
	}

	open, err := s.repo.Emergency.List(ctx, repository.EmergencyFilter{
		StoreID:  store.ID,
		Status:   model.EmergencyOpen,
		DateFrom: &date,
	})
	if err != nil {
		s.logger.Error("dashboard: list emergencies failed", zap.Error(err))
		return nil, err
	}
	for _, er := range open {
		if er.Date.Equal(date) {
			resp.OpenEmergencies++
		}
	}

	return resp, nil
}
