package service

import (
	"time"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

// ── model → dto ──

// clock renders a TIME column ("09:00:00") as "09:00".
func clock(s string) string {
	if n, err := timeutil.NormalizeTime(s); err == nil {
		return n
	}
	return s
}

func stamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

func stampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := stamp(*t)
	return &s
}

func toUserResponse(u *model.User) dto.UserResponse {
	stores := make([]dto.UserStoreResponse, 0, len(u.Stores))
	for _, link := range u.Stores {
		item := dto.UserStoreResponse{StoreID: link.StoreID, IsFlexible: link.IsFlexible}
		if link.Store != nil {
			item.StoreName = link.Store.Name
		}
		stores = append(stores, item)
	}
	return dto.UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		SkillLevel:   u.SkillLevel,
		LoginID:      u.LoginID,
		IsFirstLogin: u.IsFirstLogin,
		LastLoginAt:  stampPtr(u.LastLoginAt),
		Stores:       stores,
		CreatedAt:    stamp(u.CreatedAt),
		UpdatedAt:    stamp(u.UpdatedAt),
	}
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{ID: u.ID, Name: u.Name, LoginID: u.LoginID}
}

func toStoreBrief(s *model.Store) *dto.StoreBrief {
	if s == nil {
		return nil
	}
	return &dto.StoreBrief{ID: s.ID, Name: s.Name}
}

func toPatternBrief(p *model.ShiftPattern) *dto.PatternBrief {
	if p == nil {
		return nil
	}
	return &dto.PatternBrief{
		ID:        p.ID,
		Name:      p.Name,
		StartTime: clock(p.StartTime),
		EndTime:   clock(p.EndTime),
		Color:     p.Color,
	}
}

func toStoreResponse(s *model.Store) dto.StoreResponse {
	required := map[string]map[string]int(s.RequiredStaff)
	if required == nil {
		required = map[string]map[string]int{}
	}
	return dto.StoreResponse{
		ID:            s.ID,
		Name:          s.Name,
		RequiredStaff: required,
		CreatedAt:     stamp(s.CreatedAt),
		UpdatedAt:     stamp(s.UpdatedAt),
	}
}

func toPatternResponse(p *model.ShiftPattern) dto.ShiftPatternResponse {
	return dto.ShiftPatternResponse{
		ID:        p.ID,
		Name:      p.Name,
		StartTime: clock(p.StartTime),
		EndTime:   clock(p.EndTime),
		Color:     p.Color,
		BreakTime: p.BreakTime,
		CreatedAt: stamp(p.CreatedAt),
		UpdatedAt: stamp(p.UpdatedAt),
	}
}

func toTimeSlotResponse(t *model.TimeSlot) dto.TimeSlotResponse {
	return dto.TimeSlotResponse{
		ID:           t.ID,
		StoreID:      t.StoreID,
		Name:         t.Name,
		StartTime:    clock(t.StartTime),
		EndTime:      clock(t.EndTime),
		DisplayOrder: t.DisplayOrder,
		CreatedAt:    stamp(t.CreatedAt),
		UpdatedAt:    stamp(t.UpdatedAt),
	}
}

func toShiftResponse(s *model.Shift) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		User:      toUserBrief(s.User),
		StoreID:   s.StoreID,
		Store:     toStoreBrief(s.Store),
		Date:      timeutil.FormatDate(s.Date),
		PatternID: s.PatternID,
		Pattern:   toPatternBrief(s.Pattern),
		Status:    s.Status,
		Notes:     s.Notes,
		Version:   s.Version,
		CreatedAt: stamp(s.CreatedAt),
		UpdatedAt: stamp(s.UpdatedAt),
	}
}

func toTimeOffResponse(r *model.TimeOffRequest) dto.TimeOffResponse {
	return dto.TimeOffResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		User:        toUserBrief(r.User),
		Date:        timeutil.FormatDate(r.Date),
		Reason:      r.Reason,
		Status:      r.Status,
		RespondedBy: r.RespondedBy,
		RespondedAt: stampPtr(r.RespondedAt),
		CreatedAt:   stamp(r.CreatedAt),
	}
}

func toVolunteerResponse(v *model.EmergencyVolunteer) dto.VolunteerResponse {
	return dto.VolunteerResponse{
		ID:                 v.ID,
		EmergencyRequestID: v.EmergencyRequestID,
		UserID:             v.UserID,
		User:               toUserBrief(v.User),
		RespondedAt:        stamp(v.RespondedAt),
	}
}

func toEmergencyResponse(r *model.EmergencyRequest) dto.EmergencyResponse {
	volunteers := make([]dto.VolunteerResponse, 0, len(r.Volunteers))
	for i := range r.Volunteers {
		volunteers = append(volunteers, toVolunteerResponse(&r.Volunteers[i]))
	}
	return dto.EmergencyResponse{
		ID:             r.ID,
		OriginalUserID: r.OriginalUserID,
		OriginalUser:   toUserBrief(r.OriginalUser),
		StoreID:        r.StoreID,
		Store:          toStoreBrief(r.Store),
		Date:           timeutil.FormatDate(r.Date),
		ShiftPatternID: r.ShiftPatternID,
		ShiftPattern:   toPatternBrief(r.ShiftPattern),
		Reason:         r.Reason,
		Status:         r.Status,
		FilledBy:       r.FilledBy,
		Volunteers:     volunteers,
		CreatedAt:      stamp(r.CreatedAt),
	}
}
