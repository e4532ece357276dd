package handler

import "github.com/ren-jimpo/shift-management-app-sub000/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Store        *StoreHandler
	ShiftPattern *ShiftPatternHandler
	TimeSlot     *TimeSlotHandler
	Shift        *ShiftHandler
	TimeOff      *TimeOffHandler
	Emergency    *EmergencyHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
}

// NewHandler builds the handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Store:        NewStoreHandler(svc.Store),
		ShiftPattern: NewShiftPatternHandler(svc.ShiftPattern),
		TimeSlot:     NewTimeSlotHandler(svc.TimeSlot),
		Shift:        NewShiftHandler(svc.Shift),
		TimeOff:      NewTimeOffHandler(svc.TimeOff),
		Emergency:    NewEmergencyHandler(svc.Emergency),
		Notification: NewNotificationHandler(svc.Notification),
		Dashboard:    NewDashboardHandler(svc.Dashboard),
	}
}
