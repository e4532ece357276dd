package service

import (
	"go.uber.org/zap"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/notify"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/jwt"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/mail"
)

// Service aggregates every service.
type Service struct {
	Auth         AuthService
	User         UserService
	Store        StoreService
	ShiftPattern ShiftPatternService
	TimeSlot     TimeSlotService
	Shift        ShiftService
	TimeOff      TimeOffService
	Emergency    EmergencyService
	Notification NotificationService
	Dashboard    DashboardService
}

// Deps are the collaborators services need beyond the repository.
// Revoker may be nil.
type Deps struct {
	JWT      *jwt.Manager
	Revoker  TokenRevoker
	Sender   mail.Sender
	Notifier notify.Notifier
}

// NewService wires the service aggregate.
func NewService(cfg *config.Config, repo *repository.Repository, deps Deps, logger *zap.Logger) *Service {
	loc := cfg.Server.Location()
	baseURL := cfg.Server.BaseURL

	return &Service{
		Auth:         NewAuthService(repo, deps.JWT, deps.Revoker, logger),
		User:         NewUserService(repo, &cfg.LoginID, deps.Revoker, cfg.Auth.AccessTokenTTL, logger),
		Store:        NewStoreService(repo, logger),
		ShiftPattern: NewShiftPatternService(repo, logger),
		TimeSlot:     NewTimeSlotService(repo, logger),
		Shift:        NewShiftService(repo, deps.Notifier, baseURL, loc, logger),
		TimeOff:      NewTimeOffService(repo, deps.Notifier, baseURL, logger),
		Emergency:    NewEmergencyService(repo, deps.Notifier, baseURL, logger),
		Notification: NewNotificationService(repo, deps.Sender, &cfg.Mail, baseURL, loc, logger),
		Dashboard:    NewDashboardService(repo, loc, logger),
	}
}
