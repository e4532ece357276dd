package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/response"
)

// NotificationHandler email and scheduled notification endpoints.
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// DailyShiftNotifications mails every user with a confirmed shift today.
// Individual delivery failures are counted, not returned as errors.
// GET|POST /api/v1/cron/daily-shift-notifications
func (h *NotificationHandler) DailyShiftNotifications(c *gin.Context) {
	result, err := h.notificationSvc.SendDailyShiftNotifications(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// SendEmail POST /api/v1/email
func (h *NotificationHandler) SendEmail(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.notificationSvc.SendEmail(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// SendTest POST /api/v1/email/test
func (h *NotificationHandler) SendTest(c *gin.Context) {
	var req dto.TestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.notificationSvc.SendTest(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// DashboardHandler store overview endpoint.
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Get GET /api/v1/dashboard?store_id=&date=
func (h *DashboardHandler) Get(c *gin.Context) {
	var req dto.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.dashboardSvc.Get(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}
