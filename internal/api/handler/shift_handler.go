package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ShiftHandler shift endpoints.
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler creates a ShiftHandler.
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListShifts GET /api/v1/shifts
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	shifts, err := h.shiftSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// GetShift GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *gin.Context) {
	shift, err := h.shiftSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, shift)
}

// CreateShift creates a shift after the per-day conflict check. Conflicts
// answer 409 with conflictType and conflictingStore.
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, shift)
}

// UpdateShift PUT /api/v1/shifts/:id
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	shift, err := h.shiftSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, shift)
}

// DeleteShift DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id := c.Param("id")
	if err := h.shiftSvc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dto.DeleteResponse{ID: id, Deleted: true})
}

// BulkUpdateWeek sets the status of every shift of a store in a week.
// PATCH /api/v1/shifts
func (h *ShiftHandler) BulkUpdateWeek(c *gin.Context) {
	var req dto.BulkUpdateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.shiftSvc.BulkUpdateWeek(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// CreateRecurring expands an RRULE into draft shifts. Dates that conflict
// are reported in skipped instead of failing the batch.
// POST /api/v1/shifts/recurring
func (h *ShiftHandler) CreateRecurring(c *gin.Context) {
	var req dto.RecurringShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.shiftSvc.CreateRecurring(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, result)
}

// ExportWeek downloads the weekly roster of a store as xlsx.
// GET /api/v1/shifts/export?store_id=&week_start=
func (h *ShiftHandler) ExportWeek(c *gin.Context) {
	var req dto.ShiftExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	buf, filename, err := h.shiftSvc.ExportWeek(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Calendar serves confirmed shifts as an iCalendar feed. Staff only get
// their own; managers may pass user_id.
// GET /api/v1/shifts/calendar.ics
func (h *ShiftHandler) Calendar(c *gin.Context) {
	var req dto.ShiftCalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID && !caller.IsManager() {
		writeError(c, service.ErrForbidden)
		return
	}

	body, err := h.shiftSvc.Calendar(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="shifts.ics"`)
	c.Data(http.StatusOK, icsContentType, body)
}
