package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/response"
)

// TimeOffHandler time-off request endpoints.
type TimeOffHandler struct {
	timeOffSvc service.TimeOffService
}

// NewTimeOffHandler creates a TimeOffHandler.
func NewTimeOffHandler(timeOffSvc service.TimeOffService) *TimeOffHandler {
	return &TimeOffHandler{timeOffSvc: timeOffSvc}
}

// ListRequests GET /api/v1/time-off-requests
func (h *TimeOffHandler) ListRequests(c *gin.Context) {
	var req dto.TimeOffListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.timeOffSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateRequest POST /api/v1/time-off-requests
func (h *TimeOffHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateTimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.timeOffSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, result)
}

// RespondRequest approves or rejects a pending request.
// PUT /api/v1/time-off-requests/:id
func (h *TimeOffHandler) RespondRequest(c *gin.Context) {
	var req dto.RespondTimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.timeOffSvc.Respond(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// BulkRespond answers many pending requests at once; answered ones are
// left untouched.
// PATCH /api/v1/time-off-requests
func (h *TimeOffHandler) BulkRespond(c *gin.Context) {
	var req dto.BulkRespondTimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if len(req.IDs) > dto.MaxBulkTimeOff {
		response.BadRequest(c, 10001, "too many ids")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.timeOffSvc.BulkRespond(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteRequest withdraws a pending request.
// DELETE /api/v1/time-off-requests/:id
func (h *TimeOffHandler) DeleteRequest(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.timeOffSvc.Delete(c.Request.Context(), caller, id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dto.DeleteResponse{ID: id, Deleted: true})
}
