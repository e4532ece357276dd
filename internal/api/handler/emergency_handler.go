package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/response"
)

// EmergencyHandler emergency request and volunteer endpoints.
type EmergencyHandler struct {
	emergencySvc service.EmergencyService
}

// NewEmergencyHandler creates an EmergencyHandler.
func NewEmergencyHandler(emergencySvc service.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{emergencySvc: emergencySvc}
}

// ListRequests GET /api/v1/emergency-requests
func (h *EmergencyHandler) ListRequests(c *gin.Context) {
	var req dto.EmergencyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.emergencySvc.List(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetRequest GET /api/v1/emergency-requests/:id
func (h *EmergencyHandler) GetRequest(c *gin.Context) {
	er, err := h.emergencySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, er)
}

// CreateRequest opens an emergency request and announces it.
// POST /api/v1/emergency-requests
func (h *EmergencyHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	er, err := h.emergencySvc.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, er)
}

// UpdateRequest edits the reason or closes the request. Filling requires
// volunteer_id and reassigns the shift to that volunteer.
// PUT /api/v1/emergency-requests/:id
func (h *EmergencyHandler) UpdateRequest(c *gin.Context) {
	var req dto.UpdateEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	er, err := h.emergencySvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, er)
}

// DeleteRequest DELETE /api/v1/emergency-requests/:id
func (h *EmergencyHandler) DeleteRequest(c *gin.Context) {
	id := c.Param("id")
	if err := h.emergencySvc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dto.DeleteResponse{ID: id, Deleted: true})
}

// ListVolunteers GET /api/v1/emergency-volunteers
func (h *EmergencyHandler) ListVolunteers(c *gin.Context) {
	var req dto.VolunteerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.emergencySvc.ListVolunteers(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Volunteer POST /api/v1/emergency-volunteers
func (h *EmergencyHandler) Volunteer(c *gin.Context) {
	var req dto.CreateVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	v, err := h.emergencySvc.Volunteer(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, v)
}

// DeleteVolunteer withdraws or rejects a volunteer. The request keeps its
// status.
// DELETE /api/v1/emergency-volunteers/:id
func (h *EmergencyHandler) DeleteVolunteer(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.emergencySvc.DeleteVolunteer(c.Request.Context(), caller, id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dto.DeleteResponse{ID: id, Deleted: true})
}
