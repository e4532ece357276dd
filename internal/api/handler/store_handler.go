package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/response"
)

// StoreHandler store endpoints.
type StoreHandler struct {
	storeSvc service.StoreService
}

// NewStoreHandler creates a StoreHandler.
func NewStoreHandler(storeSvc service.StoreService) *StoreHandler {
	return &StoreHandler{storeSvc: storeSvc}
}

// ListStores GET /api/v1/stores
func (h *StoreHandler) ListStores(c *gin.Context) {
	stores, err := h.storeSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": stores})
}

// GetStore GET /api/v1/stores/:id
func (h *StoreHandler) GetStore(c *gin.Context) {
	store, err := h.storeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, store)
}

// CreateStore POST /api/v1/stores
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req dto.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	store, err := h.storeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, store)
}

// UpdateStore PUT /api/v1/stores/:id
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	var req dto.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	store, err := h.storeSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, store)
}

// DeleteStore DELETE /api/v1/stores/:id
func (h *StoreHandler) DeleteStore(c *gin.Context) {
	id := c.Param("id")
	if err := h.storeSvc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dto.DeleteResponse{ID: id, Deleted: true})
}

// ShiftPatternHandler shift pattern endpoints.
type ShiftPatternHandler struct {
	patternSvc service.ShiftPatternService
}

// NewShiftPatternHandler creates a ShiftPatternHandler.
func NewShiftPatternHandler(patternSvc service.ShiftPatternService) *ShiftPatternHandler {
	return &ShiftPatternHandler{patternSvc: patternSvc}
}

// ListPatterns GET /api/v1/shift-patterns
func (h *ShiftPatternHandler) ListPatterns(c *gin.Context) {
	patterns, err := h.patternSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": patterns})
}

// GetPattern GET /api/v1/shift-patterns/:id
func (h *ShiftPatternHandler) GetPattern(c *gin.Context) {
	pattern, err := h.patternSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, pattern)
}

// CreatePattern POST /api/v1/shift-patterns
func (h *ShiftPatternHandler) CreatePattern(c *gin.Context) {
	var req dto.CreateShiftPatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	pattern, err := h.patternSvc.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, pattern)
}

// UpdatePattern PUT /api/v1/shift-patterns/:id
func (h *ShiftPatternHandler) UpdatePattern(c *gin.Context) {
	var req dto.UpdateShiftPatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	pattern, err := h.patternSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, pattern)
}

// DeletePattern refuses while any shift still references the pattern.
// DELETE /api/v1/shift-patterns/:id
func (h *ShiftPatternHandler) DeletePattern(c *gin.Context) {
	id := c.Param("id")
	if err := h.patternSvc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dto.DeleteResponse{ID: id, Deleted: true})
}
