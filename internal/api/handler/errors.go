package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/response"
)

type errorMapping struct {
	target error
	status int
	code   int
}

// errorMappings is checked in order with errors.Is; the first match wins.
var errorMappings = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, 11001},
	{service.ErrForbidden, http.StatusForbidden, 10003},

	{service.ErrUserNotFound, http.StatusNotFound, 20001},
	{service.ErrEmailTaken, http.StatusConflict, 20002},
	{service.ErrLoginIDExhausted, http.StatusConflict, 20003},

	{service.ErrStoreNotFound, http.StatusNotFound, 30001},
	{service.ErrStoreNameTaken, http.StatusConflict, 30002},
	{service.ErrPatternNotFound, http.StatusNotFound, 31001},
	{service.ErrPatternInUse, http.StatusConflict, 31002},
	{service.ErrTimeSlotNotFound, http.StatusNotFound, 32001},
	{service.ErrTimeSlotOverlap, http.StatusConflict, 32002},

	{service.ErrShiftNotFound, http.StatusNotFound, 40001},
	{service.ErrShiftConflict, http.StatusConflict, 40002},
	{service.ErrShiftStale, http.StatusConflict, 40003},
	{service.ErrNoShiftsInWindow, http.StatusNotFound, 40004},

	{service.ErrTimeOffNotFound, http.StatusNotFound, 41001},
	{service.ErrTimeOffDuplicate, http.StatusConflict, 41002},
	{service.ErrTimeOffNotPending, http.StatusConflict, 41003},

	{service.ErrEmergencyNotFound, http.StatusNotFound, 42001},
	{service.ErrEmergencyNotOpen, http.StatusConflict, 42002},
	{service.ErrVolunteerNotFound, http.StatusNotFound, 42003},
	{service.ErrVolunteerDuplicate, http.StatusConflict, 42004},

	{service.ErrMailNotDeliverable, http.StatusBadGateway, 60001},
	{service.ErrInvalidInput, http.StatusBadRequest, 10001},
}

// writeError maps a service error onto the HTTP response. Unknown errors
// become a 500 and are attached to the context for the request logger.
func writeError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		response.BadRequest(c, 10001, ve.Message)
		return
	}

	var ce *service.ConflictError
	if errors.As(err, &ce) {
		body := response.ConflictResponse{
			Error:        ce.Kind.Error(),
			Code:         codeFor(ce.Kind),
			ConflictType: ce.ConflictType,
			Fields:       ce.Fields,
		}
		if ce.StoreID != "" {
			body.ConflictingStore = &response.StoreRef{ID: ce.StoreID, Name: ce.StoreName}
		}
		response.Conflict(c, body)
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.status == http.StatusConflict {
			response.Conflict(c, response.ConflictResponse{Error: m.target.Error(), Code: m.code})
			return
		}
		response.Error(c, m.status, m.code, m.target.Error())
		return
	}

	_ = c.Error(err)
	response.InternalError(c)
}

func codeFor(kind error) int {
	for _, m := range errorMappings {
		if errors.Is(kind, m.target) {
			return m.code
		}
	}
	return http.StatusConflict * 100
}

// bindError answers a request whose body or query failed binding.
func bindError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
		return
	}
	response.BadRequest(c, 10001, "invalid parameters")
}
