package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope for every API reply: Data on success, Error
// (plus a numeric Code) on failure.
type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
	Code  int         `json:"code,omitempty"`
}

// ConflictResponse is the 409 body. ConflictType and ConflictingStore let
// the client render an actionable message.
type ConflictResponse struct {
	Error            string    `json:"error"`
	Code             int       `json:"code"`
	ConflictType     string    `json:"conflictType,omitempty"`
	ConflictingStore *StoreRef `json:"conflictingStore,omitempty"`
	Fields           []string  `json:"fields,omitempty"`
}

// StoreRef identifies the store a conflicting row belongs to.
type StoreRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ── success ──

// OK 200
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Data: data})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Data: data})
}

// ── errors ──

// Error writes a plain error body.
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{Error: message, Code: code})
}

// Conflict 409 with discriminators.
func Conflict(c *gin.Context, body ConflictResponse) {
	c.JSON(http.StatusConflict, body)
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// InternalError 500. The cause is only logged server-side.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "internal server error")
}
