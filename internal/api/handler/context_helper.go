package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/response"
)

// MustGetUserID extracts user_id set by the JWT middleware. On false a 401
// has already been written and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole extracts role set by the JWT middleware.
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// MustGetCaller builds the service caller from the JWT claims in context.
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Caller{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Caller{}, false
	}
	return service.Caller{
		UserID:  userID,
		Role:    role,
		LoginID: c.GetString("login_id"),
	}, true
}

// tokenIdentity returns the jti and expiry of the presented token, zero
// values when the middleware did not set them.
func tokenIdentity(c *gin.Context) (string, time.Time) {
	return c.GetString("token_jti"), c.GetTime("token_exp")
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	return s, true
}
