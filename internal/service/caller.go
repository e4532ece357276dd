package service

import "github.com/ren-jimpo/shift-management-app-sub000/internal/model"

// Caller is the authenticated identity a request acts as.
type Caller struct {
	UserID  string
	Role    string
	LoginID string
}

// IsManager reports whether the caller holds the manager role.
func (c Caller) IsManager() bool { return c.Role == model.RoleManager }

// canActFor reports whether the caller may act on behalf of userID.
func (c Caller) canActFor(userID string) bool {
	return c.IsManager() || c.UserID == userID
}
