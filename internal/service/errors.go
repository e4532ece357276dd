package service

import (
	"errors"
	"fmt"
)

// ── not found ──

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrStoreNotFound     = errors.New("store not found")
	ErrPatternNotFound   = errors.New("shift pattern not found")
	ErrTimeSlotNotFound  = errors.New("time slot not found")
	ErrShiftNotFound     = errors.New("shift not found")
	ErrTimeOffNotFound   = errors.New("time-off request not found")
	ErrEmergencyNotFound = errors.New("emergency request not found")
	ErrVolunteerNotFound = errors.New("volunteer not found")
	ErrNoShiftsInWindow  = errors.New("no shifts found in the given week")
)

// ── conflicts (409) ──

var (
	ErrShiftConflict      = errors.New("shift conflicts with an existing shift")
	ErrShiftStale         = errors.New("shift was modified by someone else")
	ErrVolunteerDuplicate = errors.New("already volunteered for this request")
	ErrEmergencyNotOpen   = errors.New("emergency request is no longer open")
	ErrTimeOffDuplicate   = errors.New("a time-off request already exists for this date")
	ErrTimeOffNotPending  = errors.New("time-off request has already been answered")
	ErrTimeSlotOverlap    = errors.New("time slot overlaps an existing slot")
	ErrPatternInUse       = errors.New("shift pattern is referenced by shifts")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrStoreNameTaken     = errors.New("store name already exists")
)

// ── other ──

var (
	ErrInvalidCredentials = errors.New("invalid login id or password")
	ErrForbidden          = errors.New("operation not permitted")
	ErrInvalidInput       = errors.New("invalid input")
	ErrLoginIDExhausted   = errors.New("could not allocate a free login id")
	ErrMailNotDeliverable = errors.New("email could not be delivered")
)

// ConflictError is a 409 with discriminators. It unwraps to Kind so callers
// can use errors.Is on the sentinel and errors.As for the details.
type ConflictError struct {
	Kind         error
	ConflictType string
	StoreID      string
	StoreName    string
	Fields       []string
}

func (e *ConflictError) Error() string {
	if e.StoreName != "" {
		return fmt.Sprintf("%s (%s at %s)", e.Kind.Error(), e.ConflictType, e.StoreName)
	}
	return e.Kind.Error()
}

func (e *ConflictError) Unwrap() error { return e.Kind }

// ValidationError is a 400 with a client-facing message.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func invalidFields(msg string, fields ...string) error {
	return &ValidationError{Message: msg, Fields: fields}
}
