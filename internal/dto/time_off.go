package dto

// ── time-off DTOs ──

// MaxBulkTimeOff caps PATCH /time-off-requests.
const MaxBulkTimeOff = 100

// CreateTimeOffRequest POST /time-off-requests. UserID defaults to the caller.
type CreateTimeOffRequest struct {
	UserID string `json:"user_id" binding:"omitempty,uuid"`
	Date   string `json:"date"    binding:"required,ymd"`
	Reason string `json:"reason"  binding:"omitempty,max=500"`
}

// RespondTimeOffRequest PUT /time-off-requests/:id
type RespondTimeOffRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// BulkRespondTimeOffRequest PATCH /time-off-requests. The id cap is
// enforced by the service so it reports a descriptive error.
type BulkRespondTimeOffRequest struct {
	IDs    []string `json:"ids"    binding:"required,min=1,dive,uuid"`
	Status string   `json:"status" binding:"required,oneof=approved rejected"`
}

// TimeOffListRequest GET /time-off-requests
type TimeOffListRequest struct {
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=pending approved rejected"`
	DateFrom string `form:"date_from" binding:"omitempty,ymd"`
	DateTo   string `form:"date_to"   binding:"omitempty,ymd"`
}

// TimeOffResponse time-off detail.
type TimeOffResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	User        *UserBrief `json:"user,omitempty"`
	Date        string     `json:"date"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	RespondedBy *string    `json:"responded_by,omitempty"`
	RespondedAt *string    `json:"responded_at,omitempty"`
	CreatedAt   string     `json:"created_at"`
}
