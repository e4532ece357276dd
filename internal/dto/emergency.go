package dto

// ── emergency request / volunteer DTOs ──

// CreateEmergencyRequest POST /emergency-requests
type CreateEmergencyRequest struct {
	OriginalUserID string `json:"original_user_id" binding:"required,uuid"`
	StoreID        string `json:"store_id"         binding:"required,uuid"`
	Date           string `json:"date"             binding:"required,ymd"`
	ShiftPatternID string `json:"shift_pattern_id" binding:"required,uuid"`
	Reason         string `json:"reason"           binding:"omitempty,max=500"`
}

// UpdateEmergencyRequest PUT /emergency-requests/:id. Status "filled"
// requires VolunteerID.
type UpdateEmergencyRequest struct {
	Reason      *string `json:"reason"       binding:"omitempty,max=500"`
	Status      *string `json:"status"       binding:"omitempty,oneof=filled cancelled"`
	VolunteerID *string `json:"volunteer_id" binding:"omitempty,uuid"`
}

// EmergencyListRequest GET /emergency-requests
type EmergencyListRequest struct {
	StoreID  string `form:"store_id"  binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=open filled cancelled"`
	DateFrom string `form:"date_from" binding:"omitempty,ymd"`
}

// EmergencyResponse emergency request with its volunteers.
type EmergencyResponse struct {
	ID             string              `json:"id"`
	OriginalUserID string              `json:"original_user_id"`
	OriginalUser   *UserBrief          `json:"original_user,omitempty"`
	StoreID        string              `json:"store_id"`
	Store          *StoreBrief         `json:"store,omitempty"`
	Date           string              `json:"date"`
	ShiftPatternID string              `json:"shift_pattern_id"`
	ShiftPattern   *PatternBrief       `json:"shift_pattern,omitempty"`
	Reason         string              `json:"reason"`
	Status         string              `json:"status"`
	FilledBy       *string             `json:"filled_by,omitempty"`
	Volunteers     []VolunteerResponse `json:"volunteers"`
	CreatedAt      string              `json:"created_at"`
}

// CreateVolunteerRequest POST /emergency-volunteers. UserID defaults to
// the caller; only managers may volunteer someone else.
type CreateVolunteerRequest struct {
	EmergencyRequestID string `json:"emergency_request_id" binding:"required,uuid"`
	UserID             string `json:"user_id"              binding:"omitempty,uuid"`
}

// VolunteerListRequest GET /emergency-volunteers
type VolunteerListRequest struct {
	EmergencyRequestID string `form:"emergency_request_id" binding:"omitempty,uuid"`
	UserID             string `form:"user_id"              binding:"omitempty,uuid"`
}

// VolunteerResponse volunteer detail.
type VolunteerResponse struct {
	ID                 string     `json:"id"`
	EmergencyRequestID string     `json:"emergency_request_id"`
	UserID             string     `json:"user_id"`
	User               *UserBrief `json:"user,omitempty"`
	RespondedAt        string     `json:"responded_at"`
}
