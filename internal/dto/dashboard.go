package dto

// ── dashboard DTOs ──

// DashboardRequest GET /dashboard. Date defaults to today.
type DashboardRequest struct {
	StoreID string `form:"store_id" binding:"required,uuid"`
	Date    string `form:"date"     binding:"omitempty,ymd"`
}

// SlotStaffing headcount for one time slot.
type SlotStaffing struct {
	TimeSlotID string `json:"time_slot_id"`
	Name       string `json:"name"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Required   int    `json:"required"`
	Assigned   int    `json:"assigned"`
	Shortage   int    `json:"shortage"`
}

// DashboardResponse per-store daily overview.
type DashboardResponse struct {
	Date            string         `json:"date"`
	Store           StoreBrief     `json:"store"`
	ConfirmedShifts int            `json:"confirmed_shifts"`
	DraftShifts     int            `json:"draft_shifts"`
	PendingTimeOff  int            `json:"pending_time_off"`
	OpenEmergencies int            `json:"open_emergencies"`
	Slots           []SlotStaffing `json:"slots"`
}
