package dto

// ── shift DTOs ──

// CreateShiftRequest POST /shifts
type CreateShiftRequest struct {
	UserID    string `json:"user_id"    binding:"required,uuid"`
	StoreID   string `json:"store_id"   binding:"required,uuid"`
	Date      string `json:"date"       binding:"required,ymd"`
	PatternID string `json:"pattern_id" binding:"required,uuid"`
	Status    string `json:"status"     binding:"omitempty,oneof=draft confirmed completed"`
	Notes     string `json:"notes"      binding:"omitempty,max=1000"`
}

// UpdateShiftRequest PUT /shifts/:id. Version, when sent, must match the
// stored row.
type UpdateShiftRequest struct {
	StoreID   *string `json:"store_id"   binding:"omitempty,uuid"`
	Date      *string `json:"date"       binding:"omitempty,ymd"`
	PatternID *string `json:"pattern_id" binding:"omitempty,uuid"`
	Status    *string `json:"status"     binding:"omitempty,oneof=draft confirmed completed"`
	Notes     *string `json:"notes"      binding:"omitempty,max=1000"`
	Version   *int    `json:"version"    binding:"omitempty,min=1"`
}

// ShiftListRequest GET /shifts
type ShiftListRequest struct {
	StoreID  string `form:"store_id"  binding:"omitempty,uuid"`
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=draft confirmed completed"`
	DateFrom string `form:"date_from" binding:"omitempty,ymd"`
	DateTo   string `form:"date_to"   binding:"omitempty,ymd"`
}

// BulkUpdateWeekRequest PATCH /shifts
type BulkUpdateWeekRequest struct {
	StoreID   string `json:"store_id"   binding:"required,uuid"`
	WeekStart string `json:"week_start" binding:"required,ymd"`
	WeekEnd   string `json:"week_end"   binding:"omitempty,ymd"`
	Status    string `json:"status"     binding:"required,oneof=draft confirmed completed"`
}

// RecurringShiftRequest POST /shifts/recurring. RRule is an RFC 5545
// recurrence rule such as "FREQ=WEEKLY;BYDAY=MO,WE".
type RecurringShiftRequest struct {
	UserID    string `json:"user_id"    binding:"required,uuid"`
	StoreID   string `json:"store_id"   binding:"required,uuid"`
	PatternID string `json:"pattern_id" binding:"required,uuid"`
	RRule     string `json:"rrule"      binding:"required,max=200"`
	From      string `json:"from"       binding:"required,ymd"`
	Until     string `json:"until"      binding:"required,ymd"`
	Notes     string `json:"notes"      binding:"omitempty,max=1000"`
}

// SkippedDate a recurring occurrence not created because of a conflict.
type SkippedDate struct {
	Date         string      `json:"date"`
	ConflictType string      `json:"conflictType"`
	Store        *StoreBrief `json:"conflictingStore,omitempty"`
}

// RecurringShiftResponse outcome of a recurring create.
type RecurringShiftResponse struct {
	Created []ShiftResponse `json:"created"`
	Skipped []SkippedDate   `json:"skipped"`
}

// ShiftExportRequest GET /shifts/export
type ShiftExportRequest struct {
	StoreID   string `form:"store_id"   binding:"required,uuid"`
	WeekStart string `form:"week_start" binding:"required,ymd"`
}

// ShiftCalendarRequest GET /shifts/calendar.ics
type ShiftCalendarRequest struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// ShiftResponse shift detail.
type ShiftResponse struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	User      *UserBrief    `json:"user,omitempty"`
	StoreID   string        `json:"store_id"`
	Store     *StoreBrief   `json:"store,omitempty"`
	Date      string        `json:"date"`
	PatternID string        `json:"pattern_id"`
	Pattern   *PatternBrief `json:"pattern,omitempty"`
	Status    string        `json:"status"`
	Notes     string        `json:"notes"`
	Version   int           `json:"version"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}
