package dto

// ── time slot DTOs ──

// CreateTimeSlotRequest POST /time-slots. Times are validated and
// normalized by the service so the 409/400 distinction stays there.
type CreateTimeSlotRequest struct {
	StoreID      string `json:"store_id"      binding:"required,uuid"`
	Name         string `json:"name"          binding:"required,min=1,max=50"`
	StartTime    string `json:"start_time"    binding:"required"` // "09:00"
	EndTime      string `json:"end_time"      binding:"required"` // "13:00"
	DisplayOrder int    `json:"display_order" binding:"min=0"`
}

// UpdateTimeSlotRequest PUT /time-slots/:id
type UpdateTimeSlotRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=1,max=50"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	DisplayOrder *int    `json:"display_order" binding:"omitempty,min=0"`
}

// TimeSlotListRequest GET /time-slots
type TimeSlotListRequest struct {
	StoreID string `form:"store_id" binding:"omitempty,uuid"`
}

// TimeSlotResponse time slot detail.
type TimeSlotResponse struct {
	ID           string `json:"id"`
	StoreID      string `json:"store_id"`
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	DisplayOrder int    `json:"display_order"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}
