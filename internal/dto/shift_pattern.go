package dto

// ── shift pattern DTOs ──

// CreateShiftPatternRequest POST /shift-patterns
type CreateShiftPatternRequest struct {
	Name      string `json:"name"       binding:"required,min=1,max=50"`
	StartTime string `json:"start_time" binding:"required,hhmm"`
	EndTime   string `json:"end_time"   binding:"required,hhmm"`
	Color     string `json:"color"      binding:"omitempty,hexcolor6"`
	BreakTime int    `json:"break_time" binding:"min=0,max=480"`
}

// UpdateShiftPatternRequest PUT /shift-patterns/:id
type UpdateShiftPatternRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=1,max=50"`
	StartTime *string `json:"start_time" binding:"omitempty,hhmm"`
	EndTime   *string `json:"end_time"   binding:"omitempty,hhmm"`
	Color     *string `json:"color"      binding:"omitempty,hexcolor6"`
	BreakTime *int    `json:"break_time" binding:"omitempty,min=0,max=480"`
}

// ShiftPatternResponse pattern detail.
type ShiftPatternResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color"`
	BreakTime int    `json:"break_time"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
