package dto

// ── shared response fragments ──

// StoreBrief store reference embedded in other responses.
type StoreBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserBrief user reference embedded in other responses.
type UserBrief struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LoginID string `json:"login_id"`
}

// PatternBrief pattern reference embedded in shift responses.
type PatternBrief struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color"`
}

// BulkUpdateResponse result of PATCH bulk operations.
type BulkUpdateResponse struct {
	UpdatedCount int64 `json:"updated_count"`
}

// DeleteResponse acknowledgement of a delete.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
