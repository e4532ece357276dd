package dto

// ── store DTOs ──

// CreateStoreRequest POST /stores
type CreateStoreRequest struct {
	Name          string                    `json:"name"           binding:"required,min=1,max=100"`
	RequiredStaff map[string]map[string]int `json:"required_staff"`
}

// UpdateStoreRequest PUT /stores/:id
type UpdateStoreRequest struct {
	Name          *string                    `json:"name"           binding:"omitempty,min=1,max=100"`
	RequiredStaff *map[string]map[string]int `json:"required_staff"`
}

// StoreResponse store detail.
type StoreResponse struct {
	ID            string                    `json:"id"`
	Name          string                    `json:"name"`
	RequiredStaff map[string]map[string]int `json:"required_staff"`
	CreatedAt     string                    `json:"created_at"`
	UpdatedAt     string                    `json:"updated_at"`
}
