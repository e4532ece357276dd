package dto

// ── user DTOs ──

// UserStoreInput one store membership on create/update.
type UserStoreInput struct {
	StoreID    string `json:"store_id"    binding:"required,uuid"`
	IsFlexible bool   `json:"is_flexible"`
}

// CreateUserRequest POST /users
type CreateUserRequest struct {
	Name       string           `json:"name"        binding:"required,min=1,max=100"`
	Email      string           `json:"email"       binding:"required,email,max=255"`
	Phone      string           `json:"phone"       binding:"omitempty,max=30"`
	Role       string           `json:"role"        binding:"required,oneof=manager staff"`
	SkillLevel string           `json:"skill_level" binding:"omitempty,oneof=training regular veteran"`
	Password   *string          `json:"password"    binding:"omitempty,min=6,max=72"`
	Stores     []UserStoreInput `json:"stores"      binding:"omitempty,dive"`
}

// UpdateUserRequest PUT /users/:id. Stores, when present, replaces every
// membership of the user.
type UpdateUserRequest struct {
	Name       *string           `json:"name"        binding:"omitempty,min=1,max=100"`
	Email      *string           `json:"email"       binding:"omitempty,email,max=255"`
	Phone      *string           `json:"phone"       binding:"omitempty,max=30"`
	Role       *string           `json:"role"        binding:"omitempty,oneof=manager staff"`
	SkillLevel *string           `json:"skill_level" binding:"omitempty,oneof=training regular veteran"`
	Stores     *[]UserStoreInput `json:"stores"      binding:"omitempty,dive"`
}

// UserListRequest GET /users
type UserListRequest struct {
	StoreID string `form:"store_id" binding:"omitempty,uuid"`
	Role    string `form:"role"     binding:"omitempty,oneof=manager staff"`
	LoginID string `form:"login_id" binding:"omitempty,max=20"`
}

// UserStoreResponse membership as seen from the user.
type UserStoreResponse struct {
	StoreID    string `json:"store_id"`
	StoreName  string `json:"store_name,omitempty"`
	IsFlexible bool   `json:"is_flexible"`
}

// UserResponse user without credentials.
type UserResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Phone        string              `json:"phone"`
	Role         string              `json:"role"`
	SkillLevel   string              `json:"skill_level"`
	LoginID      string              `json:"login_id"`
	IsFirstLogin bool                `json:"is_first_login"`
	LastLoginAt  *string             `json:"last_login_at,omitempty"`
	Stores       []UserStoreResponse `json:"stores"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

// CreateUserResponse carries the generated temporary password exactly once.
type CreateUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password,omitempty"`
}

// SetFlexibleRequest PUT /user-stores/flexible
type SetFlexibleRequest struct {
	StoreID string   `json:"store_id" binding:"required,uuid"`
	UserIDs []string `json:"user_ids" binding:"omitempty,dive,uuid"`
}

// SetFlexibleResponse flexible members after the reset.
type SetFlexibleResponse struct {
	StoreID       string `json:"store_id"`
	FlexibleCount int64  `json:"flexible_count"`
}
