package model

import "time"

const (
	RoleManager = "manager"
	RoleStaff   = "staff"
)

const (
	SkillTraining = "training"
	SkillRegular  = "regular"
	SkillVeteran  = "veteran"
)

// User staff member or manager — users
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Phone        string     `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	Role         string     `gorm:"type:varchar(20);not null"                      json:"role"`
	SkillLevel   string     `gorm:"type:varchar(20);not null;default:'regular'"    json:"skill_level"`
	LoginID      string     `gorm:"type:varchar(20);not null;uniqueIndex"          json:"login_id"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	IsFirstLogin bool       `gorm:"not null;default:true"                          json:"is_first_login"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	BaseModel

	Stores []UserStore `gorm:"foreignKey:UserID;references:ID" json:"stores,omitempty"`
}

func (User) TableName() string { return "users" }

// UserStore user ↔ store membership — user_stores
type UserStore struct {
	UserID     string    `gorm:"type:uuid;primaryKey"                json:"user_id"`
	StoreID    string    `gorm:"type:uuid;primaryKey"                json:"store_id"`
	IsFlexible bool      `gorm:"not null;default:false"              json:"is_flexible"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"created_at"`

	Store *Store `gorm:"foreignKey:StoreID;references:ID" json:"store,omitempty"`
}

func (UserStore) TableName() string { return "user_stores" }

// LoginIDSequence per-scope counter backing login id generation — login_id_sequences
type LoginIDSequence struct {
	Scope     string `gorm:"type:varchar(20);primaryKey"`
	LastValue int    `gorm:"not null"`
}

func (LoginIDSequence) TableName() string { return "login_id_sequences" }
