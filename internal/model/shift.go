package model

import "time"

const (
	ShiftStatusDraft     = "draft"
	ShiftStatusConfirmed = "confirmed"
	ShiftStatusCompleted = "completed"
)

// Shift one user's assignment to one store on one date — shifts
type Shift struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"type:uuid;not null"                             json:"user_id"`
	StoreID   string    `gorm:"type:uuid;not null"                             json:"store_id"`
	Date      time.Time `gorm:"type:date;not null"                             json:"date"`
	PatternID string    `gorm:"type:uuid;not null"                             json:"pattern_id"`
	Status    string    `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	Notes     string    `gorm:"type:text;not null;default:''"                  json:"notes"`
	Version   int       `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	User    *User         `gorm:"foreignKey:UserID;references:ID"    json:"user,omitempty"`
	Store   *Store        `gorm:"foreignKey:StoreID;references:ID"   json:"store,omitempty"`
	Pattern *ShiftPattern `gorm:"foreignKey:PatternID;references:ID" json:"pattern,omitempty"`
}

func (Shift) TableName() string { return "shifts" }
