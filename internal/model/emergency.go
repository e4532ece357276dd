package model

import "time"

const (
	EmergencyOpen      = "open"
	EmergencyFilled    = "filled"
	EmergencyCancelled = "cancelled"
)

// EmergencyRequest call for a substitute on an existing shift — emergency_requests
type EmergencyRequest struct {
	ID             string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OriginalUserID string    `gorm:"type:uuid;not null"                             json:"original_user_id"`
	StoreID        string    `gorm:"type:uuid;not null"                             json:"store_id"`
	Date           time.Time `gorm:"type:date;not null"                             json:"date"`
	ShiftPatternID string    `gorm:"type:uuid;not null"                             json:"shift_pattern_id"`
	Reason         string    `gorm:"type:varchar(500);not null;default:''"          json:"reason"`
	Status         string    `gorm:"type:varchar(20);not null;default:'open'"       json:"status"`
	FilledBy       *string   `gorm:"type:uuid"                                      json:"filled_by,omitempty"`
	BaseModel

	OriginalUser *User                `gorm:"foreignKey:OriginalUserID;references:ID"     json:"original_user,omitempty"`
	Store        *Store               `gorm:"foreignKey:StoreID;references:ID"            json:"store,omitempty"`
	ShiftPattern *ShiftPattern        `gorm:"foreignKey:ShiftPatternID;references:ID"     json:"shift_pattern,omitempty"`
	Volunteers   []EmergencyVolunteer `gorm:"foreignKey:EmergencyRequestID;references:ID" json:"volunteers,omitempty"`
}

func (EmergencyRequest) TableName() string { return "emergency_requests" }

// EmergencyVolunteer a staff member's offer to cover a request — emergency_volunteers
type EmergencyVolunteer struct {
	ID                 string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmergencyRequestID string    `gorm:"type:uuid;not null"                             json:"emergency_request_id"`
	UserID             string    `gorm:"type:uuid;not null"                             json:"user_id"`
	RespondedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"responded_at"`

	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (EmergencyVolunteer) TableName() string { return "emergency_volunteers" }
