package model

import "time"

const (
	TimeOffPending  = "pending"
	TimeOffApproved = "approved"
	TimeOffRejected = "rejected"
)

// TimeOffRequest a staff member's request not to work a date — time_off_requests
type TimeOffRequest struct {
	ID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Date        time.Time  `gorm:"type:date;not null"                             json:"date"`
	Reason      string     `gorm:"type:varchar(500);not null;default:''"          json:"reason"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	RespondedBy *string    `gorm:"type:uuid"                                      json:"responded_by,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (TimeOffRequest) TableName() string { return "time_off_requests" }
