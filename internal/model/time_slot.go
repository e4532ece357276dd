package model

// TimeSlot coarse per-store period used for headcount planning — time_slots
type TimeSlot struct {
	ID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StoreID      string `gorm:"type:uuid;not null"                             json:"store_id"`
	Name         string `gorm:"type:varchar(50);not null"                      json:"name"`
	StartTime    string `gorm:"type:time;not null"                             json:"start_time"`
	EndTime      string `gorm:"type:time;not null"                             json:"end_time"`
	DisplayOrder int    `gorm:"not null;default:0"                             json:"display_order"`
	BaseModel

	Store *Store `gorm:"foreignKey:StoreID;references:ID" json:"store,omitempty"`
}

func (TimeSlot) TableName() string { return "time_slots" }
