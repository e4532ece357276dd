package model

// ShiftPattern named work-time template — shift_patterns
type ShiftPattern struct {
	ID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string `gorm:"type:varchar(50);not null"                      json:"name"`
	StartTime string `gorm:"type:time;not null"                             json:"start_time"`
	EndTime   string `gorm:"type:time;not null"                             json:"end_time"`
	Color     string `gorm:"type:varchar(7);not null;default:'#3B82F6'"     json:"color"`
	BreakTime int    `gorm:"not null;default:0"                             json:"break_time"` // minutes
	BaseModel
}

func (ShiftPattern) TableName() string { return "shift_patterns" }
