package model

// Store physical location — stores
type Store struct {
	ID            string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string        `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	RequiredStaff RequiredStaff `gorm:"type:jsonb;not null;default:'{}'"               json:"required_staff"`
	BaseModel
}

func (Store) TableName() string { return "stores" }
