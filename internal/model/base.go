package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ── JSONB headcount map ──

// RequiredStaff maps weekday → time-slot name → headcount, stored as JSONB.
// e.g. {"monday": {"morning": 2, "evening": 3}}
type RequiredStaff map[string]map[string]int

// Scan implements sql.Scanner.
func (r *RequiredStaff) Scan(src interface{}) error {
	if src == nil {
		*r = RequiredStaff{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("RequiredStaff.Scan: unsupported type %T", src)
	}
	out := RequiredStaff{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("RequiredStaff.Scan: %w", err)
		}
	}
	*r = out
	return nil
}

// Value implements driver.Valuer.
func (r RequiredStaff) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// GormDataType keeps AutoMigrate (integration tests) on jsonb.
func (RequiredStaff) GormDataType() string { return "jsonb" }

// BaseModel audit timestamps embedded by every table.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
