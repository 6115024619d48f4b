package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
)

// UserProfile holds the cycle configuration used by prediction.
type UserProfile struct {
	ID              uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	CycleLength     int            `gorm:"not null;default:28" json:"cycle_length"`
	PeriodLength    int            `gorm:"not null;default:5" json:"period_length"`
	LastPeriodStart *time.Time     `gorm:"type:date" json:"last_period_start"`
	Timezone        string         `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Location resolves the profile timezone, falling back to UTC.
func (p *UserProfile) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
