package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationReminder    = "reminder"
	NotificationInsight     = "insight"
	NotificationAchievement = "achievement"
	NotificationSystem      = "system"
)

// Reminder setting types.
const (
	ReminderPeriod     = "period"
	ReminderLog        = "log"
	ReminderWater      = "water"
	ReminderMedication = "medication"
)

type Notification struct {
	ID           uuid.UUID         `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       uuid.UUID         `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Type         string            `gorm:"size:32;not null" json:"type"`
	Title        string            `gorm:"size:255;not null" json:"title"`
	Message      string            `gorm:"type:text;not null" json:"message"`
	IsRead       bool              `gorm:"not null;default:false" json:"is_read"`
	ScheduledFor *time.Time        `json:"scheduled_for"`
	SentAt       *time.Time        `json:"sent_at"`
	Metadata     map[string]string `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// PushSubscription is a browser push endpoint plus its encryption keys.
type PushSubscription struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Endpoint  string    `gorm:"size:512;not null;uniqueIndex" json:"endpoint"`
	P256dh    string    `gorm:"size:255;not null" json:"-"`
	Auth      string    `gorm:"size:255;not null" json:"-"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *PushSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ReminderSetting is per-user per-type reminder configuration.
type ReminderSetting struct {
	ID            uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID        uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:uidx_reminder_user_type" json:"user_id"`
	Type          string    `gorm:"size:32;not null;uniqueIndex:uidx_reminder_user_type" json:"type"`
	Enabled       bool      `gorm:"not null;default:true" json:"enabled"`
	TimeOfDay     string    `gorm:"size:5;not null;default:'20:00'" json:"time_of_day"` // HH:MM
	Frequency     string    `gorm:"size:16;not null;default:'daily'" json:"frequency"`
	CustomMessage string    `gorm:"size:255" json:"custom_message"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *ReminderSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
