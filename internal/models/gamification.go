package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Challenge types understood by the progress engine.
const (
	ChallengeDailyLogging     = "daily_logging"
	ChallengePeriodTracking   = "period_tracking"
	ChallengeSymptomAwareness = "symptom_awareness"
	ChallengeMoodTracking     = "mood_tracking"
	ChallengeConsistency      = "consistency"
)

type Badge struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string    `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:64" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type UserBadge struct {
	ID       uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:uidx_user_badge" json:"user_id"`
	BadgeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:uidx_user_badge" json:"badge_id"`
	Badge    *Badge    `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}

func (b *UserBadge) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Challenge carries an explicit badge FK so completion awards a real
// catalog badge rather than reusing the challenge id.
type Challenge struct {
	ID          uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string     `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Type        string     `gorm:"size:32;not null" json:"type"`
	Target      int        `gorm:"not null" json:"target"`
	BadgeID     *uuid.UUID `gorm:"type:varchar(36)" json:"badge_id"`
	Badge       *Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type UserChallenge struct {
	ID              uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:uidx_user_challenge" json:"user_id"`
	ChallengeID     uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:uidx_user_challenge" json:"challenge_id"`
	Challenge       *Challenge `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
	CurrentProgress int        `gorm:"not null;default:0" json:"current_progress"`
	IsCompleted     bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (c *UserChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
