package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyLog is one row per (user, date). The date key is immutable once created.
type DailyLog struct {
	ID              uuid.UUID         `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID          uuid.UUID         `gorm:"type:varchar(36);not null;uniqueIndex:uidx_log_user_date" json:"user_id"`
	Date            time.Time         `gorm:"type:date;not null;uniqueIndex:uidx_log_user_date" json:"date"`
	Mood            string            `gorm:"size:32" json:"mood"`
	PainLevel       *int              `gorm:"check:pain_level >= 0 AND pain_level <= 10" json:"pain_level"`
	EnergyLevel     *int              `gorm:"check:energy_level >= 0 AND energy_level <= 10" json:"energy_level"`
	WaterIntake     *int              `json:"water_intake"`
	SleepHours      *float64          `json:"sleep_hours"`
	ExerciseMinutes *int              `json:"exercise_minutes"`
	Weight          *float64          `json:"weight"`
	IsOnPeriod      bool              `gorm:"not null;default:false" json:"is_on_period"`
	Notes           string            `gorm:"type:text" json:"notes"`
	Symptoms        []DailyLogSymptom `gorm:"foreignKey:DailyLogID" json:"symptoms,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (l *DailyLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Symptom is a catalog row (seeded).
type Symptom struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name      string    `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Category  string    `gorm:"size:32" json:"category"` // physical, emotional
	Icon      string    `gorm:"size:64" json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Symptom) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DailyLogSymptom joins a log to a catalog symptom with a severity.
type DailyLogSymptom struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	DailyLogID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:uidx_log_symptom" json:"daily_log_id"`
	SymptomID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:uidx_log_symptom" json:"symptom_id"`
	Symptom    *Symptom  `gorm:"foreignKey:SymptomID" json:"symptom,omitempty"`
	Severity   int       `gorm:"not null;default:1;check:severity >= 1 AND severity <= 5" json:"severity"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *DailyLogSymptom) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
