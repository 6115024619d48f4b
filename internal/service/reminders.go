package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/config"
	"github.com/lunara-app/backend/internal/models"
)

var ErrInvalidReminder = errors.New("invalid reminder setting")

var reminderTypes = map[string]bool{
	models.ReminderPeriod:     true,
	models.ReminderLog:        true,
	models.ReminderWater:      true,
	models.ReminderMedication: true,
}

// ReminderService manages per-user reminder settings.
type ReminderService struct {
	db *gorm.DB
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{db: db}
}

func (s *ReminderService) List(userID uuid.UUID) ([]models.ReminderSetting, error) {
	var settings []models.ReminderSetting
	err := s.db.Where("user_id = ?", userID).Order("type").Find(&settings).Error
	return settings, err
}

// ReminderInput carries one setting update.
type ReminderInput struct {
	Type          string
	Enabled       bool
	TimeOfDay     string
	Frequency     string
	CustomMessage string
}

// Upsert creates or updates the setting for (user, type) inside a
// transaction, closing the check-then-insert window.
func (s *ReminderService) Upsert(userID uuid.UUID, in ReminderInput) (*models.ReminderSetting, error) {
	if !reminderTypes[in.Type] {
		return nil, ErrInvalidReminder
	}
	if in.TimeOfDay != "" && !config.ValidTimeOfDay(in.TimeOfDay) {
		return nil, ErrInvalidReminder
	}
	if in.Frequency == "" {
		in.Frequency = "daily"
	}

	var setting models.ReminderSetting
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND type = ?", userID, in.Type).First(&setting).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setting = models.ReminderSetting{
				UserID:    userID,
				Type:      in.Type,
				TimeOfDay: "20:00",
			}
		} else if err != nil {
			return err
		}

		setting.Enabled = in.Enabled
		if in.TimeOfDay != "" {
			setting.TimeOfDay = in.TimeOfDay
		}
		setting.Frequency = in.Frequency
		setting.CustomMessage = in.CustomMessage

		if setting.ID == uuid.Nil {
			return tx.Create(&setting).Error
		}
		return tx.Save(&setting).Error
	})
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
