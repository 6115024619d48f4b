package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidCycleLen = errors.New("cycle length must be between 21 and 45 days")
	ErrInvalidPeriod   = errors.New("period length must be between 2 and 10 days")
)

// ProfileService handles cycle configuration.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile retrieves a user's profile, creating one with defaults when the
// user predates profile creation at signup.
func (s *ProfileService) GetProfile(userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{
			UserID:       userID,
			CycleLength:  models.DefaultCycleLength,
			PeriodLength: models.DefaultPeriodLength,
			Timezone:     "UTC",
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfileInput carries the mutable profile fields. Nil pointers leave
// the stored value untouched.
type UpdateProfileInput struct {
	CycleLength     *int
	PeriodLength    *int
	LastPeriodStart *time.Time
	Timezone        *string
}

// UpdateProfile applies the update inside a transaction so a concurrent
// first-fetch cannot interleave with the write.
func (s *ProfileService) UpdateProfile(userID uuid.UUID, in UpdateProfileInput) (*models.UserProfile, error) {
	if in.CycleLength != nil && (*in.CycleLength < 21 || *in.CycleLength > 45) {
		return nil, ErrInvalidCycleLen
	}
	if in.PeriodLength != nil && (*in.PeriodLength < 2 || *in.PeriodLength > 10) {
		return nil, ErrInvalidPeriod
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return nil, errors.New("invalid timezone")
		}
	}

	var profile models.UserProfile
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.UserProfile{
				UserID:       userID,
				CycleLength:  models.DefaultCycleLength,
				PeriodLength: models.DefaultPeriodLength,
				Timezone:     "UTC",
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if in.CycleLength != nil {
			profile.CycleLength = *in.CycleLength
		}
		if in.PeriodLength != nil {
			profile.PeriodLength = *in.PeriodLength
		}
		if in.LastPeriodStart != nil {
			d := in.LastPeriodStart.Truncate(24 * time.Hour)
			profile.LastPeriodStart = &d
		}
		if in.Timezone != nil {
			profile.Timezone = *in.Timezone
		}

		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
