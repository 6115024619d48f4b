package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/models"
)

var ErrAlreadyJoined = errors.New("challenge already joined")

const progressWindowDays = 30

// Notifier is the slice of the notification service the engine needs.
type Notifier interface {
	Create(userID uuid.UUID, typ, title, message string, metadata map[string]string) (*models.Notification, error)
}

// ChallengeService recomputes challenge progress and awards badges.
type ChallengeService struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
}

func NewChallengeService(db *gorm.DB, notifier Notifier, logger *zap.Logger) *ChallengeService {
	return &ChallengeService{db: db, notifier: notifier, logger: logger}
}

// ListChallenges returns the catalog joined with the user's progress rows.
func (s *ChallengeService) ListChallenges(userID uuid.UUID) ([]models.Challenge, map[uuid.UUID]models.UserChallenge, error) {
	var challenges []models.Challenge
	if err := s.db.Preload("Badge").Order("name").Find(&challenges).Error; err != nil {
		return nil, nil, err
	}

	var progress []models.UserChallenge
	if err := s.db.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, nil, err
	}

	byChallenge := make(map[uuid.UUID]models.UserChallenge, len(progress))
	for _, p := range progress {
		byChallenge[p.ChallengeID] = p
	}
	return challenges, byChallenge, nil
}

// JoinChallenge enrolls the user. Joining twice is rejected.
func (s *ChallengeService) JoinChallenge(userID, challengeID uuid.UUID) (*models.UserChallenge, error) {
	var challenge models.Challenge
	if err := s.db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	uc := models.UserChallenge{UserID: userID, ChallengeID: challengeID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserChallenge{}).
			Where("user_id = ? AND challenge_id = ?", userID, challengeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyJoined
		}
		return tx.Create(&uc).Error
	})
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

// ListBadges returns the badges the user has earned.
func (s *ChallengeService) ListBadges(userID uuid.UUID) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := s.db.Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&badges).Error
	return badges, err
}

// Recompute re-evaluates every incomplete challenge the user has joined and
// persists the new progress. First completions award the challenge's badge
// and emit an achievement notification.
func (s *ChallengeService) Recompute(userID uuid.UUID, today time.Time) error {
	var joined []models.UserChallenge
	if err := s.db.Preload("Challenge").
		Where("user_id = ? AND is_completed = ?", userID, false).
		Find(&joined).Error; err != nil {
		return err
	}

	for i := range joined {
		uc := &joined[i]
		if uc.Challenge == nil {
			continue
		}

		progress, err := s.progressFor(userID, uc.Challenge.Type, today)
		if err != nil {
			s.logger.Warn("challenge progress computation failed",
				zap.String("challenge", uc.Challenge.Name),
				zap.Error(err))
			continue
		}

		uc.CurrentProgress = progress
		if progress >= uc.Challenge.Target {
			now := time.Now()
			uc.IsCompleted = true
			uc.CompletedAt = &now
		}
		if err := s.db.Save(uc).Error; err != nil {
			return err
		}

		if uc.IsCompleted {
			if err := s.award(userID, uc.Challenge); err != nil {
				return err
			}
		}
	}
	return nil
}

// progressFor computes the progress counter for one challenge type.
func (s *ChallengeService) progressFor(userID uuid.UUID, challengeType string, today time.Time) (int, error) {
	switch challengeType {
	case models.ChallengeDailyLogging:
		return CurrentStreak(s.db, userID, today)

	case models.ChallengePeriodTracking:
		var count int64
		err := s.db.Model(&models.Cycle{}).
			Where("user_id = ? AND is_active = ?", userID, false).
			Count(&count).Error
		return int(count), err

	case models.ChallengeSymptomAwareness:
		since := Day(today).AddDate(0, 0, -progressWindowDays)
		var count int64
		err := s.db.Model(&models.DailyLog{}).
			Joins("JOIN daily_log_symptoms ON daily_log_symptoms.daily_log_id = daily_logs.id").
			Where("daily_logs.user_id = ? AND daily_logs.date >= ?", userID, since).
			Distinct("daily_logs.id").
			Count(&count).Error
		return int(count), err

	case models.ChallengeMoodTracking:
		since := Day(today).AddDate(0, 0, -progressWindowDays)
		var count int64
		err := s.db.Model(&models.DailyLog{}).
			Where("user_id = ? AND date >= ? AND mood <> ''", userID, since).
			Count(&count).Error
		return int(count), err

	case models.ChallengeConsistency:
		since := Day(today).AddDate(0, 0, -progressWindowDays)
		var count int64
		err := s.db.Model(&models.DailyLog{}).
			Where("user_id = ? AND date > ?", userID, since).
			Count(&count).Error
		if err != nil {
			return 0, err
		}
		return int(count) * 100 / progressWindowDays, nil

	default:
		return 0, fmt.Errorf("unknown challenge type %q", challengeType)
	}
}

// award grants the challenge's badge once and notifies the user.
func (s *ChallengeService) award(userID uuid.UUID, challenge *models.Challenge) error {
	if challenge.BadgeID != nil {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.UserBadge{}).
				Where("user_id = ? AND badge_id = ?", userID, *challenge.BadgeID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return nil
			}
			return tx.Create(&models.UserBadge{
				UserID:   userID,
				BadgeID:  *challenge.BadgeID,
				EarnedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return err
		}
	}

	if s.notifier != nil {
		_, err := s.notifier.Create(userID, models.NotificationAchievement,
			"Challenge complete!",
			fmt.Sprintf("You finished the %q challenge.", challenge.Name),
			map[string]string{"challenge_id": challenge.ID.String()})
		if err != nil {
			s.logger.Warn("achievement notification failed", zap.Error(err))
		}
	}
	return nil
}

// CurrentStreak counts consecutive logged days scanning backward from today,
// capped at the progress window.
func CurrentStreak(db *gorm.DB, userID uuid.UUID, today time.Time) (int, error) {
	since := Day(today).AddDate(0, 0, -progressWindowDays)
	var logs []models.DailyLog
	if err := db.Select("date").
		Where("user_id = ? AND date > ?", userID, since).
		Order("date DESC").
		Find(&logs).Error; err != nil {
		return 0, err
	}

	logged := make(map[string]bool, len(logs))
	for _, l := range logs {
		logged[Day(l.Date).Format("2006-01-02")] = true
	}

	streak := 0
	day := Day(today)
	for logged[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}
