package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/models"
	"github.com/lunara-app/backend/internal/service"
)

const (
	lockKey = "scheduler:run_lock"
	lockTTL = 10 * time.Minute
)

// Service runs the periodic notification passes. It is driven both by the
// in-process cron and by the external cron HTTP trigger; a redis lease keeps
// overlapping invocations from double-sending.
type Service struct {
	db            *gorm.DB
	notifications *service.NotificationService
	calendar      *service.CalendarService
	challenges    *service.ChallengeService
	redis         *redis.Client
	logger        *zap.Logger
}

func New(db *gorm.DB, notifications *service.NotificationService, calendar *service.CalendarService, challenges *service.ChallengeService, redisClient *redis.Client, logger *zap.Logger) *Service {
	return &Service{
		db:            db,
		notifications: notifications,
		calendar:      calendar,
		challenges:    challenges,
		redis:         redisClient,
		logger:        logger,
	}
}

// Start schedules the periodic run and returns the cron for shutdown.
func (s *Service) Start() *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("*/15 * * * *", func() {
		if err := s.RunScheduledTasks(context.Background(), time.Now()); err != nil {
			s.logger.Error("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		s.logger.Error("failed to register cron entry", zap.Error(err))
	}
	c.Start()
	return c
}

// RunScheduledTasks executes the three notification passes under the run
// lock. A run that cannot take the lock is a no-op, not an error.
func (s *Service) RunScheduledTasks(ctx context.Context, now time.Time) error {
	release, acquired, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("scheduler lock: %w", err)
	}
	if !acquired {
		s.logger.Info("scheduler run already in progress, skipping")
		return nil
	}
	defer release()

	if err := s.runPeriodReminders(now); err != nil {
		s.logger.Error("period reminder pass failed", zap.Error(err))
	}
	if err := s.runLogReminders(now); err != nil {
		s.logger.Error("log reminder pass failed", zap.Error(err))
	}
	if err := s.runInsights(now); err != nil {
		s.logger.Error("insight pass failed", zap.Error(err))
	}
	return nil
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.redis == nil {
		return func() {}, true, nil
	}
	token := uuid.NewString()
	ok, err := s.redis.SetNX(ctx, lockKey, token, lockTTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// only release a lease this run still owns
		val, err := s.redis.Get(context.Background(), lockKey).Result()
		if err == nil && val == token {
			s.redis.Del(context.Background(), lockKey)
		}
	}
	return release, true, nil
}

// runPeriodReminders sends a reminder when the predicted next period is
// exactly 3 or exactly 1 days away.
func (s *Service) runPeriodReminders(now time.Time) error {
	var settings []models.ReminderSetting
	if err := s.db.Where("type = ? AND enabled = ?", models.ReminderPeriod, true).
		Find(&settings).Error; err != nil {
		return err
	}

	for _, setting := range settings {
		prediction, err := s.calendar.PredictForUser(setting.UserID, now)
		if err != nil {
			s.logger.Warn("prediction failed",
				zap.String("user_id", setting.UserID.String()),
				zap.Error(err))
			continue
		}
		if prediction == nil {
			continue
		}

		days := prediction.DaysUntilPeriod
		if days != 3 && days != 1 {
			continue
		}

		sent, err := s.notifications.ExistsToday(setting.UserID, models.NotificationReminder, "kind", "period", now)
		if err != nil {
			return err
		}
		if sent {
			continue
		}

		message := setting.CustomMessage
		if message == "" {
			if days == 1 {
				message = "Your period is expected tomorrow. Time to get prepared!"
			} else {
				message = fmt.Sprintf("Your period is expected in %d days.", days)
			}
		}
		if _, err := s.notifications.Create(setting.UserID, models.NotificationReminder,
			"Period reminder", message,
			map[string]string{"kind": "period", "days_until": fmt.Sprintf("%d", days)}); err != nil {
			s.logger.Warn("period reminder failed", zap.Error(err))
		}
	}
	return nil
}

// runLogReminders nudges users whose reminder time has passed and who have
// not logged today, at most once per day.
func (s *Service) runLogReminders(now time.Time) error {
	var settings []models.ReminderSetting
	if err := s.db.Where("type = ? AND enabled = ?", models.ReminderLog, true).
		Find(&settings).Error; err != nil {
		return err
	}

	for _, setting := range settings {
		var profile models.UserProfile
		if err := s.db.Where("user_id = ?", setting.UserID).First(&profile).Error; err != nil {
			continue
		}

		local := now.In(profile.Location())
		if local.Format("15:04") < setting.TimeOfDay {
			continue
		}

		today := service.Day(local)
		var logCount int64
		if err := s.db.Model(&models.DailyLog{}).
			Where("user_id = ? AND date = ?", setting.UserID, today).
			Count(&logCount).Error; err != nil {
			return err
		}
		if logCount > 0 {
			continue
		}

		sent, err := s.notifications.ExistsToday(setting.UserID, models.NotificationReminder, "kind", "log", local)
		if err != nil {
			return err
		}
		if sent {
			continue
		}

		message := setting.CustomMessage
		if message == "" {
			message = "Don't forget to log how you're feeling today."
		}
		if _, err := s.notifications.Create(setting.UserID, models.NotificationReminder,
			"Daily log reminder", message,
			map[string]string{"kind": "log"}); err != nil {
			s.logger.Warn("log reminder failed", zap.Error(err))
		}
	}
	return nil
}

// runInsights scans the last 30 days of logs per user and emits pattern
// insights and streak achievements at fixed thresholds.
func (s *Service) runInsights(now time.Time) error {
	since := service.Day(now).AddDate(0, 0, -30)

	var userIDs []uuid.UUID
	if err := s.db.Model(&models.DailyLog{}).
		Where("date > ?", since).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return err
	}

	for _, userID := range userIDs {
		var logs []models.DailyLog
		if err := s.db.Where("user_id = ? AND date > ?", userID, since).
			Find(&logs).Error; err != nil {
			return err
		}

		s.emitPainInsight(userID, logs, now)
		s.emitEnergyInsight(userID, logs, now)
		s.emitStreakAchievement(userID, now)
	}
	return nil
}

func (s *Service) emitPainInsight(userID uuid.UUID, logs []models.DailyLog, now time.Time) {
	sum, n := 0, 0
	for _, l := range logs {
		if l.PainLevel != nil {
			sum += *l.PainLevel
			n++
		}
	}
	if n < 3 || float64(sum)/float64(n) < 7 {
		return
	}
	s.emitInsightOnce(userID, "pain",
		"Pain pattern noticed",
		"Your pain levels have been high lately. Consider discussing this with a healthcare provider.",
		now)
}

func (s *Service) emitEnergyInsight(userID uuid.UUID, logs []models.DailyLog, now time.Time) {
	sum, n := 0, 0
	for _, l := range logs {
		if l.EnergyLevel != nil {
			sum += *l.EnergyLevel
			n++
		}
	}
	if n < 3 || float64(sum)/float64(n) > 3 {
		return
	}
	s.emitInsightOnce(userID, "energy",
		"Energy pattern noticed",
		"Your energy has been low recently. Rest, hydration and light exercise can help.",
		now)
}

func (s *Service) emitInsightOnce(userID uuid.UUID, kind, title, message string, now time.Time) {
	sent, err := s.notifications.ExistsToday(userID, models.NotificationInsight, "kind", kind, now)
	if err != nil || sent {
		return
	}
	if _, err := s.notifications.Create(userID, models.NotificationInsight, title, message,
		map[string]string{"kind": kind}); err != nil {
		s.logger.Warn("insight notification failed", zap.Error(err))
	}
}

var streakMilestones = []int{7, 14, 30}

func (s *Service) emitStreakAchievement(userID uuid.UUID, now time.Time) {
	streak, err := service.CurrentStreak(s.db, userID, now)
	if err != nil {
		s.logger.Warn("streak computation failed", zap.Error(err))
		return
	}

	milestone := 0
	for _, m := range streakMilestones {
		if streak == m {
			milestone = m
			break
		}
	}
	if milestone == 0 {
		return
	}

	kind := fmt.Sprintf("streak_%d", milestone)
	sent, err := s.notifications.ExistsToday(userID, models.NotificationAchievement, "kind", kind, now)
	if err != nil || sent {
		return
	}

	if _, err := s.notifications.Create(userID, models.NotificationAchievement,
		fmt.Sprintf("%d-day streak!", milestone),
		fmt.Sprintf("You've logged %d days in a row. Keep it up!", milestone),
		map[string]string{"kind": kind}); err != nil {
		s.logger.Warn("streak achievement failed", zap.Error(err))
		return
	}

	if err := s.challenges.Recompute(userID, now); err != nil {
		s.logger.Warn("challenge recompute failed", zap.Error(err))
	}
}
