package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/models"
)

var ErrDuplicateLog = errors.New("a log already exists for this date")

// isUniqueViolation matches a unique-constraint failure from postgres
// (error code 23505) or from the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// LogService handles daily logs and the period/cycle bookkeeping they imply.
type LogService struct {
	db *gorm.DB
}

func NewLogService(db *gorm.DB) *LogService {
	return &LogService{db: db}
}

// LogSymptomInput pairs a catalog symptom with a severity.
type LogSymptomInput struct {
	SymptomID uuid.UUID
	Severity  int
}

// LogInput carries the mutable daily log fields.
type LogInput struct {
	Mood            string
	PainLevel       *int
	EnergyLevel     *int
	WaterIntake     *int
	SleepHours      *float64
	ExerciseMinutes *int
	Weight          *float64
	IsOnPeriod      bool
	Notes           string
	Symptoms        []LogSymptomInput
}

// Day normalizes a timestamp to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateLog creates the log row for (user, date). A second log for the same
// date is rejected with ErrDuplicateLog.
func (s *LogService) CreateLog(userID uuid.UUID, date time.Time, in LogInput) (*models.DailyLog, error) {
	date = Day(date)

	log := models.DailyLog{
		UserID:          userID,
		Date:            date,
		Mood:            in.Mood,
		PainLevel:       in.PainLevel,
		EnergyLevel:     in.EnergyLevel,
		WaterIntake:     in.WaterIntake,
		SleepHours:      in.SleepHours,
		ExerciseMinutes: in.ExerciseMinutes,
		Weight:          in.Weight,
		IsOnPeriod:      in.IsOnPeriod,
		Notes:           in.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.DailyLog{}).
			Where("user_id = ? AND date = ?", userID, date).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateLog
		}

		if err := tx.Create(&log).Error; err != nil {
			// a concurrent insert can slip past the count check and hit
			// uidx_log_user_date instead
			if isUniqueViolation(err) {
				return ErrDuplicateLog
			}
			return err
		}

		if err := s.replaceSymptoms(tx, &log, in.Symptoms); err != nil {
			return err
		}

		if in.IsOnPeriod {
			return s.recordPeriodDay(tx, userID, date)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetLog(userID, date)
}

// UpdateLog updates the mutable fields of an existing log. The date key
// itself cannot change.
func (s *LogService) UpdateLog(userID uuid.UUID, date time.Time, in LogInput) (*models.DailyLog, error) {
	date = Day(date)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var log models.DailyLog
		if err := tx.Where("user_id = ? AND date = ?", userID, date).First(&log).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		wasOnPeriod := log.IsOnPeriod
		log.Mood = in.Mood
		log.PainLevel = in.PainLevel
		log.EnergyLevel = in.EnergyLevel
		log.WaterIntake = in.WaterIntake
		log.SleepHours = in.SleepHours
		log.ExerciseMinutes = in.ExerciseMinutes
		log.Weight = in.Weight
		log.IsOnPeriod = in.IsOnPeriod
		log.Notes = in.Notes

		if err := tx.Save(&log).Error; err != nil {
			return err
		}

		if err := s.replaceSymptoms(tx, &log, in.Symptoms); err != nil {
			return err
		}

		if in.IsOnPeriod && !wasOnPeriod {
			return s.recordPeriodDay(tx, userID, date)
		}
		if !in.IsOnPeriod && wasOnPeriod {
			return tx.Where("user_id = ? AND date = ?", userID, date).
				Delete(&models.PeriodDay{}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetLog(userID, date)
}

func (s *LogService) GetLog(userID uuid.UUID, date time.Time) (*models.DailyLog, error) {
	var log models.DailyLog
	err := s.db.Preload("Symptoms.Symptom").
		Where("user_id = ? AND date = ?", userID, Day(date)).
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListLogs returns logs in [from, to], newest first.
func (s *LogService) ListLogs(userID uuid.UUID, from, to time.Time) ([]models.DailyLog, error) {
	var logs []models.DailyLog
	err := s.db.Preload("Symptoms.Symptom").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, Day(from), Day(to)).
		Order("date DESC").
		Find(&logs).Error
	return logs, err
}

// ListSymptoms returns the symptom catalog.
func (s *LogService) ListSymptoms() ([]models.Symptom, error) {
	var symptoms []models.Symptom
	err := s.db.Order("category, name").Find(&symptoms).Error
	return symptoms, err
}

func (s *LogService) replaceSymptoms(tx *gorm.DB, log *models.DailyLog, symptoms []LogSymptomInput) error {
	if err := tx.Where("daily_log_id = ?", log.ID).Delete(&models.DailyLogSymptom{}).Error; err != nil {
		return err
	}
	for _, sym := range symptoms {
		severity := sym.Severity
		if severity < 1 {
			severity = 1
		}
		if severity > 5 {
			severity = 5
		}
		row := models.DailyLogSymptom{
			DailyLogID: log.ID,
			SymptomID:  sym.SymptomID,
			Severity:   severity,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// recordPeriodDay stores the period-flagged date and maintains cycles: a
// period day with no period day on the previous date starts a new cycle,
// which closes the currently active one.
func (s *LogService) recordPeriodDay(tx *gorm.DB, userID uuid.UUID, date time.Time) error {
	var existing models.PeriodDay
	err := tx.Where("user_id = ? AND date = ?", userID, date).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	day := models.PeriodDay{UserID: userID, Date: date}
	if err := tx.Create(&day).Error; err != nil {
		return err
	}

	prev := date.AddDate(0, 0, -1)
	var prevCount int64
	if err := tx.Model(&models.PeriodDay{}).
		Where("user_id = ? AND date = ?", userID, prev).
		Count(&prevCount).Error; err != nil {
		return err
	}
	if prevCount > 0 {
		// continuation of a period already in progress
		return nil
	}

	var active models.Cycle
	err = tx.Where("user_id = ? AND is_active = ?", userID, true).First(&active).Error
	if err == nil {
		end := date.AddDate(0, 0, -1)
		length := int(date.Sub(active.StartDate).Hours() / 24)
		active.EndDate = &end
		active.Length = &length
		active.IsActive = false
		if err := tx.Save(&active).Error; err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	cycle := models.Cycle{UserID: userID, StartDate: date, IsActive: true}
	if err := tx.Create(&cycle).Error; err != nil {
		return err
	}

	return tx.Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("last_period_start", date).Error
}
