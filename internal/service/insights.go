package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/models"
)

// InsightsSummary aggregates the last 30 days of logging.
type InsightsSummary struct {
	WindowDays     int         `json:"window_days"`
	LogsCount      int         `json:"logs_count"`
	CurrentStreak  int         `json:"current_streak"`
	AvgPainLevel   *float64    `json:"avg_pain_level"`
	AvgEnergyLevel *float64    `json:"avg_energy_level"`
	AvgSleepHours  *float64    `json:"avg_sleep_hours"`
	AvgWaterIntake *float64    `json:"avg_water_intake"`
	PeriodDays     int         `json:"period_days"`
	CycleStats     *CycleStats `json:"cycle_stats"`
}

// CycleStats summarizes completed cycle lengths.
type CycleStats struct {
	Count         int `json:"count"`
	AverageLength int `json:"average_length"`
	MinLength     int `json:"min_length"`
	MaxLength     int `json:"max_length"`
}

// InsightsService computes aggregates for the insights view and data export.
type InsightsService struct {
	db *gorm.DB
}

func NewInsightsService(db *gorm.DB) *InsightsService {
	return &InsightsService{db: db}
}

// Summary computes the 30-day aggregates.
func (s *InsightsService) Summary(userID uuid.UUID, today time.Time) (*InsightsSummary, error) {
	since := Day(today).AddDate(0, 0, -progressWindowDays)

	var logs []models.DailyLog
	if err := s.db.Where("user_id = ? AND date > ?", userID, since).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	summary := &InsightsSummary{WindowDays: progressWindowDays, LogsCount: len(logs)}

	var painSum, energySum, sleepSum, waterSum float64
	var painN, energyN, sleepN, waterN int
	for _, l := range logs {
		if l.PainLevel != nil {
			painSum += float64(*l.PainLevel)
			painN++
		}
		if l.EnergyLevel != nil {
			energySum += float64(*l.EnergyLevel)
			energyN++
		}
		if l.SleepHours != nil {
			sleepSum += *l.SleepHours
			sleepN++
		}
		if l.WaterIntake != nil {
			waterSum += float64(*l.WaterIntake)
			waterN++
		}
		if l.IsOnPeriod {
			summary.PeriodDays++
		}
	}
	summary.AvgPainLevel = avg(painSum, painN)
	summary.AvgEnergyLevel = avg(energySum, energyN)
	summary.AvgSleepHours = avg(sleepSum, sleepN)
	summary.AvgWaterIntake = avg(waterSum, waterN)

	streak, err := CurrentStreak(s.db, userID, today)
	if err != nil {
		return nil, err
	}
	summary.CurrentStreak = streak

	stats, err := s.cycleStats(userID)
	if err != nil {
		return nil, err
	}
	summary.CycleStats = stats

	return summary, nil
}

func avg(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := sum / float64(n)
	return &v
}

func (s *InsightsService) cycleStats(userID uuid.UUID) (*CycleStats, error) {
	var cycles []models.Cycle
	if err := s.db.Where("user_id = ? AND length IS NOT NULL", userID).
		Find(&cycles).Error; err != nil {
		return nil, err
	}
	if len(cycles) == 0 {
		return nil, nil
	}

	stats := &CycleStats{Count: len(cycles)}
	sum := 0
	for i, c := range cycles {
		l := *c.Length
		sum += l
		if i == 0 || l < stats.MinLength {
			stats.MinLength = l
		}
		if l > stats.MaxLength {
			stats.MaxLength = l
		}
	}
	stats.AverageLength = sum / len(cycles)
	return stats, nil
}

// Export is the full data export payload, newest first.
type Export struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Profile     *models.UserProfile `json:"profile"`
	Logs        []models.DailyLog   `json:"logs"`
	Cycles      []models.Cycle      `json:"cycles"`
	PeriodDays  []models.PeriodDay  `json:"period_days"`
}

// BuildExport assembles the user's complete tracked history.
func (s *InsightsService) BuildExport(userID uuid.UUID) (*Export, error) {
	out := &Export{GeneratedAt: time.Now().UTC()}

	var profile models.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err == nil {
		out.Profile = &profile
	}

	if err := s.db.Preload("Symptoms.Symptom").
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&out.Logs).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&out.Cycles).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC").
		Find(&out.PeriodDays).Error; err != nil {
		return nil, err
	}
	return out, nil
}
