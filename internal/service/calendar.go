package service

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/models"
)

const (
	// weight of the configured cycle length vs. the historical average
	configuredWeight = 0.7
	historicalWeight = 0.3

	lutealPhaseDays  = 14
	fertileLeadDays  = 5
	fertileTrailDays = 1

	maxHistoryCycles = 12
)

// Prediction is the forecast derived from the profile and cycle history.
type Prediction struct {
	NextPeriodStart  time.Time `json:"next_period_start"`
	NextPeriodEnd    time.Time `json:"next_period_end"`
	Ovulation        time.Time `json:"ovulation"`
	FertileStart     time.Time `json:"fertile_start"`
	FertileEnd       time.Time `json:"fertile_end"`
	CycleLength      int       `json:"cycle_length"`
	DaysUntilPeriod  int       `json:"days_until_period"`
	BasedOnHistory   bool      `json:"based_on_history"`
	HistoricalCycles int       `json:"historical_cycles"`
}

// CalendarMonth is the payload behind the calendar view.
type CalendarMonth struct {
	Month      string             `json:"month"`
	PeriodDays []models.PeriodDay `json:"period_days"`
	LoggedDays []models.DailyLog  `json:"logged_days"`
	Prediction *Prediction        `json:"prediction"`
}

// CalendarService computes cycle predictions and assembles the calendar view.
type CalendarService struct {
	db      *gorm.DB
	profile *ProfileService
}

func NewCalendarService(db *gorm.DB, profile *ProfileService) *CalendarService {
	return &CalendarService{db: db, profile: profile}
}

// EffectiveCycleLength blends the configured length with the historical
// average once at least two completed cycles have a recorded length.
func EffectiveCycleLength(configured int, history []int) (int, bool) {
	if len(history) < 2 {
		return configured, false
	}
	sum := 0
	for _, l := range history {
		sum += l
	}
	avg := float64(sum) / float64(len(history))
	blended := configuredWeight*float64(configured) + historicalWeight*avg
	return int(math.Round(blended)), true
}

// Predict forecasts the next period from the last known start, advancing by
// whole cycles until the predicted start is strictly after today.
func Predict(lastStart time.Time, configured, periodLength int, history []int, today time.Time) Prediction {
	effective, blended := EffectiveCycleLength(configured, history)
	if effective < 1 {
		effective = models.DefaultCycleLength
	}

	lastStart = Day(lastStart)
	today = Day(today)

	next := lastStart.AddDate(0, 0, effective)
	for !next.After(today) {
		next = next.AddDate(0, 0, effective)
	}

	ovulation := next.AddDate(0, 0, -lutealPhaseDays)

	return Prediction{
		NextPeriodStart:  next,
		NextPeriodEnd:    next.AddDate(0, 0, periodLength-1),
		Ovulation:        ovulation,
		FertileStart:     ovulation.AddDate(0, 0, -fertileLeadDays),
		FertileEnd:       ovulation.AddDate(0, 0, fertileTrailDays),
		CycleLength:      effective,
		DaysUntilPeriod:  int(next.Sub(today).Hours() / 24),
		BasedOnHistory:   blended,
		HistoricalCycles: len(history),
	}
}

// PredictForUser builds the forecast from stored state. Returns nil when no
// period start has ever been recorded.
func (s *CalendarService) PredictForUser(userID uuid.UUID, today time.Time) (*Prediction, error) {
	profile, err := s.profile.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	lastStart := profile.LastPeriodStart
	if lastStart == nil {
		var latest models.PeriodDay
		err := s.db.Where("user_id = ?", userID).
			Order("date DESC").First(&latest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		lastStart = &latest.Date
	}

	history, err := s.cycleHistory(userID)
	if err != nil {
		return nil, err
	}

	p := Predict(*lastStart, profile.CycleLength, profile.PeriodLength, history, today)
	return &p, nil
}

// Month assembles the calendar payload for a YYYY-MM month.
func (s *CalendarService) Month(userID uuid.UUID, month time.Time, today time.Time) (*CalendarMonth, error) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	var periodDays []models.PeriodDay
	if err := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, first, last).
		Order("date").Find(&periodDays).Error; err != nil {
		return nil, err
	}

	var logs []models.DailyLog
	if err := s.db.Preload("Symptoms.Symptom").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, first, last).
		Order("date").Find(&logs).Error; err != nil {
		return nil, err
	}

	prediction, err := s.PredictForUser(userID, today)
	if err != nil {
		return nil, err
	}

	return &CalendarMonth{
		Month:      first.Format("2006-01"),
		PeriodDays: periodDays,
		LoggedDays: logs,
		Prediction: prediction,
	}, nil
}

// cycleHistory returns the lengths of the most recent completed cycles.
func (s *CalendarService) cycleHistory(userID uuid.UUID) ([]int, error) {
	var cycles []models.Cycle
	if err := s.db.Where("user_id = ? AND length IS NOT NULL", userID).
		Order("start_date DESC").Limit(maxHistoryCycles).
		Find(&cycles).Error; err != nil {
		return nil, err
	}
	lengths := make([]int, 0, len(cycles))
	for _, c := range cycles {
		if c.Length != nil && *c.Length > 0 {
			lengths = append(lengths, *c.Length)
		}
	}
	return lengths, nil
}
