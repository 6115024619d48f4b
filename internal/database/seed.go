package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/models"
)

// SeedCatalogs inserts the symptom, badge and challenge catalogs. Safe to
// run repeatedly; existing rows are left alone.
func SeedCatalogs(db *gorm.DB) error {
	symptoms := []models.Symptom{
		{Name: "Cramps", Category: "physical", Icon: "cramps"},
		{Name: "Headache", Category: "physical", Icon: "headache"},
		{Name: "Bloating", Category: "physical", Icon: "bloating"},
		{Name: "Fatigue", Category: "physical", Icon: "fatigue"},
		{Name: "Breast tenderness", Category: "physical", Icon: "tenderness"},
		{Name: "Back pain", Category: "physical", Icon: "backpain"},
		{Name: "Nausea", Category: "physical", Icon: "nausea"},
		{Name: "Acne", Category: "physical", Icon: "acne"},
		{Name: "Spotting", Category: "physical", Icon: "spotting"},
		{Name: "Food cravings", Category: "physical", Icon: "cravings"},
		{Name: "Mood swings", Category: "emotional", Icon: "mood"},
		{Name: "Irritability", Category: "emotional", Icon: "irritability"},
		{Name: "Anxiety", Category: "emotional", Icon: "anxiety"},
		{Name: "Insomnia", Category: "emotional", Icon: "insomnia"},
	}
	for _, s := range symptoms {
		if err := firstOrCreate(db, &models.Symptom{}, "name = ?", s.Name, &s); err != nil {
			return err
		}
	}

	badges := []models.Badge{
		{Name: "First Steps", Description: "Logged your first 7 days in a row", Icon: "streak-7"},
		{Name: "Habit Builder", Description: "Logged 14 days in a row", Icon: "streak-14"},
		{Name: "Cycle Sage", Description: "Tracked 3 complete cycles", Icon: "cycles-3"},
		{Name: "Body Aware", Description: "Recorded symptoms on 15 days", Icon: "symptoms-15"},
		{Name: "Mood Mapper", Description: "Tracked your mood on 20 days", Icon: "mood-20"},
		{Name: "Consistent", Description: "Logged 80% of the last month", Icon: "consistency-80"},
	}
	for _, b := range badges {
		if err := firstOrCreate(db, &models.Badge{}, "name = ?", b.Name, &b); err != nil {
			return err
		}
	}

	challenges := []struct {
		challenge models.Challenge
		badgeName string
	}{
		{models.Challenge{Name: "7-Day Streak", Description: "Log every day for a week", Type: models.ChallengeDailyLogging, Target: 7}, "First Steps"},
		{models.Challenge{Name: "14-Day Streak", Description: "Log every day for two weeks", Type: models.ChallengeDailyLogging, Target: 14}, "Habit Builder"},
		{models.Challenge{Name: "Cycle Tracker", Description: "Track 3 complete cycles", Type: models.ChallengePeriodTracking, Target: 3}, "Cycle Sage"},
		{models.Challenge{Name: "Symptom Scout", Description: "Record symptoms on 15 days this month", Type: models.ChallengeSymptomAwareness, Target: 15}, "Body Aware"},
		{models.Challenge{Name: "Mood Journal", Description: "Track your mood on 20 days this month", Type: models.ChallengeMoodTracking, Target: 20}, "Mood Mapper"},
		{models.Challenge{Name: "Steady Tracker", Description: "Log 80% of the last 30 days", Type: models.ChallengeConsistency, Target: 80}, "Consistent"},
	}
	for _, c := range challenges {
		var badge models.Badge
		if err := db.Where("name = ?", c.badgeName).First(&badge).Error; err != nil {
			return err
		}
		ch := c.challenge
		ch.BadgeID = &badge.ID
		if err := firstOrCreate(db, &models.Challenge{}, "name = ?", ch.Name, &ch); err != nil {
			return err
		}
	}

	return nil
}

func firstOrCreate(db *gorm.DB, probe interface{}, query string, arg interface{}, create interface{}) error {
	err := db.Where(query, arg).First(probe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(create).Error
	}
	return err
}
