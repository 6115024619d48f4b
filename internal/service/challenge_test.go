package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/config"
	"github.com/lunara-app/backend/internal/models"
	"github.com/lunara-app/backend/internal/service"
	"github.com/lunara-app/backend/internal/testhelpers"
)

func newChallengeService(t *testing.T) (*service.ChallengeService, *gorm.DB) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	notifications := service.NewNotificationService(db, &config.Config{}, zap.NewNop())
	challenges := service.NewChallengeService(db, notifications, zap.NewNop())
	return challenges, db
}

func findChallenge(t *testing.T, challenges []models.Challenge, name string) models.Challenge {
	t.Helper()
	for _, c := range challenges {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("challenge %q not seeded", name)
	return models.Challenge{}
}

func TestListChallengesIncludesProgress(t *testing.T) {
	svc, db := newChallengeService(t)
	user := testhelpers.CreateTestUser(t, db)

	catalog, progress, err := svc.ListChallenges(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, catalog)
	assert.Empty(t, progress)

	joined, err := svc.JoinChallenge(user.ID, catalog[0].ID)
	require.NoError(t, err)

	_, progress, err = svc.ListChallenges(user.ID)
	require.NoError(t, err)
	require.Contains(t, progress, catalog[0].ID)
	assert.Equal(t, joined.ID, progress[catalog[0].ID].ID)
}

func TestJoinChallengeTwice(t *testing.T) {
	svc, db := newChallengeService(t)
	user := testhelpers.CreateTestUser(t, db)

	catalog, _, err := svc.ListChallenges(user.ID)
	require.NoError(t, err)

	_, err = svc.JoinChallenge(user.ID, catalog[0].ID)
	require.NoError(t, err)

	_, err = svc.JoinChallenge(user.ID, catalog[0].ID)
	assert.ErrorIs(t, err, service.ErrAlreadyJoined)
}

func TestJoinUnknownChallenge(t *testing.T) {
	svc, db := newChallengeService(t)
	user := testhelpers.CreateTestUser(t, db)

	_, err := svc.JoinChallenge(user.ID, user.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRecomputeStreakChallenge(t *testing.T) {
	svc, db := newChallengeService(t)
	logs := service.NewLogService(db)
	user := testhelpers.CreateTestUser(t, db)

	catalog, _, err := svc.ListChallenges(user.ID)
	require.NoError(t, err)
	streak7 := findChallenge(t, catalog, "7-Day Streak")

	_, err = svc.JoinChallenge(user.ID, streak7.ID)
	require.NoError(t, err)

	today := date(2025, 5, 20)
	for i := 0; i < 5; i++ {
		_, err := logs.CreateLog(user.ID, today.AddDate(0, 0, -i), service.LogInput{})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Recompute(user.ID, today))

	var uc models.UserChallenge
	require.NoError(t, db.Where("user_id = ? AND challenge_id = ?", user.ID, streak7.ID).First(&uc).Error)
	assert.Equal(t, 5, uc.CurrentProgress)
	assert.False(t, uc.IsCompleted)
}

func TestRecomputeCompletionAwardsBadge(t *testing.T) {
	svc, db := newChallengeService(t)
	logs := service.NewLogService(db)
	user := testhelpers.CreateTestUser(t, db)

	catalog, _, err := svc.ListChallenges(user.ID)
	require.NoError(t, err)
	streak7 := findChallenge(t, catalog, "7-Day Streak")
	require.NotNil(t, streak7.BadgeID)

	_, err = svc.JoinChallenge(user.ID, streak7.ID)
	require.NoError(t, err)

	today := date(2025, 5, 20)
	for i := 0; i < 7; i++ {
		_, err := logs.CreateLog(user.ID, today.AddDate(0, 0, -i), service.LogInput{})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Recompute(user.ID, today))

	var uc models.UserChallenge
	require.NoError(t, db.Where("user_id = ? AND challenge_id = ?", user.ID, streak7.ID).First(&uc).Error)
	assert.True(t, uc.IsCompleted)
	assert.NotNil(t, uc.CompletedAt)

	var badge models.UserBadge
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&badge).Error)
	assert.Equal(t, *streak7.BadgeID, badge.BadgeID)

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.NotificationAchievement).
		First(&notification).Error)
	assert.Equal(t, streak7.ID.String(), notification.Metadata["challenge_id"])

	// a second recompute does not duplicate the badge
	require.NoError(t, svc.Recompute(user.ID, today))
	var badgeCount int64
	require.NoError(t, db.Model(&models.UserBadge{}).Where("user_id = ?", user.ID).Count(&badgeCount).Error)
	assert.EqualValues(t, 1, badgeCount)
}

func TestRecomputePeriodTrackingProgress(t *testing.T) {
	svc, db := newChallengeService(t)
	logs := service.NewLogService(db)
	user := testhelpers.CreateTestUser(t, db)

	catalog, _, err := svc.ListChallenges(user.ID)
	require.NoError(t, err)
	tracker := findChallenge(t, catalog, "Cycle Tracker")

	_, err = svc.JoinChallenge(user.ID, tracker.ID)
	require.NoError(t, err)

	// three period starts close two cycles
	for _, d := range []time.Time{date(2025, 1, 1), date(2025, 1, 29), date(2025, 2, 27)} {
		_, err := logs.CreateLog(user.ID, d, service.LogInput{IsOnPeriod: true})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Recompute(user.ID, date(2025, 3, 1)))

	var uc models.UserChallenge
	require.NoError(t, db.Where("user_id = ? AND challenge_id = ?", user.ID, tracker.ID).First(&uc).Error)
	assert.Equal(t, 2, uc.CurrentProgress)
	assert.False(t, uc.IsCompleted)
}

func TestRecomputeMoodTrackingProgress(t *testing.T) {
	svc, db := newChallengeService(t)
	logs := service.NewLogService(db)
	user := testhelpers.CreateTestUser(t, db)

	catalog, _, err := svc.ListChallenges(user.ID)
	require.NoError(t, err)
	mood := findChallenge(t, catalog, "Mood Journal")

	_, err = svc.JoinChallenge(user.ID, mood.ID)
	require.NoError(t, err)

	today := date(2025, 5, 20)
	_, err = logs.CreateLog(user.ID, today, service.LogInput{Mood: "happy"})
	require.NoError(t, err)
	_, err = logs.CreateLog(user.ID, today.AddDate(0, 0, -1), service.LogInput{Mood: "tired"})
	require.NoError(t, err)
	// a log without a mood does not count
	_, err = logs.CreateLog(user.ID, today.AddDate(0, 0, -2), service.LogInput{})
	require.NoError(t, err)

	require.NoError(t, svc.Recompute(user.ID, today))

	var uc models.UserChallenge
	require.NoError(t, db.Where("user_id = ? AND challenge_id = ?", user.ID, mood.ID).First(&uc).Error)
	assert.Equal(t, 2, uc.CurrentProgress)
}

func TestCurrentStreak(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	logs := service.NewLogService(db)
	user := testhelpers.CreateTestUser(t, db)

	today := date(2025, 5, 20)

	streak, err := service.CurrentStreak(db, user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)

	// three consecutive days, then a gap, then an older log
	for _, offset := range []int{0, -1, -2, -4} {
		_, err := logs.CreateLog(user.ID, today.AddDate(0, 0, offset), service.LogInput{})
		require.NoError(t, err)
	}

	streak, err = service.CurrentStreak(db, user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}
