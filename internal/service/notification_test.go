package service_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lunara-app/backend/config"
	"github.com/lunara-app/backend/internal/models"
	"github.com/lunara-app/backend/internal/service"
	"github.com/lunara-app/backend/internal/testhelpers"
)

// fakeSender records pushes instead of hitting a push service.
type fakeSender struct {
	sent    []string
	status  int
	sendErr error
}

func (f *fakeSender) Send(sub *models.PushSubscription, payload []byte) (int, error) {
	f.sent = append(f.sent, sub.Endpoint)
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	return f.status, nil
}

func TestCreateNotification(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop())
	user := testhelpers.CreateTestUser(t, db)

	n, err := svc.Create(user.ID, models.NotificationReminder, "Period reminder",
		"Your period is expected in 3 days.", map[string]string{"kind": "period"})
	require.NoError(t, err)
	assert.False(t, n.IsRead)
	require.NotNil(t, n.SentAt)
	assert.Equal(t, "period", n.Metadata["kind"])
}

func TestCreateNotificationPushesToSubscriptions(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	sender := &fakeSender{status: http.StatusCreated}
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop()).WithSender(sender)
	user := testhelpers.CreateTestUser(t, db)

	_, err := svc.Subscribe(user.ID, "https://push.example.com/sub-1", "p256dh-key", "auth-key", "test-agent")
	require.NoError(t, err)
	_, err = svc.Subscribe(user.ID, "https://push.example.com/sub-2", "p256dh-key", "auth-key", "test-agent")
	require.NoError(t, err)

	_, err = svc.Create(user.ID, models.NotificationInsight, "Title", "Body", nil)
	require.NoError(t, err)

	assert.Len(t, sender.sent, 2)
}

func TestPushGoneDeactivatesSubscription(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	sender := &fakeSender{status: http.StatusGone}
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop()).WithSender(sender)
	user := testhelpers.CreateTestUser(t, db)

	_, err := svc.Subscribe(user.ID, "https://push.example.com/stale", "p256dh-key", "auth-key", "")
	require.NoError(t, err)

	_, err = svc.Create(user.ID, models.NotificationInsight, "Title", "Body", nil)
	require.NoError(t, err)

	var sub models.PushSubscription
	require.NoError(t, db.Where("endpoint = ?", "https://push.example.com/stale").First(&sub).Error)
	assert.False(t, sub.IsActive)

	// deactivated endpoints are skipped on the next send
	_, err = svc.Create(user.ID, models.NotificationInsight, "Title", "Body", nil)
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}

func TestListNotifications(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop())
	user := testhelpers.CreateTestUser(t, db)

	first, err := svc.Create(user.ID, models.NotificationReminder, "One", "one", nil)
	require.NoError(t, err)
	_, err = svc.Create(user.ID, models.NotificationInsight, "Two", "two", nil)
	require.NoError(t, err)

	all, unread, err := svc.List(user.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.EqualValues(t, 2, unread)

	require.NoError(t, svc.MarkRead(user.ID, first.ID))

	unreadOnly, unread, err := svc.List(user.ID, true)
	require.NoError(t, err)
	assert.Len(t, unreadOnly, 1)
	assert.EqualValues(t, 1, unread)
	assert.Equal(t, "Two", unreadOnly[0].Title)
}

func TestMarkReadEnforcesOwnership(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop())
	user := testhelpers.CreateTestUser(t, db)
	other := testhelpers.CreateTestUser(t, db)

	n, err := svc.Create(user.ID, models.NotificationReminder, "One", "one", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkRead(other.ID, n.ID), service.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(other.ID, n.ID), service.ErrNotFound)
	require.NoError(t, svc.Delete(user.ID, n.ID))
}

func TestMarkAllRead(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop())
	user := testhelpers.CreateTestUser(t, db)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(user.ID, models.NotificationSystem, "n", "n", nil)
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllRead(user.ID))

	_, unread, err := svc.List(user.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}

func TestExistsToday(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop())
	user := testhelpers.CreateTestUser(t, db)

	now := time.Now()

	exists, err := svc.ExistsToday(user.ID, models.NotificationReminder, "kind", "period", now)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.Create(user.ID, models.NotificationReminder, "Period reminder", "soon",
		map[string]string{"kind": "period"})
	require.NoError(t, err)

	exists, err = svc.ExistsToday(user.ID, models.NotificationReminder, "kind", "period", now)
	require.NoError(t, err)
	assert.True(t, exists)

	// a different metadata kind does not match
	exists, err = svc.ExistsToday(user.ID, models.NotificationReminder, "kind", "log", now)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubscribeUpsertsByEndpoint(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop())
	user := testhelpers.CreateTestUser(t, db)

	_, err := svc.Subscribe(user.ID, "https://push.example.com/sub", "key-1", "auth-1", "agent")
	require.NoError(t, err)

	sub, err := svc.Subscribe(user.ID, "https://push.example.com/sub", "key-2", "auth-2", "agent")
	require.NoError(t, err)
	assert.Equal(t, "key-2", sub.P256dh)

	var count int64
	require.NoError(t, db.Model(&models.PushSubscription{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubscribeValidation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop())
	user := testhelpers.CreateTestUser(t, db)

	_, err := svc.Subscribe(user.ID, "", "key", "auth", "")
	assert.Error(t, err)
	_, err = svc.Subscribe(user.ID, "https://push.example.com/sub", "", "auth", "")
	assert.Error(t, err)
}

func TestUnsubscribe(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewNotificationService(db, &config.Config{}, zap.NewNop())
	user := testhelpers.CreateTestUser(t, db)

	_, err := svc.Subscribe(user.ID, "https://push.example.com/sub", "key", "auth", "")
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(user.ID, "https://push.example.com/sub"))
	assert.ErrorIs(t, svc.Unsubscribe(user.ID, "https://push.example.com/sub"), service.ErrNotFound)
}
