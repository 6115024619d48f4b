package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/config"
	"github.com/lunara-app/backend/internal/api"
	"github.com/lunara-app/backend/internal/router"
	"github.com/lunara-app/backend/internal/scheduler"
	"github.com/lunara-app/backend/internal/service"
	"github.com/lunara-app/backend/internal/testhelpers"
)

// setupAPI wires the full application router against an in-memory database.
func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	logger := zap.NewNop()
	cfg := &config.Config{JWTSecret: "test-secret-0123456789"}

	authSvc := service.NewAuthService(db, cfg.JWTSecret, nil)
	profileSvc := service.NewProfileService(db)
	logSvc := service.NewLogService(db)
	calendarSvc := service.NewCalendarService(db, profileSvc)
	notificationSvc := service.NewNotificationService(db, cfg, logger)
	challengeSvc := service.NewChallengeService(db, notificationSvc, logger)
	reminderSvc := service.NewReminderService(db)
	todoSvc := service.NewTodoService(db)
	insightsSvc := service.NewInsightsService(db)
	sched := scheduler.New(db, notificationSvc, calendarSvc, challengeSvc, nil, logger)

	handlers := router.Handlers{
		Auth:          api.NewAuthHandler(authSvc),
		Profile:       api.NewProfileHandler(profileSvc),
		Logs:          api.NewLogHandler(logSvc, challengeSvc, logger),
		Calendar:      api.NewCalendarHandler(calendarSvc),
		Gamification:  api.NewGamificationHandler(challengeSvc),
		Notifications: api.NewNotificationHandler(notificationSvc),
		Push:          api.NewPushHandler(notificationSvc),
		Reminders:     api.NewReminderHandler(reminderSvc),
		Todos:         api.NewTodoHandler(todoSvc),
		Insights:      api.NewInsightsHandler(insightsSvc),
		Cron:          api.NewCronHandler(sched, "test-cron-secret"),
	}

	return router.SetupRouter(handlers, authSvc, db, nil, nil), db
}

func performRequest(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func performCronRequest(router *gin.Engine, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/cron/notifications", nil)
	req.Header.Set("X-Cron-Secret", secret)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerUser signs up a fresh account and returns its session token.
func registerUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := performRequest(router, "POST", "/api/v1/auth/register", map[string]interface{}{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
		"age":      28,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
