package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunara-app/backend/internal/models"
)

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupAPI(t)

	w := performRequest(router, "GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestProfileEndpoints(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "maja@example.com")

	w := performRequest(router, "GET", "/api/v1/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var profile struct {
		CycleLength  int    `json:"cycle_length"`
		PeriodLength int    `json:"period_length"`
		Timezone     string `json:"timezone"`
	}
	decodeBody(t, w, &profile)
	assert.Equal(t, 28, profile.CycleLength)
	assert.Equal(t, 5, profile.PeriodLength)

	w = performRequest(router, "PUT", "/api/v1/profile", map[string]interface{}{
		"cycle_length":      30,
		"last_period_start": "2025-01-01",
		"timezone":          "Europe/Berlin",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &profile)
	assert.Equal(t, 30, profile.CycleLength)
	assert.Equal(t, "Europe/Berlin", profile.Timezone)

	w = performRequest(router, "PUT", "/api/v1/profile", map[string]interface{}{
		"cycle_length": 50,
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, "PUT", "/api/v1/profile", map[string]interface{}{
		"last_period_start": "01/01/2025",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTodoEndpoints(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "maja@example.com")

	w := performRequest(router, "POST", "/api/v1/todos", map[string]interface{}{
		"title":    "Buy supplies",
		"due_date": "2025-06-01",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var todo struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		IsCompleted bool   `json:"is_completed"`
	}
	decodeBody(t, w, &todo)
	assert.Equal(t, "Buy supplies", todo.Title)

	w = performRequest(router, "PATCH", "/api/v1/todos/"+todo.ID+"/toggle", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &todo)
	assert.True(t, todo.IsCompleted)

	w = performRequest(router, "GET", "/api/v1/todos", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Todos []map[string]interface{} `json:"todos"`
	}
	decodeBody(t, w, &list)
	assert.Len(t, list.Todos, 1)

	w = performRequest(router, "DELETE", "/api/v1/todos/"+todo.ID, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "DELETE", "/api/v1/todos/"+todo.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodoOwnershipIsolation(t *testing.T) {
	router, _ := setupAPI(t)
	owner := registerUser(t, router, "owner@example.com")
	intruder := registerUser(t, router, "intruder@example.com")

	w := performRequest(router, "POST", "/api/v1/todos", map[string]interface{}{
		"title": "Private task",
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code)

	var todo struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &todo)

	w = performRequest(router, "DELETE", "/api/v1/todos/"+todo.ID, nil, intruder)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, "GET", "/api/v1/todos", nil, intruder)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Todos []map[string]interface{} `json:"todos"`
	}
	decodeBody(t, w, &list)
	assert.Empty(t, list.Todos)
}

func TestReminderEndpoints(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "maja@example.com")

	// signup seeds period and log reminders
	w := performRequest(router, "GET", "/api/v1/reminders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Reminders []struct {
			Type      string `json:"type"`
			TimeOfDay string `json:"time_of_day"`
		} `json:"reminders"`
	}
	decodeBody(t, w, &list)
	assert.Len(t, list.Reminders, 2)

	w = performRequest(router, "PUT", "/api/v1/reminders", map[string]interface{}{
		"type":        "period",
		"enabled":     true,
		"time_of_day": "07:45",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(router, "PUT", "/api/v1/reminders", map[string]interface{}{
		"type":        "period",
		"enabled":     true,
		"time_of_day": "25:99",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGamificationEndpoints(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "maja@example.com")

	w := performRequest(router, "GET", "/api/v1/challenges", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Challenges []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Joined bool   `json:"joined"`
		} `json:"challenges"`
	}
	decodeBody(t, w, &list)
	require.NotEmpty(t, list.Challenges)
	assert.False(t, list.Challenges[0].Joined)

	w = performRequest(router, "POST", "/api/v1/challenges/"+list.Challenges[0].ID+"/join", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(router, "POST", "/api/v1/challenges/"+list.Challenges[0].ID+"/join", nil, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(router, "GET", "/api/v1/badges", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	router, db := setupAPI(t)
	token := registerUser(t, router, "maja@example.com")

	var user models.User
	require.NoError(t, db.Where("email = ?", "maja@example.com").First(&user).Error)
	n := models.Notification{
		UserID:  user.ID,
		Type:    models.NotificationReminder,
		Title:   "Period reminder",
		Message: "Your period is expected in 3 days.",
	}
	require.NoError(t, db.Create(&n).Error)

	w := performRequest(router, "GET", "/api/v1/notifications", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Notifications []struct {
			ID string `json:"id"`
		} `json:"notifications"`
		UnreadCount int64 `json:"unread_count"`
	}
	decodeBody(t, w, &list)
	require.Len(t, list.Notifications, 1)
	assert.EqualValues(t, 1, list.UnreadCount)

	w = performRequest(router, "PATCH", "/api/v1/notifications/"+n.ID.String()+"/read", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "GET", "/api/v1/notifications?unread=true", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &list)
	assert.Empty(t, list.Notifications)

	w = performRequest(router, "DELETE", "/api/v1/notifications/"+n.ID.String(), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "DELETE", "/api/v1/notifications/"+n.ID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPushEndpoints(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "maja@example.com")

	// VAPID keys are not configured in tests
	w := performRequest(router, "GET", "/api/v1/push/vapid-key", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, "POST", "/api/v1/push/subscribe", map[string]interface{}{
		"endpoint": "https://push.example.com/sub",
		"keys": map[string]string{
			"p256dh": "client-key",
			"auth":   "client-auth",
		},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(router, "DELETE", "/api/v1/push/subscribe", map[string]interface{}{
		"endpoint": "https://push.example.com/sub",
	}, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInsightsEndpoints(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "maja@example.com")

	w := performRequest(router, "GET", "/api/v1/insights", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "window_days")

	w = performRequest(router, "GET", "/api/v1/export", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}

func TestCronEndpointRequiresSecret(t *testing.T) {
	router, _ := setupAPI(t)

	w := performRequest(router, "POST", "/api/v1/cron/notifications", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performCronRequest(router, "wrong-secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performCronRequest(router, "test-cron-secret")
	assert.Equal(t, http.StatusOK, w.Code)
}
