package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunara-app/backend/internal/models"
)

func TestRegisterEndpoint(t *testing.T) {
	router, db := setupAPI(t)

	token := registerUser(t, router, "maja@example.com")
	assert.NotEmpty(t, token)

	var user models.User
	require.NoError(t, db.Where("email = ?", "maja@example.com").First(&user).Error)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := setupAPI(t)

	// missing name, missing email, malformed email, short password, under-age
	cases := []map[string]interface{}{
		{"email": "maja@example.com", "password": "password123"},
		{"name": "Maja", "password": "password123"},
		{"name": "Maja", "email": "not-an-email", "password": "password123"},
		{"name": "Maja", "email": "maja@example.com", "password": "short"},
		{"name": "Maja", "email": "maja@example.com", "password": "password123", "age": 7},
	}
	for _, body := range cases {
		w := performRequest(router, "POST", "/api/v1/auth/register", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := setupAPI(t)

	registerUser(t, router, "maja@example.com")

	w := performRequest(router, "POST", "/api/v1/auth/register", map[string]interface{}{
		"name":     "Other",
		"email":    "maja@example.com",
		"password": "password456",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := setupAPI(t)

	registerUser(t, router, "maja@example.com")

	w := performRequest(router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    "maja@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    "maja@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyEmailEndpoint(t *testing.T) {
	router, db := setupAPI(t)

	registerUser(t, router, "maja@example.com")

	var user models.User
	require.NoError(t, db.Where("email = ?", "maja@example.com").First(&user).Error)
	require.NoError(t, db.Create(&models.EmailVerification{
		UserID:    user.ID,
		Token:     "verify-me",
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	w := performRequest(router, "POST", "/api/v1/auth/verify-email", map[string]interface{}{
		"token": "verify-me",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "POST", "/api/v1/auth/verify-email", map[string]interface{}{
		"token": "verify-me",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router, _ := setupAPI(t)

	for _, path := range []string{"/api/v1/profile", "/api/v1/logs", "/api/v1/todos", "/api/v1/notifications"} {
		w := performRequest(router, "GET", path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
