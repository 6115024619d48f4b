package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lunara-app/backend/internal/service"
)

// abortWithServiceError maps service sentinel errors onto HTTP statuses;
// anything unrecognized becomes a generic 500.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "an account with this email already exists"})
	case errors.Is(err, service.ErrDuplicateLog):
		c.JSON(http.StatusConflict, gin.H{"error": "a log already exists for this date"})
	case errors.Is(err, service.ErrAlreadyJoined):
		c.JSON(http.StatusConflict, gin.H{"error": "challenge already joined"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired token"})
	case errors.Is(err, service.ErrEmptyTitle),
		errors.Is(err, service.ErrInvalidCycleLen),
		errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, service.ErrInvalidReminder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
