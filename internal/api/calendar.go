package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lunara-app/backend/internal/middleware"
	"github.com/lunara-app/backend/internal/service"
)

type CalendarHandler struct {
	calendar *service.CalendarService
}

func NewCalendarHandler(calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

func (h *CalendarHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/calendar", h.GetMonth)
}

// GetMonth returns the calendar view for ?month=YYYY-MM (default: current).
func (h *CalendarHandler) GetMonth(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	now := time.Now()
	month := now
	if v := c.Query("month"); v != "" {
		m, err := time.Parse("2006-01", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
			return
		}
		month = m
	}

	view, err := h.calendar.Month(userID, month, now)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
