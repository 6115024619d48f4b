package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lunara-app/backend/internal/middleware"
	"github.com/lunara-app/backend/internal/service"
)

type ReminderRequest struct {
	Type          string `json:"type" binding:"required"`
	Enabled       bool   `json:"enabled"`
	TimeOfDay     string `json:"time_of_day"`
	Frequency     string `json:"frequency"`
	CustomMessage string `json:"custom_message"`
}

type ReminderHandler struct {
	reminders *service.ReminderService
}

func NewReminderHandler(reminders *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reminders := router.Group("/reminders")
	{
		reminders.GET("", h.List)
		reminders.PUT("", h.Upsert)
	}
}

func (h *ReminderHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	settings, err := h.reminders.List(userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": settings})
}

func (h *ReminderHandler) Upsert(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	setting, err := h.reminders.Upsert(userID, service.ReminderInput{
		Type:          req.Type,
		Enabled:       req.Enabled,
		TimeOfDay:     req.TimeOfDay,
		Frequency:     req.Frequency,
		CustomMessage: req.CustomMessage,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, setting)
}
