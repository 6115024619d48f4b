package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lunara-app/backend/internal/middleware"
	"github.com/lunara-app/backend/internal/service"
)

type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

type PushHandler struct {
	notifications *service.NotificationService
}

func NewPushHandler(notifications *service.NotificationService) *PushHandler {
	return &PushHandler{notifications: notifications}
}

func (h *PushHandler) RegisterRoutes(router *gin.RouterGroup) {
	push := router.Group("/push")
	{
		push.GET("/vapid-key", h.VAPIDKey)
		push.POST("/subscribe", h.Subscribe)
		push.DELETE("/subscribe", h.Unsubscribe)
	}
}

func (h *PushHandler) VAPIDKey(c *gin.Context) {
	key := h.notifications.VAPIDPublicKey()
	if key == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": key})
}

func (h *PushHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sub, err := h.notifications.Subscribe(userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth, c.Request.UserAgent())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *PushHandler) Unsubscribe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.notifications.Unsubscribe(userID, req.Endpoint); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed"})
}
