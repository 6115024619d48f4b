package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lunara-app/backend/internal/middleware"
	"github.com/lunara-app/backend/internal/service"
)

type UpdateProfileRequest struct {
	CycleLength     *int    `json:"cycle_length"`
	PeriodLength    *int    `json:"period_length"`
	LastPeriodStart *string `json:"last_period_start"` // YYYY-MM-DD
	Timezone        *string `json:"timezone"`
}

type ProfileHandler struct {
	profile *service.ProfileService
}

func NewProfileHandler(profile *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.profile.GetProfile(userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := service.UpdateProfileInput{
		CycleLength:  req.CycleLength,
		PeriodLength: req.PeriodLength,
		Timezone:     req.Timezone,
	}
	if req.LastPeriodStart != nil {
		d, err := time.Parse("2006-01-02", *req.LastPeriodStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "last_period_start must be YYYY-MM-DD"})
			return
		}
		in.LastPeriodStart = &d
	}

	profile, err := h.profile.UpdateProfile(userID, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
