package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lunara-app/backend/internal/middleware"
	"github.com/lunara-app/backend/internal/models"
	"github.com/lunara-app/backend/internal/service"
)

// ChallengeView joins a catalog challenge with the user's progress.
type ChallengeView struct {
	models.Challenge
	Joined          bool `json:"joined"`
	CurrentProgress int  `json:"current_progress"`
	IsCompleted     bool `json:"is_completed"`
}

type GamificationHandler struct {
	challenges *service.ChallengeService
}

func NewGamificationHandler(challenges *service.ChallengeService) *GamificationHandler {
	return &GamificationHandler{challenges: challenges}
}

func (h *GamificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/challenges", h.ListChallenges)
	router.POST("/challenges/:id/join", h.JoinChallenge)
	router.GET("/badges", h.ListBadges)
}

func (h *GamificationHandler) ListChallenges(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	challenges, progress, err := h.challenges.ListChallenges(userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	views := make([]ChallengeView, 0, len(challenges))
	for _, ch := range challenges {
		view := ChallengeView{Challenge: ch}
		if p, ok := progress[ch.ID]; ok {
			view.Joined = true
			view.CurrentProgress = p.CurrentProgress
			view.IsCompleted = p.IsCompleted
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"challenges": views})
}

func (h *GamificationHandler) JoinChallenge(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	uc, err := h.challenges.JoinChallenge(userID, challengeID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, uc)
}

func (h *GamificationHandler) ListBadges(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	badges, err := h.challenges.ListBadges(userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": badges})
}
