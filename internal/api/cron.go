package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lunara-app/backend/internal/scheduler"
)

// CronHandler exposes the external trigger for the scheduled notification
// passes, guarded by a shared secret.
type CronHandler struct {
	scheduler  *scheduler.Service
	cronSecret string
}

func NewCronHandler(sched *scheduler.Service, cronSecret string) *CronHandler {
	return &CronHandler{scheduler: sched, cronSecret: cronSecret}
}

func (h *CronHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/cron/notifications", h.Run)
}

func (h *CronHandler) Run(c *gin.Context) {
	if h.cronSecret != "" && c.GetHeader("X-Cron-Secret") != h.cronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid cron secret"})
		return
	}

	if err := h.scheduler.RunScheduledTasks(c.Request.Context(), time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "scheduled tasks completed"})
}
