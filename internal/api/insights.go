package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lunara-app/backend/internal/middleware"
	"github.com/lunara-app/backend/internal/service"
)

type InsightsHandler struct {
	insights *service.InsightsService
}

func NewInsightsHandler(insights *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

func (h *InsightsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/insights", h.Summary)
	router.GET("/export", h.Export)
}

func (h *InsightsHandler) Summary(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summary, err := h.insights.Summary(userID, time.Now())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Export streams the user's full tracked history as a JSON attachment.
func (h *InsightsHandler) Export(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	export, err := h.insights.BuildExport(userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	filename := "lunara-export-" + export.GeneratedAt.Format("2006-01-02") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, export)
}
