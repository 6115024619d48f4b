package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lunara-app/backend/internal/middleware"
	"github.com/lunara-app/backend/internal/service"
)

type LogSymptomRequest struct {
	SymptomID string `json:"symptom_id" binding:"required"`
	Severity  int    `json:"severity"`
}

type LogRequest struct {
	Date            string              `json:"date" binding:"required"` // YYYY-MM-DD
	Mood            string              `json:"mood"`
	PainLevel       *int                `json:"pain_level" binding:"omitempty,gte=0,lte=10"`
	EnergyLevel     *int                `json:"energy_level" binding:"omitempty,gte=0,lte=10"`
	WaterIntake     *int                `json:"water_intake" binding:"omitempty,gte=0"`
	SleepHours      *float64            `json:"sleep_hours" binding:"omitempty,gte=0,lte=24"`
	ExerciseMinutes *int                `json:"exercise_minutes" binding:"omitempty,gte=0"`
	Weight          *float64            `json:"weight" binding:"omitempty,gt=0"`
	IsOnPeriod      bool                `json:"is_on_period"`
	Notes           string              `json:"notes"`
	Symptoms        []LogSymptomRequest `json:"symptoms"`
}

type LogHandler struct {
	logs       *service.LogService
	challenges *service.ChallengeService
	logger     *zap.Logger
}

func NewLogHandler(logs *service.LogService, challenges *service.ChallengeService, logger *zap.Logger) *LogHandler {
	return &LogHandler{logs: logs, challenges: challenges, logger: logger}
}

func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/logs")
	{
		logs.GET("", h.ListLogs)
		logs.POST("", h.CreateLog)
		logs.GET("/:date", h.GetLog)
		logs.PUT("/:date", h.UpdateLog)
	}
	router.GET("/symptoms", h.ListSymptoms)
}

func (h *LogHandler) CreateLog(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log, err := h.logs.CreateLog(userID, date, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	// progress counters depend on log rows, so refresh them now; a failed
	// refresh does not invalidate the stored log
	if err := h.challenges.Recompute(userID, time.Now()); err != nil {
		h.logger.Warn("challenge recompute failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}

	c.JSON(http.StatusCreated, log)
}

func (h *LogHandler) UpdateLog(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	var req LogRequest
	req.Date = c.Param("date")
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	_, in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log, err := h.logs.UpdateLog(userID, date, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if err := h.challenges.Recompute(userID, time.Now()); err != nil {
		h.logger.Warn("challenge recompute failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}

	c.JSON(http.StatusOK, log)
}

func (h *LogHandler) GetLog(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	log, err := h.logs.GetLog(userID, date)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, log)
}

func (h *LogHandler) ListLogs(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if v := c.Query("from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		from = d
	}
	if v := c.Query("to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		to = d
	}

	logs, err := h.logs.ListLogs(userID, from, to)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *LogHandler) ListSymptoms(c *gin.Context) {
	symptoms, err := h.logs.ListSymptoms()
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symptoms": symptoms})
}

func (r *LogRequest) toInput() (time.Time, service.LogInput, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, service.LogInput{}, err
	}

	in := service.LogInput{
		Mood:            r.Mood,
		PainLevel:       r.PainLevel,
		EnergyLevel:     r.EnergyLevel,
		WaterIntake:     r.WaterIntake,
		SleepHours:      r.SleepHours,
		ExerciseMinutes: r.ExerciseMinutes,
		Weight:          r.Weight,
		IsOnPeriod:      r.IsOnPeriod,
		Notes:           r.Notes,
	}
	for _, sym := range r.Symptoms {
		id, err := uuid.Parse(sym.SymptomID)
		if err != nil {
			return time.Time{}, service.LogInput{}, err
		}
		in.Symptoms = append(in.Symptoms, service.LogSymptomInput{
			SymptomID: id,
			Severity:  sym.Severity,
		})
	}
	return date, in, nil
}
