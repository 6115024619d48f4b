package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lunara-app/backend/config"
	"github.com/lunara-app/backend/internal/api"
	"github.com/lunara-app/backend/internal/database"
	"github.com/lunara-app/backend/internal/router"
	"github.com/lunara-app/backend/internal/scheduler"
	"github.com/lunara-app/backend/internal/server"
	"github.com/lunara-app/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		// the API degrades without redis (no rate limiting, no scheduler lock)
		logger.Warn("redis unavailable, continuing without it", zap.Error(err))
		redisClient = nil
	}

	// Services
	emailService := service.NewEmailService(cfg, logger)
	authService := service.NewAuthService(db, cfg.JWTSecret, emailService)
	profileService := service.NewProfileService(db)
	logService := service.NewLogService(db)
	calendarService := service.NewCalendarService(db, profileService)
	notificationService := service.NewNotificationService(db, cfg, logger)
	challengeService := service.NewChallengeService(db, notificationService, logger)
	reminderService := service.NewReminderService(db)
	todoService := service.NewTodoService(db)
	insightsService := service.NewInsightsService(db)

	// Scheduler (in-process cron plus the external HTTP trigger)
	sched := scheduler.New(db, notificationService, calendarService, challengeService, redisClient, logger)
	cronRunner := sched.Start()

	handlers := router.Handlers{
		Auth:          api.NewAuthHandler(authService),
		Profile:       api.NewProfileHandler(profileService),
		Logs:          api.NewLogHandler(logService, challengeService, logger),
		Calendar:      api.NewCalendarHandler(calendarService),
		Gamification:  api.NewGamificationHandler(challengeService),
		Notifications: api.NewNotificationHandler(notificationService),
		Push:          api.NewPushHandler(notificationService),
		Reminders:     api.NewReminderHandler(reminderService),
		Todos:         api.NewTodoHandler(todoService),
		Insights:      api.NewInsightsHandler(insightsService),
		Cron:          api.NewCronHandler(sched, cfg.CronSecret),
	}

	allowedOrigins := strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")
	if allowedOrigins[0] == "" {
		allowedOrigins = nil
	}

	r := router.SetupRouter(handlers, authService, db, redisClient, allowedOrigins)
	srv := server.New(r, cfg.ServerHost+":"+cfg.ServerPort, cronRunner)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.ServerPort))
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
