package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/config"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/database"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/logging"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/reminders"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/routes"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if !cfg.UsesSQLite() && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if cfg.SeedGlobalMission {
		if err := database.SeedGlobalMissions(database.DB); err != nil {
			slog.Error("global mission seed failed", "error", err)
		}
	}

	// ERROR+ records are batched into system_logs
	dbLogHandler := logging.NewDBHandler(database.DB, 5*time.Second)
	logging.Setup(cfg.AppEnv, dbLogHandler)

	// All services share one locker
	deps := services.Deps{
		DB:     database.DB,
		Locker: account.NewLocker(),
		Clock:  services.SystemClock(cfg.Location()),
	}
	notificationService := services.NewNotificationService(deps)
	scheduler := reminders.NewCronScheduler(cfg.Location(), notificationService.PushReminder)
	deps.Scheduler = scheduler

	moderationService := services.NewModerationService(deps)
	progressService := services.NewProgressService(deps)
	achievementService := services.NewAchievementService(deps)
	socialService := services.NewSocialService(deps, progressService, achievementService)
	missionService := services.NewMissionService(deps, progressService, achievementService, moderationService)
	authService := services.NewAuthService(deps, cfg, moderationService)

	// Reminders live in memory; rebuild them from storage
	if n, err := missionService.RestoreReminders(); err != nil {
		slog.Error("failed to restore reminders", "error", err)
	} else {
		slog.Info("reminders restored", "count", n)
	}
	scheduler.Start()

	runner := jobs.NewRunner(cfg, database.DB, socialService)
	if err := runner.Register(); err != nil {
		slog.Error("invalid job schedule", "error", err, "expiry_schedule", cfg.ExpirySchedule)
		os.Exit(1)
	}
	runner.Start()

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Health:       handlers.NewHealthHandler(database.DB, cfg.DBDriver),
		Moderation:   handlers.NewModerationHandler(moderationService),
		Missions:     handlers.NewMissionHandler(missionService),
		Progress:     handlers.NewProgressHandler(progressService),
		Social:       handlers.NewSocialHandler(socialService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Achievement:  handlers.NewAchievementHandler(achievementService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "driver", cfg.DBDriver, "timezone", cfg.Location().String())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	<-runner.Stop().Done()
	<-scheduler.Stop().Done()
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"trace_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}
