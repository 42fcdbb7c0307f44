package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/config"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Handlers groups everything Setup mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Moderation   *handlers.ModerationHandler
	Missions     *handlers.MissionHandler
	Progress     *handlers.ProgressHandler
	Social       *handlers.SocialHandler
	Notification *handlers.NotificationHandler
	Achievement  *handlers.AchievementHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Delete("/auth/account", jwt, h.Auth.DeleteAccount)
	api.Get("/me", jwt, h.Auth.Me)

	missions := api.Group("/missions", jwt)
	missions.Get("/", h.Missions.List)
	missions.Post("/", h.Missions.Create)
	missions.Get("/global", h.Missions.ListGlobal)
	missions.Put("/:id", h.Missions.Update)
	missions.Delete("/:id", h.Missions.Delete)
	missions.Post("/:id/complete", h.Missions.Complete)
	missions.Put("/:id/select", h.Missions.Select)

	progress := api.Group("/progress", jwt)
	progress.Get("/logs", h.Progress.Logs)
	progress.Post("/streak/rebuild", h.Progress.RebuildStreak)

	friends := api.Group("/friends", jwt)
	friends.Get("/", h.Social.ListFriends)
	friends.Get("/search", h.Social.Search)
	friends.Delete("/:id", h.Social.RemoveFriend)
	friends.Put("/:id/favorite", h.Social.SetFavorite)

	friendRequests := api.Group("/friend-requests", jwt)
	friendRequests.Get("/", h.Social.ListFriendRequests)
	friendRequests.Post("/", h.Social.SendFriendRequest)
	friendRequests.Post("/:id/accept", h.Social.AcceptFriendRequest)
	friendRequests.Post("/:id/decline", h.Social.DeclineFriendRequest)
	friendRequests.Post("/:id/cancel", h.Social.CancelFriendRequest)

	missionRequests := api.Group("/mission-requests", jwt)
	missionRequests.Get("/", h.Social.ListMissionRequests)
	missionRequests.Post("/", h.Social.SendMissionRequest)
	missionRequests.Post("/:id/accept", h.Social.AcceptMissionRequest)
	missionRequests.Post("/:id/decline", h.Social.DeclineMissionRequest)
	missionRequests.Post("/:id/cancel", h.Social.CancelMissionRequest)

	notifications := api.Group("/notifications", jwt)
	notifications.Get("/", h.Notification.List)
	notifications.Put("/read", h.Notification.MarkAllRead)
	notifications.Put("/:id/read", h.Notification.MarkRead)

	api.Get("/badges", jwt, h.Notification.Badges)
	api.Delete("/badges/:key", jwt, h.Notification.ClearBadge)

	achievements := api.Group("/achievements", jwt)
	achievements.Get("/", h.Achievement.List)
	achievements.Get("/catalog", h.Achievement.Catalog)
	achievements.Put("/:id/read", h.Achievement.MarkRead)

	blocks := api.Group("/blocks", jwt)
	blocks.Get("/", h.Moderation.ListBlocked)
	blocks.Post("/", h.Moderation.BlockUser)
	blocks.Delete("/:id", h.Moderation.UnblockUser)

	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Post("/global-missions", h.Missions.PublishGlobal)
}
