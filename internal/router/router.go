package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mentorlens/mentorlens-api/internal/config"
	"github.com/mentorlens/mentorlens-api/internal/handler"
	"github.com/mentorlens/mentorlens-api/internal/middleware"
	"github.com/mentorlens/mentorlens-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SessionHandler  *handler.SessionHandler
	FeedbackHandler *handler.FeedbackHandler
	OwnerHandler    *handler.OwnerHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.SessionHandler != nil {
		sessions := api.Group("/sessions")
		sessions.Use(middleware.SubmissionRateLimit("session_upload", cfg.UploadRatePerMinute, time.Minute))
		deps.SessionHandler.Register(sessions)
	}

	if deps.FeedbackHandler != nil {
		feedback := api.Group("/feedback")
		feedback.Use(middleware.SubmissionRateLimit("feedback", cfg.UploadRatePerMinute, time.Minute))
		deps.FeedbackHandler.Register(feedback)
	}

	if deps.OwnerHandler != nil {
		owners := api.Group("/owners")
		deps.OwnerHandler.Register(owners)
	}

	app.Get("/metrics", observability.MetricsHandler())
}
