package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/api/handlers"
	"github.com/shopchat/shopchat-backend/internal/api/middleware"
)

// Deps collects everything route setup needs.
type Deps struct {
	Chat      *handlers.ChatHandler
	History   *handlers.HistoryHandler
	JWTSecret string
	Logger    *logrus.Logger
}

// SetupRoutes registers the public API surface.
func SetupRoutes(app *fiber.App, deps Deps) {
	app.Use(middleware.RequestContext(deps.JWTSecret, deps.Logger))
	app.Use(middleware.HTTPRateLimit())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	chat := v1.Group("/chat")
	chat.Post("/session", deps.Chat.CreateSession)
	chat.Delete("/session", deps.Chat.EndSession)
	chat.Post("/message", deps.Chat.SendMessage)
	chat.Get("/history", deps.History.GetHistory)
}
