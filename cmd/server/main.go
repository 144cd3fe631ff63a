package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/agent"
	"github.com/shopchat/shopchat-backend/internal/api"
	"github.com/shopchat/shopchat-backend/internal/api/handlers"
	"github.com/shopchat/shopchat-backend/internal/audit"
	"github.com/shopchat/shopchat-backend/internal/cache"
	"github.com/shopchat/shopchat-backend/internal/commerce"
	"github.com/shopchat/shopchat-backend/internal/config"
	"github.com/shopchat/shopchat-backend/internal/database"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/proposal"
	"github.com/shopchat/shopchat-backend/internal/ratelimit"
	"github.com/shopchat/shopchat-backend/internal/repository/postgres"
	"github.com/shopchat/shopchat-backend/internal/sanitize"
	"github.com/shopchat/shopchat-backend/internal/session"
	"github.com/shopchat/shopchat-backend/internal/telemetry"
	"github.com/shopchat/shopchat-backend/internal/tools"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logrus.New()
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Shared key/value store: sessions, rate-limit windows, tool cache,
	// proposals.
	store := cache.NewMemoryStore()
	defer store.Close()

	// Repositories and audit trail
	historyRepo := postgres.NewHistoryRepository(db.DB)
	auditRepo := postgres.NewAuditRepository(db.DB)
	trail := audit.NewTrail(auditRepo, logger, cfg.Debug)

	// Request gates
	guard := session.NewGuard(store, cfg.Session.TTL, logger)
	limiter := ratelimit.NewLimiter(store, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	sanitizer := sanitize.New()

	// Commerce backend and tools
	backend := commerce.NewMemoryBackend(commerce.DefaultCatalog())
	proposals := proposal.NewManager(store, cfg.Proposal.Secret, cfg.Proposal.TTL, logger)
	toolService := tools.NewService(backend, backend, proposals, logger)
	dispatcher := tools.NewDispatcher(toolService.Registry(), cache.NewToolCache(store), logger)

	// Model client and orchestrator
	llm := gemini.NewClient(cfg.Gemini, logger)
	reporter := telemetry.NewReporter(cfg.Analytics.Endpoint, cfg.Analytics.Secret, logger)
	orchestrator := agent.NewOrchestrator(
		historyRepo,
		llm,
		dispatcher,
		backend,
		trail,
		reporter,
		logger,
		cfg.Agent.MaxSteps,
		cfg.Agent.Budget,
	)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ShopChat Backend",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	api.SetupRoutes(app, api.Deps{
		Chat:      handlers.NewChatHandler(guard, limiter, sanitizer, orchestrator, trail, logger),
		History:   handlers.NewHistoryHandler(historyRepo, logger),
		JWTSecret: cfg.Auth.JWTSecret,
		Logger:    logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.WithField("addr", addr).Info("ShopChat backend starting")
	if err := app.Listen(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
