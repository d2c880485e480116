package handlers

import (
	"time"

	"tokodash/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// AppConfig configures the catalog HTTP app.
type AppConfig struct {
	// UploadDir is served under /uploads when set.
	UploadDir string
	// RequestLog enables the fiber request logger.
	RequestLog bool
	// BodyLimit caps request bodies, uploads included. Zero keeps the fiber default.
	BodyLimit int
}

// NewApp builds the fiber app serving the product API under /api.
func NewApp(service *services.ProductService, cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
	})

	if cfg.RequestLog {
		app.Use(logger.New())
	}

	api := app.Group("/api")
	NewProductHandler(service).RegisterRoutes(api)

	if cfg.UploadDir != "" {
		app.Static("/uploads", cfg.UploadDir)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app
}
