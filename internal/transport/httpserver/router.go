// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"media-catalog-service/internal/app/service"
	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/infra/cache"
	"media-catalog-service/internal/registry"
	"media-catalog-service/internal/transport/httpserver/handler"
	"media-catalog-service/internal/transport/httpserver/middleware"
	"media-catalog-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port      int
	BodyLimit int
	Debug     bool
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg ServerConfig,
	catalogSvc *service.CatalogService,
	loadMoreSvc *service.LoadMoreService,
	seasonSvc *service.SeasonService,
	reg *registry.Registry,
	store *cache.Store,
	kv domain.KeyValueStore,
	v *validator.Validator,
	logger *zap.Logger,
) *Server {
	// Template engine for dashboard
	engine := html.New("./web/templates", ".html")
	if cfg.Debug {
		engine.Reload(true)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "media-catalog-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        engine,
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// for Kubernetes probes to work even during high load
	app.Use(middleware.NewHealthCheck(kv))

	// Global middleware
	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(cors.New())
	app.Use(compress.New())

	// Static files
	app.Static("/static", "./web/static")

	// Create handlers
	catalogHandler := handler.NewCatalogHandler(catalogSvc, loadMoreSvc, v, logger)
	seasonHandler := handler.NewSeasonHandler(seasonSvc, v, logger)
	adminHandler := handler.NewAdminHandler(reg, store, logger)
	dashboardHandler := handler.NewDashboardHandler(reg, store, logger)

	// Register routes
	registerRoutes(app, catalogHandler, seasonHandler, adminHandler, dashboardHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	catalogHandler *handler.CatalogHandler,
	seasonHandler *handler.SeasonHandler,
	adminHandler *handler.AdminHandler,
	dashboardHandler *handler.DashboardHandler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	// Dashboard (HTML)
	app.Get("/dashboard", dashboardHandler.Render)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	// API v1 routes
	v1 := app.Group("/api/v1")

	// Catalogs
	catalogs := v1.Group("/catalogs")
	catalogs.Get("/", catalogHandler.GetAllCatalogs)
	catalogs.Post("/load-more", catalogHandler.LoadMoreCatalogItems)
	catalogs.Get("/:type", catalogHandler.GetCatalog)

	// Search
	v1.Get("/search", catalogHandler.Search)

	// Media detail and detail cache
	media := v1.Group("/media")
	media.Get("/:id", catalogHandler.GetMediaDetail)
	media.Get("/:id/cache", catalogHandler.GetCacheStatus)
	media.Delete("/:id/cache", catalogHandler.InvalidateMediaCache)

	// People and filmography load-more
	v1.Post("/people/load-more", catalogHandler.LoadMorePeople)
	v1.Post("/filmography/load-more", catalogHandler.LoadMoreFilmography)

	// Series seasons and episodes
	series := v1.Group("/series")
	series.Get("/:id/seasons", seasonHandler.GetAllSeasons)
	series.Get("/:id/seasons/:number", seasonHandler.GetSeason)
	series.Get("/:id/seasons/:number/episodes/:episode", seasonHandler.GetEpisode)

	// Admin routes
	admin := v1.Group("/admin")
	admin.Get("/providers", adminHandler.GetProviders)
	admin.Get("/cache/stats", adminHandler.GetCacheStats)
	admin.Post("/cache/sweep", adminHandler.SweepCache)
	admin.Post("/cache/clear", adminHandler.ClearCache)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		// Log based on status code - 404s are common and not server errors
		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		case code >= 400:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Error("unhandled error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  errorCode(code),
		})
	}
}

// errorCode maps an HTTP status onto the machine-readable code
// carried in error payloads.
func errorCode(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return "NOT_FOUND"
	case status == fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case status == fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	case status >= 500:
		return "INTERNAL_ERROR"
	case status >= 400:
		return "BAD_REQUEST"
	default:
		return "UNHANDLED_ERROR"
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
