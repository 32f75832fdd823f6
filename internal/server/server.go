package server

import (
	"context"
	"fmt"

	"legal-analyzer-be/internal/bootstrap"
	"legal-analyzer-be/internal/config"
	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
	logger    logger.ILogger
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := NewApp(cfg, container.Logger)
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
		logger:    container.Logger,
	}
}

// NewApp builds the fiber app with the shared middleware stack and no routes.
func NewApp(cfg *config.Config, log logger.ILogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		BodyLimit:             (cfg.Limits.MaxFileSizeMB + 1) * 1024 * 1024,
		ErrorHandler:          serverutils.ErrorHandler(log),
		DisableStartupMessage: !cfg.App.Debug,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.App.Debug}))

	// Credentials cannot be combined with a wildcard origin.
	origins := cfg.CorsOrigins()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: origins != "*" && origins != "",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		MaxAge:           600,
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	return app
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.logger.Info("server", fmt.Sprintf("Server is running on http://localhost:%s", s.cfg.App.Port), nil)
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.SystemController.RegisterRoutes(app)
	c.DocumentController.RegisterRoutes(app)
	c.ChatController.RegisterRoutes(app)
	c.AnalysisController.RegisterRoutes(app)
}
