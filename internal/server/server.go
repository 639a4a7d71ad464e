// Package server contains the HTTP handlers and routing for the jobcrm API.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobcrm/internal/cache"
	"jobcrm/internal/config"
	"jobcrm/internal/database"
	"jobcrm/internal/featureflags"
	"jobcrm/internal/middleware"
	"jobcrm/internal/models"
	"jobcrm/internal/repository"
	"jobcrm/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultCreateApplicationLimit = 30

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	profiles     *service.ProfileService
	catalog      *service.CatalogService
	applications *service.ApplicationService
	timeline     *service.TimelineService
}

// NewServer connects to the database and Redis and builds a Server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// nil when Redis is unreachable
	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching and rate limiting then degrade to no-ops.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	profileRepo := repository.NewProfileRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	guard := service.NewGuard(profileRepo)
	catalog := service.NewCatalogService(db, repository.NewCatalogRepository(db))

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("jobcrm-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		profiles:       service.NewProfileService(db, profileRepo),
		catalog:        catalog,
		applications:   service.NewApplicationService(db, guard, catalog, applicationRepo),
		timeline:       service.NewTimelineService(db, guard, applicationRepo, repository.NewEventRepository(db)),
	}, nil
}

// NewApp returns a fiber app with the middleware stack and every route installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "jobcrm API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	// after requestid and context middleware
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		MaxAge:       86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api", middleware.AuthRequired(s.config.JWTSecret, s.redis))

	api.Get("/feature-flags", s.GetFeatureFlags)

	profile := api.Group("/profile")
	profile.Post("/", s.CreateProfile)
	profile.Get("/me", s.GetMyProfile)
	profile.Patch("/me", s.UpdateMyProfile)

	createLimit := s.config.CreateApplicationRateLimit
	if createLimit <= 0 {
		createLimit = defaultCreateApplicationLimit
	}

	applications := api.Group("/applications")
	applications.Get("/", s.ListApplications)
	// fixed segments before /:id
	applications.Get("/all", s.ListAllApplications)
	applications.Get("/summary", s.FeatureRequired(featureflags.ApplicationSummary), s.GetApplicationSummary)
	applications.Post("/", middleware.RateLimit(s.redis, createLimit, time.Minute, "create_application"), s.CreateApplication)
	applications.Get("/:id/events", s.ListEvents)
	applications.Post("/:id/events", s.AppendEvent)
	applications.Patch("/:id/status", s.FeatureRequired(featureflags.StatusTransitions), s.TransitionApplication)
	applications.Get("/:id", s.GetApplication)

	api.Delete("/events/:id", s.RemoveEvent)

	companies := api.Group("/companies", s.FeatureRequired(featureflags.CatalogBrowse))
	companies.Get("/", s.ListCompanies)
	companies.Get("/:id/positions", s.ListCompanyPositions)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports unhealthy unless both the database and Redis answer a ping.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// FeatureRequired hides a route behind a feature flag. Disabled routes answer 404.
func (s *Server) FeatureRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := middleware.CurrentUser(c)
		if !s.featureFlags.Enabled(flag, userID) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Route", c.Path()))
		}
		return c.Next()
	}
}

// errorHandler answers errors that escape a handler.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
	return models.RespondWithAppError(c, err)
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP listener and closes the database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
