package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"jobtrack/internal/config"
	"jobtrack/internal/metrics"
	"jobtrack/internal/store"
)

type Server struct {
	app    *fiber.App
	config *config.Config
	store  *store.Store
	logger *slog.Logger
}

func NewServer(cfg *config.Config, st *store.Store, logger *slog.Logger) *Server {
	app := fiber.New()

	// Inject config and store into context for handlers
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("store", st)
		return c.Next()
	})

	// Request logging + metrics middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		// Ensure a request ID exists
		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)
		if logger != nil {
			c.Locals("logger", logger)
		}

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()

		metrics.RecordRequest(method, path, status, latency.Milliseconds())

		if logger != nil {
			logger.Info("request",
				"request_id", reqID,
				"method", method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}

		return err
	})

	// Redis client for rate limiting and health checks
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		if opt, err := redis.ParseURL(cfg.Redis.URL); err == nil {
			rdb = redis.NewClient(opt)
		}
	}

	// Health endpoints
	app.Get("/healthz", func(c *fiber.Ctx) error {
		// Shallow health: process is up
		if c.Query("deep") != "true" {
			return c.JSON(fiber.Map{"status": "ok"})
		}

		// Deep health: check DB and Redis connectivity.
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := st.DB.PingContext(ctx); err != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = "error"
			} else {
				redisStatus = "ok"
			}
		}

		status := "ok"
		if dbStatus != "ok" || redisStatus == "error" {
			status = "error"
		}

		return c.JSON(fiber.Map{
			"status": status,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	})

	// Prometheus-style metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Type("text/plain")
		return c.SendString(metrics.Export())
	})

	// Auth routes sit outside the authenticated group.
	auth := app.Group("/auth")
	auth.Post("/register", registerHandler)
	auth.Post("/login", loginHandler)
	auth.Post("/logout", logoutHandler)
	auth.Get("/oidc/start", oidcLoginStartHandler)
	auth.Get("/oidc/callback", oidcCallbackHandler)

	authMw := authMiddleware(cfg, st)
	var rateMw fiber.Handler
	if rdb != nil {
		rateMw = rateLimitMiddleware(cfg, rdb)
	} else {
		rateMw = func(c *fiber.Ctx) error { return c.Next() }
	}

	v1 := app.Group("/v1", authMw, rateMw)
	registerV1Routes(v1)

	admin := app.Group("/admin", authMw, adminOnlyMiddleware)
	registerAdminRoutes(admin)

	registerWebUIRoutes(app)

	return &Server{
		app:    app,
		config: cfg,
		store:  st,
		logger: logger,
	}
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.app.Listen(addr)
}

func registerV1Routes(group fiber.Router) {
	group.Get("/me", meHandler)

	group.Get("/companies", companiesListHandler)
	group.Post("/companies", companyCreateHandler)
	group.Get("/companies/:id", companyDetailHandler)
	group.Patch("/companies/:id", companyUpdateHandler)
	group.Delete("/companies/:id", companyDeleteHandler)

	group.Get("/references", referencesListHandler)
	group.Post("/references", referenceCreateHandler)
	group.Get("/references/:id", referenceDetailHandler)
	group.Patch("/references/:id", referenceUpdateHandler)
	group.Delete("/references/:id", referenceDeleteHandler)

	group.Get("/applications", applicationsListHandler)
	group.Post("/applications", applicationCreateHandler)
	group.Get("/applications/:id", applicationDetailHandler)
	group.Patch("/applications/:id", applicationUpdateHandler)
	group.Delete("/applications/:id", applicationDeleteHandler)
	group.Get("/applications/:id/transitions", applicationTransitionsHandler)
	group.Post("/applications/:id/transitions", applicationTransitionHandler)
	group.Get("/applications/:id/history", applicationHistoryHandler)
}

func registerAdminRoutes(group fiber.Router) {
	group.Get("/users", adminUsersListHandler)
	group.Get("/api-keys", adminAPIKeysListHandler)
	group.Post("/api-keys", adminAPIKeyCreateHandler)
	group.Delete("/api-keys/:id", adminAPIKeyDeleteHandler)
}
