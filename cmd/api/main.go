package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/config"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/database"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/handler"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/logger"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/middleware"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/repository/postgres"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/repository/rest"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/session"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/telemetry"
	"github.com/dafibh/bizdesk/bizdesk-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Setup(false, "info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Setup(cfg.IsProduction(), cfg.LogLevel)

	shutdownTracing, err := telemetry.Setup(cfg.TracingEnabled, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tracing")
	}

	// Initialize repositories for the selected backend
	repos, closeBackend, err := openBackend(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", string(cfg.Backend)).Msg("Failed to initialize backend")
	}
	defer closeBackend()

	// Initialize WebSocket hub and session store
	hub := websocket.NewHub()
	store := session.NewStore(repos, hub, cfg.Session.TTL)
	defer store.Stop()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	// Initialize handlers
	accountHandler := handler.NewAccountHandler()
	expenseHandler := handler.NewExpenseHandler()
	ownerHandler := handler.NewOwnerHandler()
	sessionHandler := handler.NewSessionHandler()
	wsHandler := handler.NewWebSocketHandler(hub, store, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.SessionHeader},
		ExposeHeaders:    []string{middleware.SessionHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "ok",
			"backend":  cfg.Backend,
			"sessions": store.Len(),
			"clients":  hub.TotalClientCount(),
		})
	})

	// Register API routes
	handler.RegisterRoutes(e,
		middleware.Session(store),
		middleware.RateLimitMiddleware(rateLimiter),
		accountHandler,
		expenseHandler,
		ownerHandler,
		sessionHandler,
		wsHandler,
	)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", string(cfg.Backend)).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Server exited")
}

// openBackend builds the repositories of the configured data service. The
// returned func releases its resources.
func openBackend(ctx context.Context, cfg *config.Config) (session.Repositories, func(), error) {
	switch cfg.Backend {
	case config.BackendREST:
		client, err := rest.NewClient(cfg.REST.URL, cfg.REST.AnonKey, cfg.REST.Timeout)
		if err != nil {
			return session.Repositories{}, nil, err
		}
		log.Info().Str("url", cfg.REST.URL).Msg("Using REST data service")
		return session.Repositories{
			Accounts: rest.NewExpenseAccountRepository(client),
			Expenses: rest.NewExpenseRepository(client),
			People:   rest.NewPersonRepository(client),
		}, func() {}, nil
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Database.URL); err != nil {
			return session.Repositories{}, nil, err
		}
		log.Info().Msg("Database migrations applied")
	}

	pool, err := database.Connect(ctx, cfg.Database, cfg.TracingEnabled)
	if err != nil {
		return session.Repositories{}, nil, err
	}
	log.Info().Msg("Connected to database")

	return session.Repositories{
		Accounts: postgres.NewExpenseAccountRepository(pool),
		Expenses: postgres.NewExpenseRepository(pool),
		People:   postgres.NewPersonRepository(pool),
	}, pool.Close, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("session_id", res.Header().Get(middleware.SessionHeader)).
				Msg("request")

			return nil
		}
	}
}
