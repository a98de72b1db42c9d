package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/scrumify/server/internal/module/auth"
	"github.com/scrumify/server/internal/module/board"
	"github.com/scrumify/server/internal/module/notification"
	"github.com/scrumify/server/internal/module/project"
	"github.com/scrumify/server/internal/shared/cache"
	"github.com/scrumify/server/internal/shared/config"
	"github.com/scrumify/server/internal/shared/database"
	"github.com/scrumify/server/internal/shared/events"
	"github.com/scrumify/server/internal/shared/logger"
	"github.com/scrumify/server/internal/shared/metrics"
	"github.com/scrumify/server/internal/shared/middleware"
)

// App wires configuration, infrastructure and modules into a runnable
// HTTP server.
type App struct {
	config *config.Config
	log    *logger.Logger
	zap    *zap.Logger
	db     *gorm.DB
	redis  goredis.UniversalClient
	server *http.Server
}

// New builds the application from configuration.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	zapLog, err := logger.NewZapLogger(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	// Redis is optional: without it rate limiting and idempotency replay
	// are disabled but the application still works.
	var redisClient goredis.UniversalClient
	if cfg.Redis.Address != "" {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			zapLog.Warn("redis unavailable, rate limiting and idempotency disabled", zap.Error(err))
			redisClient = nil
		}
	}

	m := metrics.New(cfg.App.MetricsNamespace)

	bus := events.NewBus(zapLog)
	bus.Register(newMetricsHandler(m))

	// Modules
	jwtManager := auth.NewJWTManager(&auth.JWTConfig{
		Secret:            cfg.Auth.JWTSecret,
		AccessTokenExpiry: cfg.Auth.AccessTokenExpiry,
		Issuer:            cfg.Auth.Issuer,
	})

	authService := auth.NewService(auth.NewRepository(db), jwtManager, zapLog)
	authHandler := auth.NewHandler(authService)

	sender := buildSender(cfg, zapLog)

	projectService := project.NewService(project.NewRepository(db), sender, bus, zapLog)
	projectHandler := project.NewHandler(projectService)

	boardService := board.NewService(board.NewRepository(db), projectService, bus, zapLog)
	boardHandler := board.NewHandler(boardService)

	// Router
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(log))
	router.Use(middleware.Recovery(zapLog))
	router.Use(middleware.Metrics(m))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	if redisClient != nil && cfg.App.RateLimitPerMinute > 0 {
		limiter := cache.NewRateLimiter(redisClient)
		router.Use(middleware.RateLimit(limiter, middleware.RateLimitConfig{
			Limit:  cfg.App.RateLimitPerMinute,
			Window: time.Minute,
			KeyFunc: func(c *gin.Context) string {
				return c.ClientIP()
			},
		}))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	authHandler.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(jwtManager))

	authHandler.RegisterProtectedRoutes(protected)

	// Invitation writes replay their cached response when retried with
	// the same Idempotency-Key, so a flaky network cannot double-invite.
	invitationWrites := middleware.Idempotency(redisClient, middleware.DefaultIdempotencyConfig())
	projectHandler.RegisterRoutes(protected, invitationWrites)
	boardHandler.RegisterRoutes(protected)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		config: cfg,
		log:    log,
		zap:    zapLog,
		db:     db,
		redis:  redisClient,
		server: server,
	}, nil
}

// buildSender picks the email transport. Without an SMTP host the no-op
// sender logs invitations instead of delivering them.
func buildSender(cfg *config.Config, zapLog *zap.Logger) notification.Sender {
	if cfg.SMTP.Host == "" {
		return notification.NewNoOpEmailSender(zapLog)
	}

	smtp := notification.NewSMTPEmailSender(notification.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.User,
		Password:    cfg.SMTP.Password,
		FromAddress: cfg.SMTP.FromAddress,
		BaseURL:     cfg.App.BaseURL,
	}, zapLog)

	return notification.NewBreakerSender(smtp, zapLog)
}

// migrate creates or updates the database schema.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&auth.User{},
		&project.Project{},
		&project.Collaborator{},
		&board.Sprint{},
		&board.Column{},
		&board.Task{},
		&board.BacklogItem{},
	)
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (a *App) Start() error {
	a.zap.Info("server starting", zap.String("address", a.config.Server.Address))

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown stops the server and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	a.zap.Info("server shutting down")

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	if a.redis != nil {
		if err := cache.Close(a.redis); err != nil {
			a.zap.Warn("close redis", zap.Error(err))
		}
	}

	if err := database.Close(a.db); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	_ = a.zap.Sync()
	return nil
}
