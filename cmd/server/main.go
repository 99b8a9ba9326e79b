package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	approvalapp "github.com/docflow/backend/internal/application/approval"
	docapp "github.com/docflow/backend/internal/application/document"
	eventapp "github.com/docflow/backend/internal/application/event"
	"github.com/docflow/backend/internal/domain/approval"
	"github.com/docflow/backend/internal/domain/ledger"
	"github.com/docflow/backend/internal/infrastructure/auth"
	"github.com/docflow/backend/internal/infrastructure/cache"
	"github.com/docflow/backend/internal/infrastructure/config"
	"github.com/docflow/backend/internal/infrastructure/event"
	"github.com/docflow/backend/internal/infrastructure/logger"
	"github.com/docflow/backend/internal/infrastructure/persistence"
	"github.com/docflow/backend/internal/infrastructure/telemetry"
	"github.com/docflow/backend/internal/interfaces/http/handler"
	"github.com/docflow/backend/internal/interfaces/http/middleware"
	"github.com/docflow/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			DocFlow Backend API
//	@version		1.0
//	@description	Multi-tenant document workflow and posting engine
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/docflow/backend
//	@contact.email	support@docflow.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting DocFlow Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize telemetry providers (no-op when disabled)
	telemetryCtx := context.Background()
	meterProvider, err := telemetry.NewMeterProvider(telemetryCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	tracerProvider, err := telemetry.NewTracerProvider(telemetryCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// OTLP log export: bridge zap records to the collector alongside
	// stdout logging
	loggerProvider, err := telemetry.NewLoggerProvider(telemetryCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          zapcore.InfoLevel,
		})
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelCore)
		}))
	}

	// Database query tracing via otelgorm
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Database pool and query metrics
	if meterProvider.IsEnabled() {
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("docflow/db"), telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Warn("Failed to initialize database metrics", zap.Error(err))
		} else {
			if sqlDB, err := db.DB.DB(); err == nil {
				dbMetrics.SetSQLDB(sqlDB)
				dbMetrics.StartPoolStatsCollection(telemetryCtx)
			}
			if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
				log.Warn("Failed to register database metrics plugin", zap.Error(err))
			}
		}
	}

	// Initialize repositories
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	historyRepo := persistence.NewGormStatusHistoryRepository(db.DB)
	approvalRepo := persistence.NewGormApprovalRepository(db.DB)
	approvalLevelRepo := persistence.NewGormApprovalLevelRepository(db.DB)
	numberSettingRepo := persistence.NewGormNumberSettingRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Unit of work binds workflow mutations and outbox writes to one transaction
	uow := persistence.NewGormUnitOfWork(db.DB, outboxPublisher)

	// Domain services
	jwtService := auth.NewJWTService(cfg.JWT)
	roleDirectory := auth.NewClaimsRoleDirectory()
	approvalEngine := approval.NewEngine(roleDirectory)
	poster := ledger.NewPoster(
		ledger.NewSalesInvoiceRule("finance.sales_invoice"),
		ledger.NewCreditNoteRule("finance.credit_note"),
		ledger.NewJournalRule("finance.journal"),
	)

	// Application services
	workflowService := docapp.NewWorkflowService(
		uow,
		documentRepo,
		historyRepo,
		approvalRepo,
		approvalLevelRepo,
		numberSettingRepo,
		ledgerRepo,
		approvalEngine,
		poster,
		log,
	)
	levelService := approvalapp.NewLevelService(approvalLevelRepo, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Business metrics (document throughput, approval latency, outbox depth)
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:          meterProvider.Meter("docflow/business"),
			Logger:         log,
			OutboxProvider: event.NewOutboxMetricsAdapter(outboxRepo),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(telemetryCtx, time.Minute)
			workflowService.SetBusinessMetrics(businessMetrics)
		}
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store guards against duplicate deliveries from the outbox
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Document lifecycle events -> structured audit log
	lifecycleHandler := event.NewIdempotentHandler(eventapp.NewLifecycleLogHandler(log), idempotencyStore, log)
	eventBus.Subscribe(lifecycleHandler)

	log.Info("Event handlers registered",
		zap.Strings("lifecycle_events", lifecycleHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery
	// The outbox processor reads events from the outbox_entries table and publishes them to the event bus
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			HandlerTimeout:   cfg.Event.HandlerTimeout,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  cfg.Event.CleanupInterval,
			ReclaimAfter:     cfg.Event.ReclaimAfter,
			ReclaimInterval:  cfg.Event.ReclaimInterval,
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Initialize HTTP handlers
	documentHandler := handler.NewDocumentHandler(workflowService)
	numberSettingHandler := handler.NewNumberSettingHandler(workflowService)
	approvalLevelHandler := handler.NewApprovalLevelHandler(levelService)
	outboxHandler := handler.NewOutboxHandler(outboxService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. Tracing/Metrics - Observe requests
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Token revocation checks back onto Redis; auth degrades to
	// signature-only validation when Redis is unreachable
	var tokenBlacklist auth.TokenBlacklist
	if blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		log.Warn("Token blacklist unavailable, revocation checks disabled", zap.Error(err))
	} else {
		tokenBlacklist = blacklist
	}

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Tenant resolution runs after JWT auth so token claims win over the
	// X-Tenant-ID header
	engine.Use(middleware.TenantMiddlewareWithConfig(middleware.TenantMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Required: true,
		Logger:   log,
	}))

	// Document workflow routes
	documentRoutes := router.NewDomainGroup("documents", "/documents")
	documentRoutes.POST("", documentHandler.Create)
	documentRoutes.GET("", documentHandler.List)
	documentRoutes.GET("/by-number/:number", documentHandler.GetByNumber)
	documentRoutes.GET("/:id", documentHandler.GetByID)
	documentRoutes.DELETE("/:id", documentHandler.Delete)
	documentRoutes.POST("/:id/lines", documentHandler.AddLine)
	documentRoutes.DELETE("/:id/lines/:line_id", documentHandler.RemoveLine)
	documentRoutes.POST("/:id/submit", documentHandler.Submit)
	documentRoutes.POST("/:id/decide", documentHandler.Decide)
	documentRoutes.POST("/:id/post", documentHandler.Post)
	documentRoutes.POST("/:id/cancel", documentHandler.Cancel)
	documentRoutes.GET("/:id/history", documentHandler.GetStatusHistory)
	documentRoutes.GET("/:id/approvals", documentHandler.GetApprovals)
	documentRoutes.GET("/:id/relations", documentHandler.GetRelations)

	// Workflow configuration writes require an elevated permission claim
	configPermission := middleware.RequirePermissionWithConfig("workflow:configure", middleware.PermissionConfig{Logger: log})

	// Numbering configuration routes
	numberSettingRoutes := router.NewDomainGroup("number-settings", "/number-settings")
	numberSettingRoutes.PUT("", configPermission, numberSettingHandler.Upsert)
	numberSettingRoutes.GET("/:type_key", numberSettingHandler.Get)

	// Approval pipeline configuration routes
	approvalLevelRoutes := router.NewDomainGroup("approval-levels", "/approval-levels")
	approvalLevelRoutes.PUT("", configPermission, approvalLevelHandler.SaveLevels)
	approvalLevelRoutes.GET("/:type_key", approvalLevelHandler.GetLevels)

	// Outbox operations routes (dispatcher monitoring and dead letter recovery)
	outboxRoutes := router.NewDomainGroup("outbox", "/outbox")
	outboxRoutes.GET("/stats", outboxHandler.GetStats)
	outboxRoutes.GET("/dead-letter", outboxHandler.GetDeadLetterEntries)
	outboxRoutes.POST("/dead-letter/retry-all", configPermission, outboxHandler.RetryAllDeadEntries)
	outboxRoutes.POST("/dead-letter/:id/retry", configPermission, outboxHandler.RetryDeadEntry)
	outboxRoutes.GET("/entries/:id", outboxHandler.GetEntry)
	outboxRoutes.GET("/documents/:document_id", outboxHandler.GetEntriesForDocument)

	// System routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(documentRoutes).
		Register(numberSettingRoutes).
		Register(approvalLevelRoutes).
		Register(outboxRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
