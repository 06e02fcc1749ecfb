package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	documentapp "github.com/stocklane/backend/internal/application/document"
	identityapp "github.com/stocklane/backend/internal/application/identity"
	inventoryapp "github.com/stocklane/backend/internal/application/inventory"
	postingapp "github.com/stocklane/backend/internal/application/posting"
	"github.com/stocklane/backend/internal/infrastructure/auth"
	"github.com/stocklane/backend/internal/infrastructure/cache"
	"github.com/stocklane/backend/internal/infrastructure/config"
	"github.com/stocklane/backend/internal/infrastructure/event"
	"github.com/stocklane/backend/internal/infrastructure/logger"
	"github.com/stocklane/backend/internal/infrastructure/persistence"
	"github.com/stocklane/backend/internal/infrastructure/telemetry"
	"github.com/stocklane/backend/internal/interfaces/http/handler"
	"github.com/stocklane/backend/internal/interfaces/http/middleware"
	"github.com/stocklane/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting stocklane backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Telemetry
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	purchaseDocRepo := persistence.NewGormPurchaseDocumentRepository(db.DB)
	salesDocRepo := persistence.NewGormSalesDocumentRepository(db.DB)
	catalogRepo := persistence.NewGormCatalogEntryRepository(db.DB)
	approvalGate := persistence.NewCatalogApprovalGate(itemRepo, catalogRepo)

	serialScope := persistence.NewGormSerialTransactionScope(db.DB)
	postingScope := persistence.NewGormPostingTransactionScope(db.DB)

	// Event bus with the notification sink. Delivery failures are logged
	// and never fail the operation that raised the event.
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewNotificationHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	resolver := identityapp.NewResolver(membershipRepo, tenantRepo)

	stockService := inventoryapp.NewStockService(resolver, itemRepo, ledgerRepo)
	stockService.SetEventPublisher(eventBus)

	serialService := inventoryapp.NewSerialService(resolver, serialScope)
	serialService.SetReservationTTL(cfg.Reservation.TTL)
	serialService.SetEventPublisher(eventBus)

	documentService := documentapp.NewService(resolver, purchaseDocRepo, salesDocRepo, itemRepo)

	postingService := postingapp.NewService(resolver, postingScope, tenantRepo, approvalGate)
	postingService.SetEventPublisher(eventBus)

	// Stock projection cache
	if cfg.Redis.Enabled {
		stockCache, err := cache.NewRedisStockCache(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := stockCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		stockService.SetProjectionCache(stockCache)
		postingService.SetStockCache(stockCache)
		log.Info("Stock projection cache enabled", zap.Duration("ttl", cfg.Redis.CacheTTL))
	}

	if cfg.Telemetry.Enabled {
		postingMetrics, err := telemetry.NewPostingMetrics()
		if err != nil {
			log.Warn("Failed to initialize posting metrics", zap.Error(err))
		} else {
			postingService.SetMetrics(postingMetrics)
		}
	}

	jwtService := auth.NewJWTService(&cfg.JWT)

	// Handlers
	inventoryHandler := handler.NewInventoryHandler(stockService, serialService)
	documentHandler := handler.NewDocumentHandler(documentService)
	postingHandler := handler.NewPostingHandler(postingService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	}))

	inventoryRoutes := router.NewDomainGroup("/inventory")
	inventoryRoutes.POST("/items", inventoryHandler.CreateItem)
	inventoryRoutes.POST("/stock/adjust", inventoryHandler.AdjustStock)
	inventoryRoutes.GET("/stock/:id", inventoryHandler.CurrentStock)
	inventoryRoutes.POST("/serials/reserve", inventoryHandler.ReserveSerials)

	documentRoutes := router.NewDomainGroup("/documents")
	documentRoutes.POST("/purchases", documentHandler.CreatePurchase)
	documentRoutes.GET("/purchases", documentHandler.ListPurchases)
	documentRoutes.GET("/purchases/:id", documentHandler.GetPurchase)
	documentRoutes.POST("/sales", documentHandler.CreateSales)
	documentRoutes.GET("/sales", documentHandler.ListSales)
	documentRoutes.GET("/sales/:id", documentHandler.GetSales)
	documentRoutes.POST("/sales/:id/lines", documentHandler.AddSalesLine)

	postingRoutes := router.NewDomainGroup("/posting")
	postingRoutes.POST("/purchases/:id/approve", postingHandler.ApprovePurchase)
	postingRoutes.POST("/purchases/:id/post", postingHandler.PostPurchase)
	postingRoutes.POST("/sales/:id/finalize", postingHandler.FinalizeSale)
	postingRoutes.POST("/sales/:id/post", postingHandler.PostSale)
	postingRoutes.POST("/sales/:id/cancel", postingHandler.CancelSale)

	r.Register(inventoryRoutes).
		Register(documentRoutes).
		Register(postingRoutes)

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
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
