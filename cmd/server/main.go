package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/shopman/backend/internal/application/catalog"
	financeapp "github.com/shopman/backend/internal/application/finance"
	inventoryapp "github.com/shopman/backend/internal/application/inventory"
	partnerapp "github.com/shopman/backend/internal/application/partner"
	tradeapp "github.com/shopman/backend/internal/application/trade"
	domainstrategy "github.com/shopman/backend/internal/domain/shared/strategy"
	"github.com/shopman/backend/internal/infrastructure/cache"
	"github.com/shopman/backend/internal/infrastructure/config"
	"github.com/shopman/backend/internal/infrastructure/event"
	"github.com/shopman/backend/internal/infrastructure/logger"
	"github.com/shopman/backend/internal/infrastructure/persistence"
	"github.com/shopman/backend/internal/infrastructure/scheduler"
	"github.com/shopman/backend/internal/infrastructure/strategy"
	"github.com/shopman/backend/internal/infrastructure/telemetry"
	"github.com/shopman/backend/internal/interfaces/http/handler"
	"github.com/shopman/backend/internal/interfaces/http/middleware"
	"github.com/shopman/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

const snapshotInterval = time.Minute

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
	defer func() { _ = log.Sync() }()

	log.Info("Starting shop ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so the database plugin and services pick up the global providers
	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold)
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to create tables", zap.Error(err))
		}
		log.Info("Database schema created from models")
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        cfg.Database.Driver,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	// Redis is optional; without it idempotency, rate limits and job locks stay per instance
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable", zap.Error(err))
	}
	idempotencyStore, err := cache.NewIdempotencyStore(rdb, cfg.Idempotency, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	registry, err := strategy.NewRegistryWithDefaults(cfg.Ledger.BatchSplitPolicy)
	if err != nil {
		log.Fatal("Failed to register strategies", zap.Error(err))
	}
	batchStrategy, err := registry.GetBatchStrategy(registry.GetDefault(domainstrategy.StrategyTypeBatch))
	if err != nil {
		log.Fatal("Failed to resolve batch strategy", zap.Error(err))
	}
	allocator, err := registry.GetAllocationStrategy(registry.GetDefault(domainstrategy.StrategyTypeAllocation))
	if err != nil {
		log.Fatal("Failed to resolve allocation strategy", zap.Error(err))
	}
	log.Info("Ledger strategies",
		zap.String("batch", batchStrategy.Name()),
		zap.Strings("batch_available", registry.ListBatchStrategies()),
		zap.String("allocation", allocator.Name()),
	)

	// Event bus with metric and warning subscribers
	bus := event.NewInMemoryEventBus(log)
	ledgerMetrics, err := telemetry.NewLedgerMetrics(mp.Meter("shopman/ledger"), log)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	bus.Subscribe(event.NewMetricsSubscriber(ledgerMetrics))
	bus.Subscribe(event.NewLowStockWarner(log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if mp.IsEnabled() {
		ledgerMetrics.StartSnapshotCollection(ctx, telemetry.NewGormSnapshotProvider(db.DB), snapshotInterval)
	}

	// Services
	scope := persistence.NewGormTransactionScope(db.DB)
	repos := scope.Repos()
	stockLedger := inventoryapp.NewStockLedger(batchStrategy, log)
	billLedger := financeapp.NewBillLedger(cfg.Ledger.BillDueDays, log)

	categoryService := catalogapp.NewCategoryService(repos.Categories())
	productService := catalogapp.NewProductService(repos.Products(), repos.Categories(), repos.Suppliers(), log)
	productService.SetDefaults(cfg.Ledger.DefaultMinStockLevel, cfg.Ledger.ExpiryWarningDays)
	supplierService := partnerapp.NewSupplierService(repos.Suppliers())
	customerService := partnerapp.NewCustomerService(repos.Customers(), repos.Sales(), repos.DuePayments(), log)
	inventoryService := inventoryapp.NewInventoryService(scope, stockLedger, log)
	inventoryService.SetExpiryHorizon(cfg.Ledger.ExpiryWarningDays)
	purchaseService := tradeapp.NewPurchaseService(scope, stockLedger, billLedger, log)
	purchaseReturnService := tradeapp.NewPurchaseReturnService(scope, stockLedger, billLedger, log)
	saleService := tradeapp.NewSaleService(scope, stockLedger, log)
	saleReturnService := tradeapp.NewSaleReturnService(scope, stockLedger, log)
	billService := financeapp.NewBillService(scope, billLedger, log)
	creditService := financeapp.NewCreditService(scope, allocator, log)

	productService.SetEventPublisher(bus)
	inventoryService.SetEventPublisher(bus)
	purchaseService.SetEventPublisher(bus)
	purchaseReturnService.SetEventPublisher(bus)
	saleService.SetEventPublisher(bus)
	saleReturnService.SetEventPublisher(bus)
	billService.SetEventPublisher(bus)
	creditService.SetEventPublisher(bus)

	// Overdue bill sweep
	var sweep *scheduler.DailyTrigger
	if cfg.Scheduler.OverdueSweepEnabled {
		var locker scheduler.Locker = scheduler.NewLocalLocker()
		if rdb != nil {
			locker = scheduler.NewRedisLocker(rdb)
		}
		sweep, err = scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{
			Hour:          cfg.Scheduler.SweepHour,
			Minute:        cfg.Scheduler.SweepMinute,
			CheckInterval: cfg.Scheduler.CheckInterval,
			LockTTL:       cfg.Scheduler.LockTTL,
		}, scheduler.NewOverdueSweepJob(billService, log), locker, log)
		if err != nil {
			log.Fatal("Failed to create overdue sweep", zap.Error(err))
		}
		sweep.Start(ctx)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := newEngine(cfg, log, rdb, mp)
	checks := []handler.HealthCheck{{Name: "database", Check: db.Ping}}
	if rdb != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	handler.NewSystemHandler(cfg.App.Name, version, checks...).RegisterRoutes(&engine.RouterGroup)

	var apiMiddleware []gin.HandlerFunc
	if cfg.Idempotency.Enabled {
		apiMiddleware = append(apiMiddleware, middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, log))
	}
	router.NewRouter(engine, router.WithAPIMiddleware(apiMiddleware...)).
		Register(
			handler.NewCategoryHandler(categoryService),
			handler.NewProductHandler(productService),
			handler.NewSupplierHandler(supplierService),
			handler.NewCustomerHandler(customerService, creditService),
			handler.NewInventoryHandler(inventoryService),
			handler.NewPurchaseHandler(purchaseService, purchaseReturnService),
			handler.NewSaleHandler(saleService, saleReturnService),
			handler.NewBillHandler(billService),
		).
		Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sweep != nil {
		if err := sweep.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping overdue sweep", zap.Error(err))
		}
	}
	ledgerMetrics.Stop()
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newEngine builds the gin engine with the global middleware chain.
// Order matters: the request id must exist before the logger reads it, and
// tracing wraps everything the handlers do.
func newEngine(cfg *config.Config, log *zap.Logger, rdb *redis.Client, mp *telemetry.MeterProvider) *gin.Engine {
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	healthPaths := []string{"/health", "/health/ready"}
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log, healthPaths...),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
			SkipPaths:   healthPaths,
		}),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(mp, log),
	)

	if cfg.HTTP.RateLimitEnabled {
		var limiter middleware.Limiter = middleware.NewMemoryLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		if rdb != nil {
			limiter = middleware.NewRedisLimiter(rdb, "shopman:ratelimit:", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		}
		engine.Use(middleware.RateLimit(limiter, log))
	}
	return engine
}
