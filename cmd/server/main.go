package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/infrastructure/auth"
	"github.com/dropship/backend/internal/infrastructure/cache"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/infrastructure/persistence"
	"github.com/dropship/backend/internal/infrastructure/platform"
	"github.com/dropship/backend/internal/infrastructure/telemetry"
	"github.com/dropship/backend/internal/interfaces/http/handler"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/dropship/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Bootstrap logger until the OTLP log bridge exists
	bootLog, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	providers, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting dropship backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.Enabled() {
		providers.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.InstrumentGORM(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	platformRepo := persistence.NewGormPlatformRepository(db.DB)
	shopRepo := persistence.NewGormShopRepository(db.DB)
	channelRepo := persistence.NewGormChannelRepository(db.DB)
	sourceItemRepo := persistence.NewGormSourceItemRepository(db.DB)
	channelItemRepo := persistence.NewGormChannelItemRepository(db.DB)
	matchRepo := persistence.NewGormMatchRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	purchaseRepo := persistence.NewGormPlannedPurchaseRepository(db.DB)

	registry, err := newAdapterRegistry(cfg.Platform)
	if err != nil {
		log.Fatal("Failed to register platform adapters", zap.Error(err))
	}
	// Platforms stored with an adapter key this build does not provide cannot be served
	keys, err := platformRepo.ListAdapterKeys(context.Background())
	if err != nil {
		log.Fatal("Failed to list platform adapter keys", zap.Error(err))
	}
	if err := registry.Validate(keys); err != nil {
		log.Fatal("Platform configuration references unknown adapters", zap.Error(err))
	}

	gateway, err := platform.NewGateway(platform.GatewayConfig{
		CallTimeout:     cfg.Platform.CallTimeout,
		MaxResponseSize: cfg.Platform.MaxResponseSize,
	}, registry, nil, providers.Meter(telemetry.TracerName), log)
	if err != nil {
		log.Fatal("Failed to create platform gateway", zap.Error(err))
	}

	var lockCfg cache.RedisConfig
	if cfg.Redis.Enabled() {
		lockCfg = cache.RedisConfig{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	}
	lock := cache.NewDispatchLock(lockCfg, log)

	stores := fulfillmentapp.NewStoreDirectory(shopRepo, channelRepo, platformRepo)
	catalogService := fulfillmentapp.NewCatalogService(sourceItemRepo, channelItemRepo)
	matchService := fulfillmentapp.NewMatchService(catalogService, matchRepo, orderRepo, purchaseRepo, log)
	orderService := fulfillmentapp.NewOrderService(orderRepo, purchaseRepo, stores, gateway, log)
	dispatchService := fulfillmentapp.NewDispatchService(orderRepo, purchaseRepo, stores, gateway, lock, cfg.Dispatch.LockTTL, log)
	reconciliationService := fulfillmentapp.NewReconciliationService(matchRepo, stores, gateway, cfg.Dispatch.SyncConcurrency, log)
	platformService := fulfillmentapp.NewPlatformService(platformRepo, shopRepo, channelRepo, stores, registry, gateway, log)

	middleware.SetupValidator()

	engine := router.NewEngine(router.EngineConfig{
		ServiceName:      cfg.Telemetry.ServiceName,
		MaxBodyBytes:     cfg.HTTP.MaxBodySize,
		CORS:             corsConfig(cfg.HTTP),
		TracingEnabled:   providers.Enabled(),
		ProfilingEnabled: profiler.Enabled(),
	}, log)
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, func(ctx context.Context) error {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	jwtService := auth.NewJWTService(cfg.JWT)
	router.NewRouter(engine, router.WithMiddleware(
		middleware.JWTAuthMiddleware(jwtService),
		middleware.SpanAttributes(),
	)).Register(
		handler.NewPlatformHandler(platformService),
		handler.NewCatalogHandler(catalogService),
		handler.NewMatchHandler(matchService, reconciliationService),
		handler.NewOrderHandler(orderService, matchService, dispatchService),
	).Setup()

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := lock.Close(); err != nil {
		log.Error("Error closing dispatch lock", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newAdapterRegistry registers the in-process adapters enabled in configuration
func newAdapterRegistry(cfg config.PlatformConfig) (*platform.Registry, error) {
	registry := platform.NewRegistry()
	for _, key := range cfg.EnabledAdapters {
		switch key {
		case platform.ShopifyAdapterKey:
			adapter, err := platform.NewShopifyAdapter(&platform.ShopifyConfig{
				APIVersion:     cfg.Shopify.APIVersion,
				BaseURL:        cfg.Shopify.BaseURL,
				TimeoutSeconds: cfg.Shopify.TimeoutSeconds,
				LocationID:     cfg.Shopify.LocationID,
			})
			if err != nil {
				return nil, err
			}
			if err := registry.Register(key, adapter); err != nil {
				return nil, err
			}
		default:
			return nil, errors.New("unknown adapter in platform.enabled_adapters: " + key)
		}
	}
	return registry, nil
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}
