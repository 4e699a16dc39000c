package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appexport "github.com/finops/backend/internal/application/export"
	"github.com/finops/backend/internal/bootstrap"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/cache"
	"github.com/finops/backend/internal/infrastructure/config"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/finops/backend/internal/infrastructure/persistence"
	"github.com/finops/backend/internal/infrastructure/printing"
	"github.com/finops/backend/internal/infrastructure/storage"
	"github.com/finops/backend/internal/infrastructure/telemetry"
	"github.com/finops/backend/internal/interfaces/http/middleware"
	"github.com/finops/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

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

	ctx := context.Background()

	// Tracing and log export share the collector settings
	otelCfg := telemetry.ConfigFromSettings(cfg.Telemetry, version)
	tp, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = lp.Bridge(log)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfigFromSettings(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tp.EnableSpanProfiles()
	}

	log.Info("Starting finops backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQuery),
		logger.WithSQL(!cfg.App.IsProduction()),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = !cfg.App.IsProduction()
	if cfg.Database.SlowQuery > 0 {
		dbTracing.SlowQueryThresh = cfg.Database.SlowQuery
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics()
		pool, err := db.SQL()
		if err == nil {
			err = metrics.RegisterDBStats(pool, cfg.Database.DBName)
		}
		if err != nil {
			log.Warn("Database pool metrics unavailable", zap.Error(err))
		}
	}

	idempotency, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	renderer, err := printing.NewChromedpRenderer(printing.ConfigFromSettings(cfg.Printing, log))
	if err != nil {
		log.Fatal("Failed to create PDF renderer", zap.Error(err))
	}
	defer func() {
		_ = renderer.Close()
	}()

	exportOpts := []appexport.Option{
		appexport.WithLimits(cfg.Export.MaxRows, cfg.Export.ChunkSize),
		appexport.WithPDFRenderer(renderer),
	}
	if cfg.Export.Archive {
		store, err := newArchiveStore(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize export archive", zap.Error(err))
		}
		exportOpts = append(exportOpts, appexport.WithArchive(store, cfg.Storage.PresignExpiration))
	}

	opts := bootstrap.Options{
		Logger:      log,
		Idempotency: idempotency,
		IdempotencyConfig: shared.IdempotencyConfig{
			Enabled: cfg.Idempotency.Enabled,
			TTL:     cfg.Idempotency.TTL,
		},
		ChunkSize: cfg.Export.ChunkSize,
		Export:    exportOpts,
	}
	if metrics != nil {
		opts.Observer = metrics
		opts.Export = append(opts.Export, appexport.WithRecorder(metrics))
	}
	services := bootstrap.NewServices(db.DB, opts)

	engine := router.NewEngine(services, router.Config{
		Logger:  log,
		Version: version,
		Debug:   !cfg.App.IsProduction(),
		HTTP:    cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Metrics:         metrics,
		Profiling:       profiler.IsEnabled(),
		ExportRateLimit: cfg.Export.RateLimit,
		Database:        db,
	})

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush logs", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to flush profiles", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newArchiveStore connects the S3 bucket behind a circuit breaker.
func newArchiveStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (storage.ObjectStore, error) {
	s3, err := storage.NewS3ObjectStorage(&cfg,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.PresignExpiration),
	)
	if err != nil {
		return nil, err
	}

	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(ensureCtx); err != nil {
		return nil, err
	}

	log.Info("Export archive enabled", zap.String("bucket", s3.GetBucket()))
	return storage.NewBreakerStore(s3, storage.NewCircuitBreaker("export-archive", 30*time.Second, log)), nil
}
