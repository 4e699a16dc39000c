package router

import (
	"time"

	"github.com/finops/backend/internal/bootstrap"
	"github.com/finops/backend/internal/infrastructure/config"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/finops/backend/internal/infrastructure/telemetry"
	"github.com/finops/backend/internal/interfaces/http/handler"
	"github.com/finops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Probe and scrape endpoints, served outside the API prefix and untraced.
const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Config is what NewEngine needs besides the services.
type Config struct {
	Logger  *zap.Logger
	Version string
	// Debug adds the cause chain and stack of 5xx errors to response bodies.
	Debug   bool
	HTTP    config.HTTPConfig
	Tracing middleware.TracingConfig
	// Metrics enables request metrics and GET /metrics.
	Metrics *telemetry.Metrics
	// Profiling labels CPU samples with the route of the request.
	Profiling bool
	// ExportRateLimit is requests per minute and client on /exports, 0 disables.
	ExportRateLimit int
	Database        handler.Pinger
}

// NewEngine builds the gin engine serving the API.
func NewEngine(services *bootstrap.Services, cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	tracing := cfg.Tracing
	tracing.SkipPaths = append(tracing.SkipPaths, HealthPath, MetricsPath)

	// an untyped nil keeps HTTPMetrics disabled
	var requests middleware.RequestObserver
	if cfg.Metrics != nil {
		requests = cfg.Metrics
	}

	engine.Use(
		logger.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log, HealthPath, MetricsPath),
		middleware.Tracing(tracing),
		middleware.SpanAttributes(),
		middleware.HTTPMetrics(requests),
		middleware.Profiling(cfg.Profiling, HealthPath, MetricsPath),
		middleware.CORS(middleware.CORSConfigFromSettings(cfg.HTTP)),
		middleware.Secure(middleware.DefaultSecurityConfig()),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	base := handler.NewBaseHandler(log, cfg.Debug)

	engine.GET(HealthPath, handler.NewSystemHandler(base, cfg.Version, cfg.Database).Health)
	if cfg.Metrics != nil {
		engine.GET(MetricsPath, gin.WrapH(cfg.Metrics.Handler()))
	}

	var limiter *middleware.RateLimiter
	if cfg.ExportRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.ExportRateLimit, time.Minute)
	}

	NewRouter(engine).
		Register(backofficeRoutes(base, services)...).
		Register(profilerRoutes(base, services)).
		Register(reportRoutes(base, services), exportRoutes(base, services, limiter)).
		Setup()

	return engine
}

func backofficeRoutes(base handler.BaseHandler, s *bootstrap.Services) []RouteRegistrar {
	cards := handler.NewCardHandler(base, s.Cards)
	return []RouteRegistrar{
		NewDomainGroup("/clients").CRUD(handler.NewClientHandler(base, s.Clients)),
		NewDomainGroup("/banks").CRUD(handler.NewBankHandler(base, s.Banks)),
		NewDomainGroup("/cards").CRUD(cards),
		NewDomainGroup("/transactions").CRUD(handler.NewTransactionHandler(base, s.Transactions)),
	}
}

func profilerRoutes(base handler.BaseHandler, s *bootstrap.Services) *DomainGroup {
	profiler := NewDomainGroup("/profiler")
	profiler.Group("/clients").CRUD(handler.NewProfilerClientHandler(base, s.ProfilerClients))
	profiler.Group("/banks").CRUD(handler.NewProfilerBankHandler(base, s.ProfilerBanks))

	profiles := handler.NewProfileHandler(base, s.Profiles)
	profiler.Group("/profiles").
		CRUD(profiles).
		POST("/:id/done", profiles.MarkDone)

	profiler.Group("/transactions").
		CRUD(handler.NewProfilerTransactionHandler(base, s.ProfilerTransactions))
	return profiler
}

func reportRoutes(base handler.BaseHandler, s *bootstrap.Services) *DomainGroup {
	h := handler.NewReportHandler(base, s.Reports)
	return NewDomainGroup("/reports").
		GET("/clients", h.ClientSummary).
		GET("/profiles", h.ProfileSummary)
}

func exportRoutes(base handler.BaseHandler, s *bootstrap.Services, limiter *middleware.RateLimiter) *DomainGroup {
	h := handler.NewExportHandler(base, s.Exports)
	return NewDomainGroup("/exports").
		Use(middleware.RateLimit(limiter)).
		POST("/transactions", h.Transactions).
		POST("/transactions/preview", h.PreviewTransactions).
		POST("/profiler-transactions", h.ProfilerTransactions).
		POST("/profiler-transactions/preview", h.PreviewProfilerTransactions)
}
