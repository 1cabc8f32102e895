package bootstrap

import (
	"net/http"
	"time"

	analyticsfeature "github.com/dalemusser/stratadash/internal/app/features/analytics"
	coursesfeature "github.com/dalemusser/stratadash/internal/app/features/courses"
	errorsfeature "github.com/dalemusser/stratadash/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stratadash/internal/app/features/health"
	requirementsfeature "github.com/dalemusser/stratadash/internal/app/features/requirements"
	coursestore "github.com/dalemusser/stratadash/internal/app/store/courses"
	documentstore "github.com/dalemusser/stratadash/internal/app/store/documents"
	requeststore "github.com/dalemusser/stratadash/internal/app/store/requests"
	studentstore "github.com/dalemusser/stratadash/internal/app/store/students"
	"github.com/dalemusser/stratadash/internal/app/system/requestcounter"
	"github.com/dalemusser/stratadash/internal/app/system/timezones"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// requestCounter is kept for Shutdown, which waits for pending writes.
var requestCounter *requestcounter.Counter

// BuildHandler constructs the root HTTP handler for stratadash.
//
// Routes:
//
//	/analytics/{metric}/{timeframe}  staff-only chart data
//	/courses/all                     public course list
//	/requirements/preview/           editor preview renderer
//	/health, /ready, /readyz, /livez probes
//	/metrics                         Prometheus exposition
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	errLog := errorsfeature.NewErrorLogger(logger)
	m := sharedMetrics()

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Request counter: records every non-excluded request for the analytics
	// dashboard without delaying the response.
	if appCfg.RequestCounterEnabled {
		requestCounter = requestcounter.New(requestcounter.Config{
			Store:               requeststore.New(db),
			Students:            studentstore.New(db),
			Metrics:             m,
			Logger:              logger,
			ExcludePathPrefixes: appCfg.ExcludePathPrefixes,
			ExcludeUserAgents:   appCfg.ExcludeUserAgents,
		})
		r.Use(requestCounter.Middleware)
	}

	// ─────────────────────────────────────────────────────────────────────────────
	// Features
	// ─────────────────────────────────────────────────────────────────────────────

	analyticsHandler := analyticsfeature.NewHandler(requeststore.New(db), documentstore.New(db), errLog, logger)
	loc, err := timezones.Resolve(appCfg.AnalyticsTimezone)
	if err != nil {
		return nil, err
	}
	analyticsHandler.SetLocation(loc)
	r.Mount("/analytics", analyticsfeature.Routes(analyticsHandler, appCfg.APIKey, logger))

	coursesHandler := coursesfeature.NewHandler(coursestore.New(db), errLog, logger)
	r.Mount("/courses", coursesfeature.Routes(coursesHandler))

	requirementsHandler := requirementsfeature.NewHandler(errLog, logger)
	r.Mount("/requirements", requirementsfeature.Routes(requirementsHandler))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)
	if taskRunner != nil {
		healthHandler.SetJobs(taskRunner.Status)
	}

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", m.Handler())
	}

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	logger.Info("routes built",
		zap.Bool("request_counter", appCfg.RequestCounterEnabled),
		zap.Bool("metrics", appCfg.MetricsEnabled),
		zap.Bool("staff_key_set", appCfg.APIKey != ""),
	)
	return r, nil
}
