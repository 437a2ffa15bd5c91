package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bankmetrics/internal/handler"
	"bankmetrics/internal/middleware"
	"bankmetrics/internal/service"
)

// Options carries router-level settings. A nil AuthService leaves /api/v1 open.
type Options struct {
	AuthService    service.AuthService
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
	Logger         *slog.Logger
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	opts Options,
	analysisH *handler.AnalysisHandler,
	resultH *handler.ResultHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks and metrics
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	if opts.AuthService != nil {
		v1.Use(middleware.AuthMiddleware(opts.AuthService))
	}

	// Batch analysis
	analyses := v1.Group("/analyses")
	analyses.POST("", analysisH.Analyze)
	analyses.POST("/consolidate", analysisH.Consolidate)

	// Consolidated results
	results := v1.Group("/results")
	results.GET("/:quarter", resultH.Get)
	results.GET("/:quarter/tables", resultH.Tables)
	results.GET("/:quarter/export", resultH.Export)

	// Quarter arithmetic
	v1.GET("/quarters/:quarter/window", resultH.Window)

	// Run ledger
	runs := v1.Group("/runs")
	runs.GET("", resultH.ListRuns)
	runs.GET("/:id", resultH.GetRun)

	r.NoRoute(func(c *gin.Context) {
		handler.RespondError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return r
}
