package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/filekit-workers/internal/http/handlers"
	"github.com/phambaophuc/filekit-workers/internal/http/middleware"
	"github.com/phambaophuc/filekit-workers/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	compressionHandler *handlers.CompressionHandler
	jobHandler         *handlers.JobHandler
	healthHandler      *handlers.HealthHandler
	metrics            *metrics.Metrics
	gatherer           prometheus.Gatherer
	allowedOrigins     []string
	logger             *zap.Logger
}

func NewRouter(
	compressionHandler *handlers.CompressionHandler,
	jobHandler *handlers.JobHandler,
	healthHandler *handlers.HealthHandler,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		compressionHandler: compressionHandler,
		jobHandler:         jobHandler,
		healthHandler:      healthHandler,
		metrics:            m,
		gatherer:           gatherer,
		allowedOrigins:     allowedOrigins,
		logger:             logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS(r.allowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics(r.metrics))

	router.GET("/health", r.healthHandler.Health)
	router.GET("/health/ready", r.healthHandler.Ready)

	if r.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	batch := router.Group("/", middleware.RejectUploads())
	{
		batch.POST("/compress-batch-preview", r.compressionHandler.PreviewBatch)
		batch.POST("/compress-batch", r.compressionHandler.CompressBatch)
	}

	jobs := router.Group("/jobs")
	{
		jobs.POST("/compress-batch", middleware.RejectUploads(), r.jobHandler.EnqueueCompress)
		jobs.GET("/:id", r.jobHandler.GetJob)
	}

	return router
}
