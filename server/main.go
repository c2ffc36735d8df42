package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phambaophuc/filekit-workers/internal/config"
	"github.com/phambaophuc/filekit-workers/internal/http/handlers"
	"github.com/phambaophuc/filekit-workers/internal/http/routes"
	"github.com/phambaophuc/filekit-workers/internal/metrics"
	"github.com/phambaophuc/filekit-workers/internal/services/compression"
	"github.com/phambaophuc/filekit-workers/internal/services/inspector"
	"github.com/phambaophuc/filekit-workers/internal/services/jobs"
	"github.com/phambaophuc/filekit-workers/internal/services/processor"
	"github.com/phambaophuc/filekit-workers/internal/services/queue"
	"github.com/phambaophuc/filekit-workers/internal/services/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize services
	var documentInspector inspector.Inspector = inspector.Unavailable{}
	if cfg.Compression.InspectorEnabled {
		documentInspector = inspector.NewPDFInspector()
	} else {
		logger.Warn("Document inspection disabled, corruption cannot be detected")
	}
	insp := inspector.NewDispatch(documentInspector, inspector.NewImageInspector())

	proc := processor.NewProcessor(cfg.Compression, m, logger)

	outputs, err := storage.NewStorageService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}

	compressor := compression.NewService(insp, proc, outputs, cfg, m, logger)

	store, err := jobs.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize job store", zap.Error(err), zap.String("store", cfg.Jobs.Store))
	}
	defer store.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// The queue is optional: without it the service runs HTTP-only.
	var (
		jobQueue    handlers.JobQueue
		queueHealth handlers.QueueChecker
	)
	if cfg.RabbitMQ.URL != "" {
		q, err := queue.NewQueueService(cfg.RabbitMQ, compressor, store, m, logger)
		if err != nil {
			logger.Warn("Failed to initialize queue service", zap.Error(err))
		} else {
			defer q.Close()
			jobQueue, queueHealth = q, q

			for i := 1; i <= cfg.RabbitMQ.Workers; i++ {
				if err := q.StartWorker(workerCtx, i); err != nil {
					logger.Error("Failed to start worker", zap.Int("worker_id", i), zap.Error(err))
				}
			}
		}
	}

	// Initialize handlers
	router := routes.NewRouter(
		handlers.NewCompressionHandler(compressor, logger),
		handlers.NewJobHandler(jobQueue, store, logger),
		handlers.NewHealthHandler(cfg.Server.ServiceName, outputs, store, queueHealth),
		m,
		reg,
		cfg.Server.AllowedOrigins,
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("service", cfg.Server.ServiceName),
			zap.String("output_root", cfg.Storage.OutputRoot),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopWorkers()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
