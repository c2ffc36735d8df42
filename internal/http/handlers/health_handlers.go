package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/filekit-workers/internal/models"
)

// HealthChecker reports per-dependency status strings.
type HealthChecker interface {
	HealthCheck(ctx context.Context) map[string]string
}

// Pinger is satisfied by job stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueChecker is satisfied by the queue service.
type QueueChecker interface {
	HealthCheck() string
}

// QueueStatsReporter is optionally implemented by a QueueChecker.
type QueueStatsReporter interface {
	GetQueueStats() (*models.QueueStats, error)
}

type HealthHandler struct {
	service string
	storage HealthChecker
	store   Pinger
	queue   QueueChecker
}

func NewHealthHandler(service string, storage HealthChecker, store Pinger, queue QueueChecker) *HealthHandler {
	return &HealthHandler{
		service: service,
		storage: storage,
		store:   store,
		queue:   queue,
	}
}

// Health is the liveness check.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.APIResponse{
		OK:      true,
		Service: h.service,
	})
}

// Ready checks every dependency the workers need.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	services := make(map[string]string)
	if h.storage != nil {
		for name, status := range h.storage.HealthCheck(ctx) {
			services[name] = status
		}
	}

	services["job_store"] = "not configured"
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			services["job_store"] = "unhealthy: " + err.Error()
		} else {
			services["job_store"] = "healthy"
		}
	}

	var stats *models.QueueStats
	services["queue"] = "not configured"
	if h.queue != nil {
		services["queue"] = h.queue.HealthCheck()
		if reporter, ok := h.queue.(QueueStatsReporter); ok && services["queue"] == "healthy" {
			if s, err := reporter.GetQueueStats(); err == nil {
				stats = s
			}
		}
	}

	overall := calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		OK:      overall == "healthy",
		Service: h.service,
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
			Queue:     stats,
		},
	})
}
