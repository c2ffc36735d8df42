package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/phambaophuc/filekit-workers/internal/services/jobs"
	"go.uber.org/zap"
)

// JobQueue accepts batch compressions for asynchronous processing.
type JobQueue interface {
	Enqueue(ctx context.Context, req models.CompressRequest) (*models.ProcessingJob, error)
}

type JobHandler struct {
	queue  JobQueue
	store  jobs.Store
	logger *zap.Logger
}

// NewJobHandler builds the async job endpoints. A nil queue makes enqueueing
// answer 503 while job lookups keep working.
func NewJobHandler(queue JobQueue, store jobs.Store, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		queue:  queue,
		store:  store,
		logger: logger,
	}
}

// EnqueueCompress handles POST /jobs/compress-batch.
func (h *JobHandler) EnqueueCompress(c *gin.Context) {
	if h.queue == nil {
		respondError(c, h.logger, apperrors.New(apperrors.KindUnavailable, "handlers.EnqueueCompress", "Job queue is not available"))
		return
	}

	var req models.CompressRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	job, err := h.queue.Enqueue(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusAccepted, models.EnqueueResponse{
		OK:    true,
		JobID: job.ID,
	})
}

// GetJob handles GET /jobs/:id.
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.JobResponse{
		OK:  true,
		Job: job,
	})
}
