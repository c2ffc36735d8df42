// Package jobs keeps queued compression jobs and enforces their state machine.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
)

// Store persists job records.
type Store interface {
	Create(ctx context.Context, job *models.ProcessingJob) error
	Get(ctx context.Context, id string) (*models.ProcessingJob, error)
	// Transition moves a job to next, applying mutate to the record first.
	// Moves the state machine does not allow fail with a conflict error.
	Transition(ctx context.Context, id string, next models.JobStatus, mutate func(*models.ProcessingJob)) (*models.ProcessingJob, error)
	Ping(ctx context.Context) error
	Close() error
}

// NewJob builds a queued job for req, generating an id when req has none.
func NewJob(req models.CompressRequest) *models.ProcessingJob {
	id := req.JobID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	return &models.ProcessingJob{
		ID:        id,
		Tool:      models.ToolCompressBatch,
		Status:    models.StatusQueued,
		Preset:    req.Preset,
		Files:     req.Files,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func applyTransition(job *models.ProcessingJob, next models.JobStatus, mutate func(*models.ProcessingJob)) error {
	if !job.Status.CanTransition(next) {
		return apperrors.New(apperrors.KindConflict, "jobs.Transition",
			fmt.Sprintf("job %s cannot move from %s to %s", job.ID, job.Status, next))
	}
	if mutate != nil {
		mutate(job)
	}
	job.Status = next
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func notFound(id string) error {
	return apperrors.New(apperrors.KindNotFound, "jobs.Get", "job not found: "+id)
}

func alreadyExists(id string) error {
	return apperrors.New(apperrors.KindConflict, "jobs.Create", "job already exists: "+id)
}
