package queue

import (
	"context"

	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"go.uber.org/zap"
)

// processJob drives one stored job through processing to done or failed.
// Store updates outlive ctx so a stopping worker still records the outcome.
func (q *QueueService) processJob(ctx context.Context, jobID string) error {
	storeCtx := context.WithoutCancel(ctx)

	job, err := q.store.Transition(storeCtx, jobID, models.StatusProcessing, nil)
	if err != nil {
		return err
	}

	results, err := q.compressor.Compress(ctx, job.CompressRequest())
	if err != nil {
		if _, terr := q.store.Transition(storeCtx, jobID, models.StatusFailed, func(j *models.ProcessingJob) {
			j.Error = apperrors.MessageOf(err)
		}); terr != nil {
			q.logger.Error("Failed to record job failure",
				zap.String("job_id", jobID),
				zap.Error(terr))
		}
		return err
	}

	if _, err := q.store.Transition(storeCtx, jobID, models.StatusDone, func(j *models.ProcessingJob) {
		j.Results = results
	}); err != nil {
		return err
	}

	return nil
}
