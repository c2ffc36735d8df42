package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/phambaophuc/filekit-workers/internal/services/jobs"
	"github.com/phambaophuc/filekit-workers/internal/services/storage"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Enqueue validates req, stores it as a queued job and publishes it.
// A job that cannot be published is marked failed.
func (q *QueueService) Enqueue(ctx context.Context, req models.CompressRequest) (*models.ProcessingJob, error) {
	const op = "queue.Enqueue"

	job, err := newQueuedJob(req)
	if err != nil {
		return nil, err
	}

	if err := q.store.Create(ctx, job); err != nil {
		return nil, err
	}

	if err := q.PublishJob(ctx, job); err != nil {
		_, _ = q.store.Transition(context.WithoutCancel(ctx), job.ID, models.StatusFailed, func(j *models.ProcessingJob) {
			j.Error = "failed to publish job"
		})
		q.metrics.IncJob(string(models.StatusFailed))
		return nil, apperrors.Wrap(apperrors.KindQueue, op, "failed to publish job", err)
	}

	return job, nil
}

func newQueuedJob(req models.CompressRequest) (*models.ProcessingJob, error) {
	const op = "queue.Enqueue"

	if len(req.Files) == 0 {
		return nil, apperrors.New(apperrors.KindValidation, op, "No files provided")
	}
	if _, ok := models.ParsePreset(req.Preset); !ok {
		return nil, apperrors.New(apperrors.KindValidation, op, "Invalid preset: "+req.Preset)
	}

	job := jobs.NewJob(req)
	if err := storage.ValidateJobID(job.ID); err != nil {
		return nil, err
	}
	return job, nil
}

func (q *QueueService) PublishJob(ctx context.Context, job *models.ProcessingJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    job.ID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Info("Job published to queue", zap.String("job_id", job.ID))
	return nil
}
