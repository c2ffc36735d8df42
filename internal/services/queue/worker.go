package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Outcomes recorded for each delivery.
const (
	outcomeDone     = "done"
	outcomeFailed   = "failed"
	outcomeSkipped  = "skipped"
	outcomeRejected = "rejected"
)

// StartWorker registers a consumer and handles its deliveries one at a time
// until ctx is cancelled or the channel closes.
func (q *QueueService) StartWorker(ctx context.Context, workerID int) error {
	consumer := fmt.Sprintf("%s-worker-%d", q.queueName, workerID)

	deliveries, err := q.channel.Consume(
		q.queueName,
		consumer,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer %s: %w", consumer, err)
	}

	log := q.logger.With(zap.Int("worker_id", workerID), zap.String("consumer", consumer))
	log.Info("Worker started")

	go q.consume(ctx, deliveries, workerID, log)
	return nil
}

func (q *QueueService) consume(ctx context.Context, deliveries <-chan amqp.Delivery, workerID int, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			log.Info("Worker stopping")
			return
		case msg, ok := <-deliveries:
			if !ok {
				log.Warn("Delivery channel closed")
				return
			}
			q.processMessage(ctx, msg, workerID)
		}
	}
}

// processMessage settles one delivery exactly once. Jobs are never
// redelivered, whatever their outcome.
func (q *QueueService) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	started := time.Now()
	log := q.logger.With(zap.Int("worker_id", workerID), zap.Uint64("delivery_tag", msg.DeliveryTag))

	job, err := decodeJob(msg.Body)
	if err != nil {
		log.Error("Rejecting malformed job message", zap.Error(err), zap.Int("bytes", len(msg.Body)))
		q.metrics.IncJob(outcomeRejected)
		if err := msg.Nack(false, false); err != nil {
			log.Error("Failed to nack message", zap.Error(err))
		}
		return
	}

	log = log.With(
		zap.String("job_id", job.ID),
		zap.String("tool", job.Tool),
		zap.String("preset", job.Preset),
		zap.Int("files", len(job.Files)),
	)
	log.Info("Processing job")

	outcome := outcomeDone
	if err := q.processJob(ctx, job.ID); err != nil {
		outcome = classify(err)
		log.Error("Job did not complete", zap.String("outcome", outcome), zap.Error(err))
	}

	elapsed := time.Since(started)
	q.metrics.ObserveJob(outcome, elapsed.Seconds())
	if outcome == outcomeDone {
		log.Info("Job completed", zap.Duration("elapsed", elapsed))
	}

	if err := msg.Ack(false); err != nil {
		log.Error("Failed to ack message", zap.Error(err))
	}
}

func decodeJob(body []byte) (*models.ProcessingJob, error) {
	var job models.ProcessingJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	if job.ID == "" {
		return nil, fmt.Errorf("decode job: missing id")
	}
	return &job, nil
}

// classify separates jobs that ran and failed from deliveries that no
// longer match a runnable job (unknown id, already processed).
func classify(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound, apperrors.KindConflict:
		return outcomeSkipped
	default:
		return outcomeFailed
	}
}
