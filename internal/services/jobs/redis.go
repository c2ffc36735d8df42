package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/phambaophuc/filekit-workers/internal/errors"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "job:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis stores each job as JSON under job:<id>, expiring after ttl.
func NewRedis(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) key(id string) string {
	return redisKeyPrefix + id
}

func (s *redisStore) Create(ctx context.Context, job *models.ProcessingJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.key(job.ID), data, s.ttl).Result()
	if err != nil {
		return apperrors.Wrap(apperrors.KindStorage, "jobs.Create", "failed to store job", err)
	}
	if !created {
		return alreadyExists(job.ID)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*models.ProcessingJob, error) {
	return s.load(ctx, s.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *redisStore) load(ctx context.Context, c getter, id string) (*models.ProcessingJob, error) {
	raw, err := c.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(id)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, "jobs.Get", "failed to read job", err)
	}

	var job models.ProcessingJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, "jobs.Get", "corrupt job record", err)
	}
	return &job, nil
}

// Transition runs as an optimistic WATCH/MULTI transaction on the job key.
func (s *redisStore) Transition(ctx context.Context, id string, next models.JobStatus, mutate func(*models.ProcessingJob)) (*models.ProcessingJob, error) {
	key := s.key(id)
	var updated *models.ProcessingJob

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		job, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyTransition(job, next, mutate); err != nil {
			return err
		}

		data, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = job
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, apperrors.Wrap(apperrors.KindConflict, "jobs.Transition", "job changed concurrently", err)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, "jobs.Transition", "failed to update job", err)
	}
	return updated, nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
