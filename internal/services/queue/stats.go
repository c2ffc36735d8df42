package queue

import (
	"fmt"

	"github.com/phambaophuc/filekit-workers/internal/models"
)

// GetQueueStats reports the broker-side depth of the job queue.
func (q *QueueService) GetQueueStats() (*models.QueueStats, error) {
	if q.channel == nil {
		return nil, fmt.Errorf("channel not available")
	}

	info, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue %s: %w", q.queueName, err)
	}

	return &models.QueueStats{
		Name:      info.Name,
		Messages:  info.Messages,
		Consumers: info.Consumers,
	}, nil
}

// HealthCheck checks if RabbitMQ is available
func (q *QueueService) HealthCheck() string {
	if q.conn == nil || q.conn.IsClosed() {
		return "unhealthy: connection closed"
	}

	if q.channel == nil {
		return "unhealthy: channel not available"
	}

	return "healthy"
}
