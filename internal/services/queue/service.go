package queue

import (
	"context"
	"fmt"

	"github.com/phambaophuc/filekit-workers/internal/config"
	"github.com/phambaophuc/filekit-workers/internal/metrics"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"github.com/phambaophuc/filekit-workers/internal/services/jobs"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Compressor runs one batch compression.
type Compressor interface {
	Compress(ctx context.Context, req models.CompressRequest) ([]models.CompressFileResult, error)
}

type QueueService struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	logger     *zap.Logger
	queueName  string
	compressor Compressor
	store      jobs.Store
	metrics    *metrics.Metrics
}

func NewQueueService(
	cfg config.RabbitMQConfig,
	compressor Compressor,
	store jobs.Store,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*QueueService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queueName := cfg.Queue
	if queueName == "" {
		queueName = "pdf_compression"
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// One unacknowledged message per consumer.
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	if m == nil {
		m = metrics.Nop()
	}

	return &QueueService{
		conn:       conn,
		channel:    channel,
		logger:     logger,
		queueName:  queueName,
		compressor: compressor,
		store:      store,
		metrics:    m,
	}, nil
}

// Close closes the queue connection
func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}
