package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaQueue publishes tasks to a topic and consumes them in a consumer
// group. Offsets are committed after the handler ran.
type KafkaQueue struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
	groupID string
	logger  *zap.Logger
}

var _ Queue = (*KafkaQueue)(nil)

// NewKafkaQueue creates a queue on topic
func NewKafkaQueue(brokers []string, topic, groupID string, logger *zap.Logger) *KafkaQueue {
	return &KafkaQueue{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
		brokers: brokers,
		topic:   topic,
		groupID: groupID,
		logger:  logger,
	}
}

// Enqueue writes task keyed by its name
func (q *KafkaQueue) Enqueue(ctx context.Context, task shared.Task) error {
	msg, err := taskMessage(task)
	if err != nil {
		return err
	}
	if err := q.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("taskqueue: enqueue %s: %w", task.Name, err)
	}
	return nil
}

// Consume reads the topic until ctx is done
func (q *KafkaQueue) Consume(ctx context.Context, handler shared.TaskHandler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  q.brokers,
		GroupID:  q.groupID,
		Topic:    q.topic,
		MaxBytes: 10e6, // 10MB
	})
	defer reader.Close()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			q.logger.Error("Failed to fetch task", zap.String("topic", q.topic), zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		task, err := decodeTask(msg.Value)
		if err != nil {
			q.logger.Error("Dropping malformed task",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		} else {
			_ = handler.Handle(ctx, task)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			q.logger.Error("Failed to commit task offset", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// Close flushes and closes the writer
func (q *KafkaQueue) Close() error {
	return q.writer.Close()
}

func taskMessage(task shared.Task) (kafka.Message, error) {
	data, err := encodeTask(task)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(task.Name),
		Value: data,
		Time:  task.EnqueuedAt,
	}, nil
}
