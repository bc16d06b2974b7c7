package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	kafka_config "courtside/pkg/kafka/config"
	"courtside/pkg/logger"
)

// Consumer reads from a consumer group and hands each message to a
// handler. Handler failures are retried up to ConsumerMaxRetries, then
// the message is shipped to the DLQ and the offset committed so the
// partition keeps moving.
type Consumer struct {
	reader     *kafka.Reader
	producer   *Producer
	dlqTopic   string
	maxRetries int
	log        *logger.Logger

	mu     sync.RWMutex
	closed bool
}

func NewConsumer(cfg *kafka_config.Config, topic, groupID, dlqTopic string, producer *Producer, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		StartOffset:    cfg.ConsumerStartOffset,
		MinBytes:       cfg.ConsumerMinBytes,
		MaxBytes:       cfg.ConsumerMaxBytes,
		MaxWait:        cfg.ConsumerMaxWait,
		CommitInterval: cfg.ConsumerCommitInterval,
	})

	return &Consumer{
		reader:     reader,
		producer:   producer,
		dlqTopic:   dlqTopic,
		maxRetries: cfg.ConsumerMaxRetries,
		log:        log,
	}
}

// Start blocks until ctx is cancelled or the consumer is closed.
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	c.log.Info("consumer started",
		"topic", c.reader.Config().Topic,
		"group_id", c.reader.Config().GroupID,
	)

	for {
		c.mu.RLock()
		if c.closed {
			c.mu.RUnlock()
			return ErrConsumerClosed
		}
		c.mu.RUnlock()

		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			c.log.Error("failed to fetch message", "error", err)
			continue
		}

		msg := fromKafkaMessage(kafkaMsg)

		if err := c.process(ctx, msg, handler); err != nil {
			c.log.Error("message moved to DLQ",
				"topic", msg.Topic,
				"event_id", msg.GetEventID(),
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
			c.log.Error("failed to commit offset",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg Message, handler MessageHandler) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			msg.IncrementRetryCount()
		}

		if lastErr = handler(ctx, msg); lastErr == nil {
			return nil
		}

		if !ShouldRetry(lastErr) {
			break
		}

		c.log.Warn("handler failed, retrying",
			"event_id", msg.GetEventID(),
			"attempt", attempt+1,
			"error", lastErr,
		)
	}

	if c.dlqTopic != "" && c.producer != nil {
		if dlqErr := c.producer.Publish(ctx, c.dlqTopic, msg); dlqErr != nil {
			return fmt.Errorf("handler failed and DLQ publish failed: %w", errors.Join(lastErr, dlqErr))
		}
	}

	return lastErr
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	return c.reader.Close()
}

func fromKafkaMessage(kafkaMsg kafka.Message) Message {
	headers := make(map[string]string, len(kafkaMsg.Headers))
	for _, h := range kafkaMsg.Headers {
		headers[h.Key] = string(h.Value)
	}

	return Message{
		Key:       string(kafkaMsg.Key),
		Value:     kafkaMsg.Value,
		Headers:   headers,
		Topic:     kafkaMsg.Topic,
		Partition: kafkaMsg.Partition,
		Offset:    kafkaMsg.Offset,
		Timestamp: kafkaMsg.Time,
	}
}
