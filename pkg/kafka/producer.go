package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	kafka_config "courtside/pkg/kafka/config"
	"courtside/pkg/logger"
)

// Producer wraps a kafka-go writer with header-aware publishing and a
// dead-letter fallback for messages that exhaust delivery retries.
type Producer struct {
	writer   *kafka.Writer
	dlqTopic string
	log      *logger.Logger

	mu     sync.RWMutex
	closed bool
}

func NewProducer(cfg *kafka_config.Config, dlqTopic string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerMaxAttempts,
		BatchTimeout: cfg.ProducerBatchTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.ProducerRequireAcks),
		Compression:  compressionCodec(cfg.ProducerCompression),
	}

	return &Producer{
		writer:   writer,
		dlqTopic: dlqTopic,
		log:      log,
	}
}

func (p *Producer) Publish(ctx context.Context, topic string, msg Message) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	p.mu.RUnlock()

	kafkaMsg := toKafkaMessage(topic, msg)

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		p.log.Error("failed to publish message",
			"topic", topic,
			"event_id", msg.GetEventID(),
			"error", err,
		)

		if p.dlqTopic != "" && !ShouldRetry(err) {
			if dlqErr := p.sendToDLQ(ctx, topic, msg); dlqErr != nil {
				p.log.Error("failed to publish to DLQ",
					"dlq_topic", p.dlqTopic,
					"event_id", msg.GetEventID(),
					"error", dlqErr,
				)
			}
		}

		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.log.Debug("message published",
		"topic", topic,
		"event_id", msg.GetEventID(),
		"event_type", msg.GetEventType(),
	)

	return nil
}

func (p *Producer) sendToDLQ(ctx context.Context, originalTopic string, msg Message) error {
	msg.Headers[HeaderOriginalTopic] = originalTopic
	return p.writer.WriteMessages(ctx, toKafkaMessage(p.dlqTopic, msg))
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.writer.Close()
}

func toKafkaMessage(topic string, msg Message) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for key, value := range msg.Headers {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(msg.Key),
		Value:   msg.Value,
		Headers: headers,
		Time:    msg.Timestamp,
	}
}

func compressionCodec(name string) kafka.Compression {
	switch name {
	case "gzip":
		return kafka.Compression(compress.Gzip)
	case "snappy":
		return kafka.Compression(compress.Snappy)
	case "lz4":
		return kafka.Compression(compress.Lz4)
	case "zstd":
		return kafka.Compression(compress.Zstd)
	default:
		return kafka.Compression(compress.None)
	}
}
