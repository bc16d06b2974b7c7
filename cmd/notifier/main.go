package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"courtside/internal/events"
	"courtside/internal/notifier"
	"courtside/pkg/config"
	"courtside/pkg/kafka"
	kafka_config "courtside/pkg/kafka/config"
)

const (
	ServiceName     = "notifier"
	ConsumerGroupID = "courtside-notifier"
)

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer := kafka.NewProducer(kafkaCfg, events.TopicBookingsDLQ, cfg.Log)
	consumer := kafka.NewConsumer(kafkaCfg, events.TopicBookings, ConsumerGroupID, events.TopicBookingsDLQ, producer, cfg.Log)

	worker := notifier.NewWorker(consumer, cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Starting Notifier worker")
	if err := worker.Run(ctx); err != nil {
		cfg.Log.Error("Notifier worker stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	if err := producer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka producer", "error", err)
	}

	cfg.Log.Info("Notifier worker stopped gracefully")
}
