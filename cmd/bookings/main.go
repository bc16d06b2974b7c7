package main

import (
	"courtside/internal/academies/repository"
	"courtside/internal/bookings/handler"
	bookingsrepo "courtside/internal/bookings/repository"
	"courtside/internal/bookings/service"
	"courtside/internal/bookings/validator"
	"courtside/internal/events"
	"courtside/pkg/app"
	"courtside/pkg/config"
	"courtside/pkg/kafka"
	kafka_config "courtside/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	producer := initProducer(cfg)
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}()

	bookingService := initServices(cfg, producer)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	return kafka.NewProducer(kafkaCfg, events.TopicBookingsDLQ, cfg.Log)
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepo.NewSlotLockRepository(cfg)
	academyRepo := repository.NewMongoAcademyRepository(cfg)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		academyRepo,
		producer,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
