package main

import (
	"courtside/internal/academies/handler"
	"courtside/internal/academies/repository"
	"courtside/internal/academies/service"
	"courtside/internal/academies/validator"
	"courtside/pkg/app"
	"courtside/pkg/config"
)

const ServiceName = "academies"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Academies service")

	academyService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAcademyHandler(academyService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AcademyService {
	academyValidator := validator.NewAcademyValidator(cfg.Log)
	academyRepo := repository.NewMongoAcademyRepository(cfg)
	academyService := service.NewAcademyService(
		academyRepo,
		academyValidator,
		cfg,
	)

	cfg.Log.Info("Academy service initialized", "database", cfg.MongoDatabaseName)
	return academyService
}
