package main

import (
	bookingsrepo "tablebook/internal/bookings/repository"
	"tablebook/internal/tables/handler"
	"tablebook/internal/tables/repository"
	"tablebook/internal/tables/service"
	"tablebook/internal/tables/validator"
	"tablebook/pkg/app"
	"tablebook/pkg/config"
)

const ServiceName = "tables"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Tables service")
	tableService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewTableHandler(tableService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.TableService {
	tableService := service.NewTableService(
		repository.NewMongoTableRepository(cfg),
		bookingsrepo.NewMongoBookingRepository(cfg),
		validator.NewTableValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Table service initialized", "database", cfg.MongoDatabaseName)
	return tableService
}
