package main

import (
	"context"

	"tablebook/internal/bookings/events"
	"tablebook/internal/bookings/handler"
	"tablebook/internal/bookings/repository"
	"tablebook/internal/bookings/service"
	"tablebook/internal/bookings/validator"
	"tablebook/internal/estimator"
	"tablebook/internal/scheduling"
	tablesrepo "tablebook/internal/tables/repository"
	"tablebook/pkg/app"
	"tablebook/pkg/config"
	"tablebook/pkg/kafka"
	kafka_config "tablebook/pkg/kafka/config"
	kafka_middleware "tablebook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)
	bookingService := initServices(cfg, serverApp)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) service.BookingService {
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	store := repository.NewSchedulingStore(
		bookingRepo,
		repository.NewMongoHistoryRepository(cfg),
		tablesrepo.NewMongoTableRepository(cfg),
		newTableLocker(cfg),
		cfg.Log,
	)

	scheduler := scheduling.New(
		store,
		newEstimator(cfg),
		policyFromConfig(cfg),
		cfg.Log,
		scheduling.WithLocation(cfg.Location),
	)

	bookingService := service.NewBookingService(
		bookingRepo,
		scheduler,
		validator.NewBookingValidator(cfg.Log),
		newPublisher(cfg, serverApp),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

func newTableLocker(cfg *config.Config) repository.TableLocker {
	if cfg.LockBackend == config.LockBackendRedis {
		return repository.NewRedisTableLocker(cfg.Client.Redis, cfg.LockTTL)
	}
	return repository.NewMongoTableLocker(cfg)
}

// newEstimator returns a nil interface when no prediction API is configured,
// so the scheduler goes straight to the fallback durations.
func newEstimator(cfg *config.Config) scheduling.DurationEstimator {
	if cfg.EstimatorURL == "" {
		cfg.Log.Info("No prediction API configured, using fallback durations")
		return nil
	}
	return estimator.New(cfg.EstimatorURL, cfg.EstimatorAPIKey, cfg.EstimatorTimeout)
}

func policyFromConfig(cfg *config.Config) scheduling.Policy {
	return scheduling.Policy{
		MaxPartySize:      cfg.MaxPartySize,
		SmallPartyMax:     cfg.FallbackSmallPartyMax,
		SmallPartyMinutes: cfg.FallbackSmallPartyMinutes,
		LargePartyMin:     cfg.FallbackLargePartyMin,
		LargePartyMinutes: cfg.FallbackLargePartyMinutes,
		DefaultMinutes:    cfg.FallbackDefaultMinutes,
		MaxWait:           cfg.MaxWait,
		EstimatorTimeout:  cfg.EstimatorTimeout,
		LookbackWindow:    cfg.LookbackWindow,
		SelectionAttempts: cfg.SelectionAttempts,
		LockRetryBackoff:  cfg.LockRetryBackoff,
	}
}

func newPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	serverApp.OnShutdown(func(context.Context) {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Booking events enabled", "topic", cfg.KafkaBookingsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
