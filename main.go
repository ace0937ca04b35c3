package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"bus-fleet/internal/analytics"
	"bus-fleet/internal/api"
	"bus-fleet/internal/bookings/boardingpass"
	bookingredis "bus-fleet/internal/bookings/redis"
	bookings "bus-fleet/internal/bookings/service"
	buses "bus-fleet/internal/buses/service"
	"bus-fleet/internal/config"
	"bus-fleet/internal/database"
	"bus-fleet/internal/database/migrations"
	"bus-fleet/internal/kafka"
	"bus-fleet/internal/logger"
	"bus-fleet/internal/manifest"
	schedules "bus-fleet/internal/schedules/service"
	"bus-fleet/internal/sse"
	"bus-fleet/internal/store/bunstore"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
)

func prepareSchema(ctx context.Context, cfg config.DatabaseConfig, bunDB *bun.DB, log *logger.Logger) error {
	if cfg.Driver != "postgres" {
		// the SQL migrations are PostgreSQL only
		log.Info("DATABASE", fmt.Sprintf("Creating %s schema from models", cfg.Driver))
		return bunstore.CreateSchema(ctx, bunDB)
	}
	if !cfg.AutoMigrate {
		log.Info("DATABASE", "Auto migration disabled, skipping")
		return nil
	}

	// the migrator closes its handle, so it gets its own
	migrationDB, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return err
	}
	runner := migrations.NewRunner(migrationDB, migrations.MigrateOptions{}, log)
	defer runner.Close()
	return runner.RunMigrations()
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unreachable at %s, seat holds disabled: %v", cfg.Addr, err))
		client.Close()
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s (DB: %d)", cfg.Addr, client.Options().DB))
	return client
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println(".env file not found, using environment variables")
	}

	cfg := config.Load()
	log := logger.NewLogger(cfg.Log.Dir)
	log.SetLevel(logger.ParseLevel(cfg.Log.Level))
	defer log.Close()

	log.Info("APP", "Starting bus fleet service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if err := prepareSchema(ctx, cfg.Database, bunDB, log); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Schema preparation failed: %v", err))
	}

	fleetStore := bunstore.New(bunDB)

	var locker bookings.SeatLocker
	if cfg.Redis.Enabled {
		if client := connectRedis(ctx, cfg.Redis, log); client != nil {
			defer client.Close()
			locker = bookingredis.NewSeatHold(client, cfg.Redis.SeatHoldTTL, log)
		}
	}

	seatEvents := sse.NewSeatEventEmitter()
	events := bookings.Publishers{seatEvents}
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, []string{cfg.Kafka.SeatTopic}, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.SeatTopic, log)
		defer producer.Close()
		events = append(events, producer)
		log.Info("KAFKA", "Kafka producer initialized successfully")
	}

	passes, err := boardingpass.NewGenerator(cfg.BoardingPass.Secret)
	if err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid boarding pass secret: %v", err))
	}

	handler := &api.Handler{
		Analytics:  analytics.NewService(fleetStore, log),
		Buses:      buses.NewBusService(fleetStore, log),
		Schedules:  schedules.NewScheduleService(fleetStore, log),
		Bookings:   bookings.NewBookingService(fleetStore, locker, events, log),
		Manifest:   manifest.NewReporter(fleetStore, log),
		Passes:     passes,
		SeatEvents: seatEvents,
		Logger:     log,
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Bus fleet service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Bus fleet service shutdown complete")
	}
}
