// seat-watcher tails the seat status topic and logs every change. It is a
// reference consumer for services that mirror seat availability.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"bus-fleet/internal/config"
	"bus-fleet/internal/kafka"
	"bus-fleet/internal/logger"
	"bus-fleet/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	groupID := pflag.String("group", "bus-fleet-seat-watcher", "Kafka consumer group")
	topic := pflag.String("topic", cfg.Kafka.SeatTopic, "seat status topic")
	pflag.Parse()

	log := logger.NewLogger(cfg.Log.Dir)
	log.SetLevel(logger.ParseLevel(cfg.Log.Level))
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, *topic, *groupID, log)
	defer consumer.Close()

	err := consumer.Start(ctx, func(event models.SeatStatusChangeEvent) {
		for _, seat := range event.SeatNumbers {
			log.LogBooking(string(event.Status), event.ScheduleID, seat, fmt.Sprintf("changed at %s", event.OccurredAt.Format("15:04:05")))
		}
	})
	if err != nil {
		log.Error("KAFKA", fmt.Sprintf("consumer stopped: %v", err))
	}
}
