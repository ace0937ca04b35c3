package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"bus-fleet/internal/logger"
	"bus-fleet/internal/models"

	"github.com/segmentio/kafka-go"
)

const readRetryDelay = time.Second

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	Reader MessageReader
	Logger *logger.Logger
}

// NewConsumer creates a consumer of seat status events for the given group.
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{Reader: reader, Logger: log}
}

// DecodeSeatEvent parses one seat status message.
func DecodeSeatEvent(msg kafka.Message) (models.SeatStatusChangeEvent, error) {
	var event models.SeatStatusChangeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return event, fmt.Errorf("decode seat event: %w", err)
	}
	if event.ScheduleID == "" {
		return event, errors.New("decode seat event: missing schedule_id")
	}
	return event, nil
}

// Start hands every decodable seat event to handler until ctx is done.
// Malformed messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(models.SeatStatusChangeEvent)) error {
	c.Logger.LogKafka("CONSUME", "seat events", "consumer started")

	for {
		msg, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			c.Logger.Error("KAFKA", fmt.Sprintf("error reading message: %v", err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readRetryDelay):
			}
			continue
		}

		event, err := DecodeSeatEvent(msg)
		if err != nil {
			c.Logger.Warn("KAFKA", fmt.Sprintf("skipping message at offset %d: %v", msg.Offset, err))
			continue
		}
		handler(event)
	}
}

func (c *Consumer) Close() error {
	return c.Reader.Close()
}
