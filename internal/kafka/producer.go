package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"bus-fleet/internal/logger"
	"bus-fleet/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Topic  string
	Logger *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Topic: topic, Logger: log}
}

// PublishSeatStatus streams a seat status change keyed by schedule, so all
// changes of one schedule land on the same partition in order.
func (p *Producer) PublishSeatStatus(ctx context.Context, event models.SeatStatusChangeEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.Logger != nil {
		p.Logger.LogKafka("PUBLISH", p.Topic, fmt.Sprintf("%s seats %v %s", event.ScheduleID, event.SeatNumbers, event.Status))
	}

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(event.ScheduleID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
