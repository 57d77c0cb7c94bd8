// Package events publishes order lifecycle events to Kafka. The
// publisher is a no-op when no brokers are configured, so local and test
// deployments run without a broker.
package events

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/anvarov/backoffice/internal/config"
)

const (
	TypeOrderCreated = "order.created"
	TypeOrderUpdated = "order.updated"
)

type OrderEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	Status     string    `json:"status"`
	Payment    string    `json:"payment"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(cfg config.KafkaConfig) *Publisher {
	var brokers []string
	for _, b := range strings.Split(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{}
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *Publisher) publish(ctx context.Context, event OrderEvent) error {
	if p.writer == nil {
		return nil
	}

	event.EventID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Type),
		Value: data,
		Time:  event.OccurredAt,
	})
}

// PublishAsync fires the event from a goroutine after the surrounding
// request has committed; failures are logged, never surfaced to the
// caller.
func (p *Publisher) PublishAsync(event OrderEvent) {
	if p.writer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.publish(ctx, event); err != nil {
			log.Printf("publish %s for order %d: %v", event.Type, event.OrderID, err)
		}
	}()
}
