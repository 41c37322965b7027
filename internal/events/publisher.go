package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/segmentio/kafka-go"
)

const OrdersTopic = "storefront-orders"

// OrderSubmitted is the message written for every order that reached the store inbox.
type OrderSubmitted struct {
	Type        string    `json:"type"`
	Reference   string    `json:"reference"`
	Email       string    `json:"email"`
	Items       int       `json:"items"`
	Total       string    `json:"total"`
	Savings     string    `json:"savings"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	log    *slog.Logger
}

func NewKafkaPublisher(log *slog.Logger, brokers ...string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  OrdersTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, log)
}

func newKafkaPublisher(writer messageWriter, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) PublishOrderSubmitted(ctx context.Context, order *domain.Order) error {
	items := 0
	for _, line := range order.Lines {
		items += line.Quantity
	}

	payload, err := json.Marshal(OrderSubmitted{
		Type:        "order.submitted",
		Reference:   order.Reference,
		Email:       order.Contact.Email,
		Items:       items,
		Total:       order.Total.StringFixed(2),
		Savings:     order.Savings.StringFixed(2),
		SubmittedAt: order.SubmittedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.Reference),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write order event failed: %w", err)
	}

	p.log.DebugContext(ctx, "order event published", "reference", order.Reference, "topic", OrdersTopic)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderSubmitted(context.Context, *domain.Order) error { return nil }

func (NopPublisher) Close() error { return nil }
