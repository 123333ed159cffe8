package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// PaymentEvent is published on every payment/ticket lifecycle change.
// The notifications topic variant is consumed by the worker's email
// sender.
type PaymentEvent struct {
	Type         string    `json:"type"`
	Reference    string    `json:"reference"`
	EventID      string    `json:"event_id"`
	UserEmail    string    `json:"user_email"`
	TicketNumber string    `json:"ticket_number"`
	EventTitle   string    `json:"event_title"`
	EventDate    time.Time `json:"event_date"`
	Venue        string    `json:"venue"`
	QRData       string    `json:"qr_data,omitempty"`
	Status       string    `json:"status"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
