package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avdeev-m/ticketline/config"
	"github.com/avdeev-m/ticketline/internal/email"
	"github.com/avdeev-m/ticketline/internal/kafka"
	"github.com/avdeev-m/ticketline/internal/paystack"
	"github.com/avdeev-m/ticketline/internal/repository"
	"github.com/avdeev-m/ticketline/internal/scheduler"
	"github.com/avdeev-m/ticketline/internal/service/payments"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	paymentRepo := repository.NewPaymentRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	reminderRepo := repository.NewReminderRepository(pool)

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	oracle := paystack.NewClient(cfg.Paystack)
	emailSender := email.NewSender()

	paymentService := payments.NewPaymentService(
		paymentRepo,
		ticketRepo,
		eventRepo,
		reminderRepo,
		nil,
		producer,
		oracle,
		cfg.Kafka.PaymentEventsTopic,
		cfg.Payments.Currency,
		time.Duration(cfg.Payments.PendingTTLHours)*time.Hour,
		time.Duration(cfg.Payments.VerifyLockSeconds)*time.Second,
	)

	reminderScheduler := scheduler.NewReminderScheduler(reminderRepo, ticketRepo, eventRepo, emailSender, cfg.Worker.ReminderBatchSize)
	go reminderScheduler.Run(ctx, time.Duration(cfg.Worker.ReminderSweepMinutes)*time.Minute)

	// Confirmation emails ride the notifications topic so that a slow
	// mail sink never blocks the verify response.
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.PaymentEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			if event.Type != "ticket_confirmed" {
				return nil
			}
			if err := emailSender.SendTicketConfirmation(ctx, event.UserEmail, email.TicketConfirmation{
				EventTitle:   event.EventTitle,
				TicketNumber: event.TicketNumber,
				EventDate:    event.EventDate,
				Venue:        event.Venue,
				QRData:       event.QRData,
			}); err != nil {
				log.Printf("send confirmation for %s: %v", event.Reference, err)
			}
			return nil
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	expiryTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirySweepMinutes) * time.Minute)
	defer expiryTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expiryTicker.C:
			expired, err := paymentService.ExpirePendingPayments(ctx)
			if err != nil {
				log.Printf("expire payments error: %v", err)
				continue
			}
			if len(expired) > 0 {
				log.Printf("expired %d pending payments", len(expired))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
