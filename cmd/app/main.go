package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avdeev-m/ticketline/config"
	"github.com/avdeev-m/ticketline/internal/bootstrap"
	"github.com/avdeev-m/ticketline/internal/cache"
	"github.com/avdeev-m/ticketline/internal/kafka"
	"github.com/avdeev-m/ticketline/internal/paystack"
	"github.com/avdeev-m/ticketline/internal/repository"
	"github.com/avdeev-m/ticketline/internal/service/events"
	"github.com/avdeev-m/ticketline/internal/service/payments"
	"github.com/avdeev-m/ticketline/internal/service/tickets"
	"github.com/jackc/pgx/v5/pgxpool"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Payments.EventsCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	oracle := paystack.NewClient(cfg.Paystack)

	paymentRepo := repository.NewPaymentRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	reminderRepo := repository.NewReminderRepository(pool)

	eventService := events.NewEventService(eventRepo, redisCache)
	ticketService := tickets.NewTicketService(ticketRepo, eventRepo, reminderRepo)
	paymentService := payments.NewPaymentService(
		paymentRepo,
		ticketRepo,
		eventRepo,
		reminderRepo,
		redisCache,
		producer,
		oracle,
		cfg.Kafka.PaymentEventsTopic,
		cfg.Payments.Currency,
		time.Duration(cfg.Payments.PendingTTLHours)*time.Hour,
		time.Duration(cfg.Payments.VerifyLockSeconds)*time.Second,
		payments.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, paymentService, ticketService, eventService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
