package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/mailer"
	"github.com/Winan03/AeroFlash-app/internal/worker"
	"github.com/Winan03/AeroFlash-app/pkg/config"
	"github.com/Winan03/AeroFlash-app/pkg/kafka"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
	"github.com/Winan03/AeroFlash-app/pkg/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: "notification-worker",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	appLog.Info("Starting notification worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailCfg := &mailer.Config{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		SenderEmail: cfg.SMTP.SenderEmail,
		SenderName:  cfg.SMTP.SenderName,
		Timeout:     cfg.SMTP.Timeout,
	}
	transport, err := mailer.NewSMTPTransport(mailCfg)
	if err != nil {
		appLog.Fatal("Failed to configure SMTP client", zap.Error(err))
	}
	ticketMailer, err := mailer.New(transport, mailCfg)
	if err != nil {
		appLog.Fatal("Failed to create mailer", zap.Error(err))
	}

	consumer, err := kafka.NewConsumer(ctx, &kafka.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.ConsumerGroup,
		Topics:         []string{cfg.Kafka.TicketTopic},
		ClientID:       cfg.Kafka.ClientID + "-notification",
		MaxRetries:     10,
		RetryInterval:  2 * time.Second,
		SessionTimeout: 30 * time.Second,
		MaxPollRecords: 50,
	})
	if err != nil {
		appLog.Fatal("Failed to create Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	// Exhausted messages go to the DLQ when a producer is available
	var dlqProducer retry.JSONProducer
	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Kafka.Brokers,
		ClientID:      cfg.Kafka.ClientID + "-notification-dlq",
		MaxRetries:    3,
		RetryInterval: time.Second,
	})
	if err != nil {
		appLog.Warn("DLQ producer unavailable, exhausted messages will only be logged", zap.Error(err))
	} else {
		defer producer.Close()
		dlqProducer = producer
	}

	notificationWorker := worker.NewNotificationWorker(consumer, ticketMailer, dlqProducer, &worker.NotificationWorkerConfig{
		Retry: &retry.Config{
			MaxRetries:      3,
			InitialInterval: 2 * time.Second,
			MaxInterval:     30 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
	})
	if err := notificationWorker.Start(ctx); err != nil {
		appLog.Fatal("Failed to start notification worker", zap.Error(err))
	}
	appLog.Info("Notification worker started", zap.String("topic", cfg.Kafka.TicketTopic))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	appLog.Info("Shutting down notification worker...")
	notificationWorker.Stop()
	cancel()
	appLog.Info("Notification worker stopped")
}
