package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/repository"
	"github.com/Winan03/AeroFlash-app/internal/worker"
	"github.com/Winan03/AeroFlash-app/pkg/config"
	"github.com/Winan03/AeroFlash-app/pkg/database"
	"github.com/Winan03/AeroFlash-app/pkg/kafka"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
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
		ServiceName: "outbox-worker",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	appLog.Info("Starting outbox worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      10,
		RetryInterval:   2 * time.Second,
	})
	if err != nil {
		appLog.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		appLog.Fatal("Outbox migration failed", zap.Error(err))
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Kafka.Brokers,
		ClientID:      cfg.Kafka.ClientID + "-outbox",
		MaxRetries:    10,
		RetryInterval: 2 * time.Second,
		Linger:        5 * time.Millisecond,
	})
	if err != nil {
		appLog.Fatal("Failed to connect to Kafka", zap.Error(err))
	}
	defer producer.Close()
	appLog.Info(fmt.Sprintf("Kafka producer connected to %v", cfg.Kafka.Brokers))

	outboxWorker := worker.NewOutboxWorker(
		repository.NewPostgresOutboxRepository(db.Pool()),
		producer,
		&worker.OutboxWorkerConfig{
			PollInterval:    cfg.Outbox.PollInterval,
			BatchSize:       cfg.Outbox.BatchSize,
			RetentionPeriod: cfg.Outbox.RetentionPeriod,
		},
	)
	if err := outboxWorker.Start(ctx); err != nil {
		appLog.Fatal("Failed to start outbox worker", zap.Error(err))
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	appLog.Info("Shutting down outbox worker...")
	outboxWorker.Stop()
	cancel()
	appLog.Info("Outbox worker stopped")
}
