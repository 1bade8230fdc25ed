package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ms-tradein/internal/config"
	"ms-tradein/internal/kafka"
	"ms-tradein/internal/logger"
	"ms-tradein/internal/notify"
)

// The notifier turns events from the notification topic into emails.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	defer log.Close()

	if !cfg.Kafka.Enabled {
		log.Fatal("KAFKA", "KAFKA_ENABLED=false, nothing to consume; the service sends email in-process")
	}
	if cfg.Email.MockMode {
		log.Warn("MAIL", "Mock mode: emails are logged, not sent")
	}

	if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.NotificationTopic}, log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}

	sender := notify.NewSender(notify.NewMailClient(cfg.Email, log))
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic, cfg.Kafka.GroupID, log)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("APP", fmt.Sprintf("Notifier consuming %s as %s", cfg.Kafka.NotificationTopic, cfg.Kafka.GroupID))
	if err := consumer.Start(ctx, sender.Handle); err != nil {
		log.Error("KAFKA", err.Error())
		return
	}
	log.Info("APP", "Notifier stopped")
}
