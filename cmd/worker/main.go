package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/notify"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	workerLog, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer workerLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, workerLog.WithComponent("notifier"))

	topic := cfg.Kafka.NotificationsTopic
	if topic == "" {
		topic = cfg.Kafka.ReservationTopic
	}
	if len(cfg.Kafka.Brokers) == 0 || topic == "" {
		workerLog.Fatalw("kafka brokers and a topic are required")
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic)
	defer consumer.Close()

	sender := notify.NewSender(nil)

	workerLog.Infow("consuming reservation events", "topic", topic, "group", cfg.Kafka.GroupID)
	err = consumer.Consume(ctx, func(ctx context.Context, event domain.ReservationEvent) error {
		if err := sender.Send(ctx, event); err != nil {
			logger.Error(ctx, "notification failed", "event_id", event.ID, "error", err)
		}
		return nil
	})
	if err != nil {
		workerLog.Errorw("consumer stopped", "error", err)
		return
	}
	workerLog.Infow("shutting down")
}
