package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/events"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/rabbitmq"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/repository/memory"
	"github.com/Domenick1991/flightbooking/internal/server"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/service/payment"
	"github.com/Domenick1991/flightbooking/internal/service/users"
	"github.com/Domenick1991/flightbooking/internal/session"
	"github.com/Domenick1991/flightbooking/internal/tx"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

func main() {
	clearTables := pflag.Bool("clear-tables", false, "delete all users and reservations, reset the reservation counter and exit")
	pflag.Parse()

	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, appLog)

	store, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		appLog.Fatalw("open store", "driver", cfg.Database.Driver, "error", err)
	}
	defer closeStore()

	if *clearTables {
		if err := store.Maintenance.ClearTables(ctx); err != nil {
			appLog.Fatalw("clear tables", "error", err)
		}
		appLog.Infow("tables cleared")
		return
	}

	producer, closeProducer, err := openProducer(ctx, cfg)
	if err != nil {
		appLog.Fatalw("open event producer", "broker", cfg.Events.Broker, "error", err)
	}
	defer closeProducer()

	topic := cfg.Kafka.ReservationTopic
	var emitterOpts []events.EmitterOption
	if cfg.Events.Broker == config.BrokerRabbitMQ {
		topic = cfg.RabbitMQ.Queue
	} else {
		emitterOpts = append(emitterOpts, events.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))
	}
	emitter := events.NewEmitter(producer, topic, emitterOpts...)

	txc := tx.NewController(store.Tx, tx.Policy{
		MaxAttempts: cfg.Tx.MaxAttempts,
		BaseDelay:   cfg.Tx.BaseDelay(),
		MaxDelay:    cfg.Tx.MaxDelay(),
	}, tx.WithLogger(appLog.WithComponent("tx")))

	flightService := flights.NewFlightService(store.Flights, openSearchCache(ctx, cfg))
	svc := session.Services{
		Users:   users.NewUserService(store.Users, txc),
		Flights: flightService,
		Booking: booking.NewBookingService(store.Flights, store.Reservations, txc, booking.WithEvents(emitter)),
		Payment: payment.NewPaymentService(store.Flights, store.Reservations, store.Users, txc, payment.WithEvents(emitter)),
	}
	newSession := func() *session.Session { return session.New(svc) }

	sessionHandler := api.NewSessionHandler(newSession, api.WithIdleTTL(cfg.Booking.SessionIdleTTL()))
	go sessionHandler.RunJanitor(ctx, time.Minute)

	router := api.NewRouter(api.NewFlightHandler(flightService), sessionHandler)
	sessions := server.New(newSession, server.WithLogger(appLog.WithComponent("sessions")))

	if err := bootstrap.NewServers(cfg, sessions, router).Run(ctx, cfg.Server.Address); err != nil {
		appLog.Fatalw("server error", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (*repository.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		store := memory.New()
		if cfg.FlightsFile != "" {
			f, err := os.Open(cfg.FlightsFile)
			if err != nil {
				return nil, nil, fmt.Errorf("open flights file: %w", err)
			}
			defer f.Close()
			n, err := store.LoadFlightsCSV(f)
			if err != nil {
				return nil, nil, err
			}
			logger.Info(ctx, "flights loaded", "count", n, "file", cfg.FlightsFile)
		}
		return store.Repositories(), func() {}, nil

	default:
		poolCfg := repository.DefaultPoolConfig(cfg.DSN())
		poolCfg.MaxConns = cfg.MaxConns
		pool, err := repository.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPGStore(pool), pool.Close, nil
	}
}

func openProducer(ctx context.Context, cfg *config.Config) (events.Producer, func(), error) {
	switch cfg.Events.Broker {
	case config.BrokerKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn(ctx, "kafka not reachable at startup", "error", err)
		}
		return producer, func() { _ = producer.Close() }, nil

	case config.BrokerRabbitMQ:
		publisher, err := rabbitmq.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, nil, err
		}
		return publisher, func() { _ = publisher.Close() }, nil

	default:
		return nil, func() {}, nil
	}
}

// openSearchCache returns nil when Redis is not configured or not reachable;
// searches then always hit the store.
func openSearchCache(ctx context.Context, cfg *config.Config) flights.SearchCache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.SearchCacheTTL())
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn(ctx, "redis unavailable, search cache disabled", "error", err)
		return nil
	}
	return redisCache
}
