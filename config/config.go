package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Events   EventsConfig   `yaml:"events"`
	Booking  BookingConfig  `yaml:"booking"`
	Tx       TxConfig       `yaml:"tx"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

// ServerConfig is the line-protocol session listener.
type ServerConfig struct {
	Address string `yaml:"address"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name"`
	SSLMode     string `yaml:"ssl_mode"`
	MaxConns    int32  `yaml:"max_conns"`
	FlightsFile string `yaml:"flights_file"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ReservationTopic   string   `yaml:"reservation_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

const (
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
	BrokerNone     = "none"
)

type EventsConfig struct {
	Broker string `yaml:"broker"`
}

type BookingConfig struct {
	SearchCacheTTLSeconds int `yaml:"search_cache_ttl_seconds"`
	SessionIdleTTLSeconds int `yaml:"session_idle_ttl_seconds"`
}

func (b BookingConfig) SearchCacheTTL() time.Duration {
	return time.Duration(b.SearchCacheTTLSeconds) * time.Second
}

func (b BookingConfig) SessionIdleTTL() time.Duration {
	return time.Duration(b.SessionIdleTTLSeconds) * time.Second
}

type TxConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
	MaxDelayMS  int `yaml:"max_delay_ms"`
}

func (t TxConfig) BaseDelay() time.Duration {
	return time.Duration(t.BaseDelayMS) * time.Millisecond
}

func (t TxConfig) MaxDelay() time.Duration {
	return time.Duration(t.MaxDelayMS) * time.Millisecond
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":9090"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 25
	}
	if c.Events.Broker == "" {
		c.Events.Broker = BrokerNone
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "flightbooking-notifier"
	}
	if c.Booking.SearchCacheTTLSeconds == 0 {
		c.Booking.SearchCacheTTLSeconds = 300
	}
	if c.Booking.SessionIdleTTLSeconds == 0 {
		c.Booking.SessionIdleTTLSeconds = 1800
	}
	if c.Tx.MaxAttempts == 0 {
		c.Tx.MaxAttempts = 5
	}
	if c.Tx.BaseDelayMS == 0 {
		c.Tx.BaseDelayMS = 10
	}
	if c.Tx.MaxDelayMS == 0 {
		c.Tx.MaxDelayMS = 500
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Events.Broker {
	case BrokerKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.ReservationTopic == "" {
			return fmt.Errorf("events.broker kafka needs kafka.brokers and kafka.reservation_topic")
		}
	case BrokerRabbitMQ:
		if c.RabbitMQ.URL == "" || c.RabbitMQ.Queue == "" {
			return fmt.Errorf("events.broker rabbitmq needs rabbitmq.url and rabbitmq.queue")
		}
	case BrokerNone:
	default:
		return fmt.Errorf("unknown events broker %q", c.Events.Broker)
	}
	return nil
}
