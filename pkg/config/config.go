package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "./config.yaml"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	JWT         JWTConfig         `yaml:"jwt"`
	Transfer    TransferConfig    `yaml:"transfer"`
	Identifier  IdentifierConfig  `yaml:"identifier"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Events      EventsConfig      `yaml:"events"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Logger      LoggerConfig      `yaml:"logger"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	Environment     string        `yaml:"environment"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver selects the storage backend: "postgres" or "memory".
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	DBName          string        `yaml:"name"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnectRetries  int           `yaml:"connect_retries"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Issuer string        `yaml:"issuer"`
	TTL    time.Duration `yaml:"ttl"`
}

type TransferConfig struct {
	Currency string `yaml:"currency"`
	// Amounts below are in minor units.
	InitialBalance       int64         `yaml:"initial_balance"`
	MaxAmount            int64         `yaml:"max_amount"`
	MaxDescriptionLength int           `yaml:"max_description_length"`
	Timeout              time.Duration `yaml:"timeout"`
}

type IdentifierConfig struct {
	CountryCode        string   `yaml:"country_code"`
	TrunkPrefix        string   `yaml:"trunk_prefix"`
	SubscriberPrefixes []string `yaml:"subscriber_prefixes"`
}

type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// EventsConfig sizes the background queue that delivers committed
// transfers to Kafka and WebSocket subscribers.
type EventsConfig struct {
	QueueSize      int           `yaml:"queue_size"`
	Workers        int           `yaml:"workers"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

type IdempotencyConfig struct {
	// ClaimTTL is how long an unfinished claim blocks retries before it is
	// considered abandoned.
	ClaimTTL time.Duration `yaml:"claim_ttl"`
}

type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size"`
	CheckOrigin     bool          `yaml:"check_origin"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	PingPeriod      time.Duration `yaml:"ping_period"`
}

type LoggerConfig struct {
	Level      string `yaml:"level"`
	TimeFormat string `yaml:"time_format"`
	Pretty     bool   `yaml:"pretty"`
}

// Load reads an optional .env file, then the YAML file at path with
// ${VAR} references expanded from the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = DefaultPath
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(configData)
}

func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			Environment:     "development",
			ReadTimeout:     20 * time.Second,
			WriteTimeout:    20 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			DBName:          "payments",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			ConnectRetries:  5,
		},
		JWT: JWTConfig{
			Issuer: "chamapay",
			TTL:    24 * time.Hour,
		},
		Transfer: TransferConfig{
			Currency:             "KES",
			InitialBalance:       0,
			MaxAmount:            0,
			MaxDescriptionLength: 200,
			Timeout:              10 * time.Second,
		},
		Identifier: IdentifierConfig{
			CountryCode:        "254",
			TrunkPrefix:        "0",
			SubscriberPrefixes: []string{"7", "1"},
		},
		Kafka: KafkaConfig{
			Topic:        "payments.transfer_completed",
			WriteTimeout: 5 * time.Second,
		},
		Events: EventsConfig{
			QueueSize:      1024,
			Workers:        1,
			PublishTimeout: 5 * time.Second,
		},
		Idempotency: IdempotencyConfig{
			ClaimTTL: time.Minute,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      54 * time.Second,
		},
		Logger: LoggerConfig{
			Level:      "info",
			TimeFormat: time.RFC3339,
		},
	}
}

// applyDefaults restores defaults for fields the YAML explicitly zeroed.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = d.JWT.Issuer
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = d.JWT.TTL
	}
	if c.Transfer.Currency == "" {
		c.Transfer.Currency = d.Transfer.Currency
	}
	if c.Transfer.MaxDescriptionLength <= 0 {
		c.Transfer.MaxDescriptionLength = d.Transfer.MaxDescriptionLength
	}
	if c.Transfer.Timeout <= 0 {
		c.Transfer.Timeout = d.Transfer.Timeout
	}
	if c.Identifier.CountryCode == "" {
		c.Identifier.CountryCode = d.Identifier.CountryCode
	}
	if c.Identifier.TrunkPrefix == "" {
		c.Identifier.TrunkPrefix = d.Identifier.TrunkPrefix
	}
	if len(c.Identifier.SubscriberPrefixes) == 0 {
		c.Identifier.SubscriberPrefixes = d.Identifier.SubscriberPrefixes
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = d.Kafka.Topic
	}
	if c.Events.QueueSize <= 0 {
		c.Events.QueueSize = d.Events.QueueSize
	}
	if c.Events.Workers <= 0 {
		c.Events.Workers = d.Events.Workers
	}
	if c.Events.PublishTimeout <= 0 {
		c.Events.PublishTimeout = d.Events.PublishTimeout
	}
	if c.Idempotency.ClaimTTL <= 0 {
		c.Idempotency.ClaimTTL = d.Idempotency.ClaimTTL
	}
	if c.WebSocket.PingPeriod <= 0 {
		c.WebSocket.PingPeriod = d.WebSocket.PingPeriod
	}
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Transfer.InitialBalance < 0 {
		return errors.New("transfer.initial_balance must not be negative")
	}
	if c.Transfer.MaxAmount < 0 {
		return errors.New("transfer.max_amount must not be negative")
	}
	return nil
}
