package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const minSecretLen = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth    AuthConfig
	Store   StoreConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	SMTP    SMTPConfig
	Kafka   KafkaConfig
	Notify  NotifyConfig
	Contact ContactConfig
	Seed    SeedConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	TokenTTL   time.Duration `env:"JWT_TTL,    default=24h"`
	Issuer     string        `env:"JWT_ISSUER, default=leadgate"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

// StoreConfig selects the persistence backend: mongo, sqlite or postgres.
type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER, default=mongo"`
	DatabaseURL string `env:"DATABASE_URL"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=leadgate"`
}

// RedisConfig is optional; an empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// SMTPConfig is optional; an empty Host disables mail notifications.
type SMTPConfig struct {
	Host       string `env:"SMTP_HOST"`
	Port       int    `env:"SMTP_PORT,     default=587"`
	Username   string `env:"SMTP_USERNAME"`
	Password   string `env:"SMTP_PASSWORD"`
	TLS        bool   `env:"SMTP_TLS,      default=false"`
	From       string `env:"MAIL_FROM,     default=noreply@example.com"`
	AdminEmail string `env:"ADMIN_EMAIL,   default=admin@example.com"`
}

// KafkaConfig is optional; no brokers disables lead event publishing.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC, default=lead-events"`
}

type NotifyConfig struct {
	Workers     int           `env:"NOTIFY_WORKERS,      default=4"`
	SendTimeout time.Duration `env:"NOTIFY_SEND_TIMEOUT, default=15s"`
}

type ContactConfig struct {
	// RateLimit is the number of submissions allowed per client IP and minute.
	// Zero disables the limit.
	RateLimit int `env:"CONTACT_RATE_LIMIT, default=10"`
}

type SeedConfig struct {
	Enabled       bool   `env:"SEED_ENABLED,        default=true"`
	AdminUsername string `env:"SEED_ADMIN_USERNAME, default=admin"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD, default=admin123"`
	UserUsername  string `env:"SEED_USER_USERNAME,  default=user"`
	UserPassword  string `env:"SEED_USER_PASSWORD,  default=user123"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

// Load reads a .env file when present, then the environment, using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if !c.IsDevelopment() && len(c.Auth.JWTSecret) < minSecretLen {
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes outside development", minSecretLen)
	}
	switch c.Store.Driver {
	case "mongo":
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for STORE_DRIVER=%s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}
