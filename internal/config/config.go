package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

var ErrMissingSecretKey = errors.New("STRIPE_SECRET_KEY is required")

type Config struct {
	Env     string        `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTP    HTTPConfig    `yaml:"http"`
	Stripe  StripeConfig  `yaml:"stripe"`
	Catalog CatalogConfig `yaml:"catalog"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
}

type HTTPConfig struct {
	Port string `yaml:"port" env:"PORT" env-default:"8787"`
	// FrontendURL is the only origin allowed by CORS.
	FrontendURL         string        `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	RequestTimeout      time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout     time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxRequestBodyBytes int64         `yaml:"max_request_body_bytes" env:"MAX_REQUEST_BODY_BYTES" env-default:"1048576"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	APIBase   string `yaml:"api_base" env:"STRIPE_API_BASE"`
	// Domain is the base of the success and cancel redirect URLs.
	Domain             string   `yaml:"domain" env:"DOMAIN" env-default:"http://localhost:3000"`
	Currency           string   `yaml:"currency" env:"CURRENCY" env-default:"gbp"`
	PaymentMethodTypes []string `yaml:"payment_method_types" env:"STRIPE_PAYMENT_METHOD_TYPES" env-default:"card,link,klarna,paypal"`
}

type CatalogConfig struct {
	// DBPath enables the SQLite catalog; empty means the built-in classes.
	DBPath string `yaml:"db_path" env:"CATALOG_DB_PATH"`
}

type RedisConfig struct {
	Addr           string        `yaml:"addr" env:"REDIS_ADDR"`
	Password       string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB             int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"IDEMPOTENCY_TTL" env-default:"24h"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"checkout-sessions"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load reads .env (if present), then an optional YAML file named by
// CONFIG_PATH, then the environment. Environment values win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	cfg.normalize()
	if cfg.Stripe.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return cfg
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.Stripe.SecretKey = strings.TrimSpace(c.Stripe.SecretKey)
	c.Stripe.Currency = strings.ToLower(strings.TrimSpace(c.Stripe.Currency))
	c.Stripe.Domain = strings.TrimRight(strings.TrimSpace(c.Stripe.Domain), "/")
	c.Stripe.PaymentMethodTypes = compact(c.Stripe.PaymentMethodTypes)
	c.Kafka.Brokers = compact(c.Kafka.Brokers)
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
