package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultEnvFile = ".env"

type Config struct {
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	MySQLDSN    string `envconfig:"MYSQL_DSN" required:"true"`
	MongoURI    string `envconfig:"MONGO_URI" required:"true"`
	MongoDBName string `envconfig:"MONGO_DB_NAME" required:"true"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8082"`
	StaticDir   string `envconfig:"STATIC_DIR" default:"./static"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	Currency            string `envconfig:"CURRENCY" default:"usd"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"gatherguru"`

	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrator"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	BookingTTL        time.Duration `envconfig:"BOOKING_TTL" default:"30m"`
	SchedulerInterval time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"1m"`
}

// Load reads the env file named by START (.env by default) and then the process environment.
// A missing default file is fine; a missing file named explicitly is not.
func Load() (*Config, error) {
	file := os.Getenv("START")
	if file == "" {
		file = defaultEnvFile
	}
	if err := godotenv.Load(file); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || os.Getenv("START") != "" {
			return nil, fmt.Errorf("env file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.BookingTTL <= 0 || cfg.SchedulerInterval <= 0 {
		return nil, errors.New("config: BOOKING_TTL and SCHEDULER_INTERVAL must be positive")
	}
	return &cfg, nil
}

// PaymentsEnabled reports whether Stripe keys are configured.
func (c *Config) PaymentsEnabled() bool {
	return c.StripeSecretKey != ""
}
