// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Postgres PostgresConfig
	DynamoDB DynamoDBConfig
	Firebase FirebaseConfig
	Campaign CampaignConfig
	Server   ServerConfig
	AMQP     AMQPConfig
	Redis    RedisConfig
	Metrics  MetricsConfig
	Log      LogConfig

	// EnvFileLoaded is false when no .env file was found and only the
	// process environment was used.
	EnvFileLoaded bool `env:"-"`
}

type PostgresConfig struct {
	Host         string `env:"PG_HOST" envDefault:"localhost"`
	Port         int    `env:"PG_PORT" envDefault:"5432"`
	Database     string `env:"PG_DATABASE"`
	User         string `env:"PG_USER"`
	Password     string `env:"PG_PASSWORD"`
	SSL          bool   `env:"PG_SSL" envDefault:"false"`
	MaxOpenConns int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
}

// DSN returns a lib/pq connection URL.
func (c PostgresConfig) DSN() string {
	sslMode := "disable"
	if c.SSL {
		sslMode = "require"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Database,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

type DynamoDBConfig struct {
	TableName string `env:"DYNAMODB_TABLE_NAME"`
	Region    string `env:"AWS_REGION" envDefault:"us-east-1"`
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string `env:"DYNAMODB_ENDPOINT"`
}

type FirebaseConfig struct {
	CredentialsFile string `env:"FIREBASE_PRIVATE_KEY_PATH"`
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
}

type CampaignConfig struct {
	ThresholdDays        int           `env:"NOTIFICATION_THRESHOLD_DAYS" envDefault:"30"`
	BatchSize            int           `env:"BATCH_SIZE" envDefault:"100"`
	ChunkSize            int           `env:"MAPPING_CHUNK_SIZE" envDefault:"1000"`
	BatchDelay           time.Duration `env:"BATCH_DELAY" envDefault:"1s"`
	ClickTrackingBaseURL string        `env:"CLICK_TRACKING_BASE_URL" envDefault:"http://localhost:3000"`
}

type ServerConfig struct {
	Port           int    `env:"PORT" envDefault:"3000"`
	DeepLinkScheme string `env:"DEEP_LINK_SCHEME" envDefault:"your-app-scheme://"`
}

func (c ServerConfig) ListenString() string {
	return fmt.Sprintf(":%d", c.Port)
}

type AMQPConfig struct {
	URL   string `env:"AMQP_URL"`
	Queue string `env:"AMQP_QUEUE" envDefault:"campaign_events"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

type MetricsConfig struct {
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
}

type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Development bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// Load reads an optional .env file and then parses the process environment.
func Load() (Config, error) {
	loaded := godotenv.Load() == nil

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.EnvFileLoaded = loaded

	if err := cfg.Campaign.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c CampaignConfig) validate() error {
	if c.ThresholdDays < 0 {
		return fmt.Errorf("NOTIFICATION_THRESHOLD_DAYS must not be negative, got %d", c.ThresholdDays)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("MAPPING_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	return nil
}
