package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"channelwatch/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Telegram      TelegramConfig
	Source        SourceConfig
	Workers       WorkerConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"channelwatch"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type PostgresConfig struct {
	// Enabled=false runs with the in-memory store (development only)
	Enabled  bool   `envconfig:"POSTGRES_ENABLED" default:"true"`
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"channelwatch"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"channelwatch"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	// Enabled=false falls back to in-process de-dup that resets on restart
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"true"`
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	SeenTTL  time.Duration `envconfig:"REDIS_SEEN_TTL" default:"720h"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"true"`
	Debug    bool   `envconfig:"TELEGRAM_DEBUG" default:"false"`
}

// SourceConfig configures the external creator-metrics API
type SourceConfig struct {
	BaseURL string `envconfig:"SOURCE_BASE_URL" required:"true"`
	// APIKeys is a comma-separated pool rotated through on quota errors
	APIKeys       []string      `envconfig:"SOURCE_API_KEYS" required:"true"`
	Region        string        `envconfig:"SOURCE_REGION" default:"US"`
	Timeout       time.Duration `envconfig:"SOURCE_TIMEOUT" default:"10s"`
	RatePerSecond int           `envconfig:"SOURCE_RATE_PER_SECOND" default:"5"`
	RateBurst     int           `envconfig:"SOURCE_RATE_BURST" default:"10"`
}

// WorkerConfig contains intervals and tuning for the two scheduler loops.
// The tier check frequency ratio (every cycle / 2h / 24h) and the post-gap
// ratios are fixed policy; everything here is the knob around them.
type WorkerConfig struct {
	MetricsInterval   time.Duration `envconfig:"WORKER_METRICS_INTERVAL" default:"20m"`
	DiscoveryInterval time.Duration `envconfig:"WORKER_DISCOVERY_INTERVAL" default:"24h"`

	InterChannelDelay time.Duration `envconfig:"WORKER_INTER_CHANNEL_DELAY" default:"1s"`
	RetentionDays     int           `envconfig:"WORKER_RETENTION_DAYS" default:"7"`

	MinPostGapTier1 time.Duration `envconfig:"WORKER_MIN_POST_GAP_TIER1" default:"4h"`
	MinPostGapTier2 time.Duration `envconfig:"WORKER_MIN_POST_GAP_TIER2" default:"6h"`
	MinPostGapTier3 time.Duration `envconfig:"WORKER_MIN_POST_GAP_TIER3" default:"12h"`

	DiscoveryTrendingLimit int `envconfig:"WORKER_DISCOVERY_TRENDING_LIMIT" default:"50"`
	DiscoveryTopK          int `envconfig:"WORKER_DISCOVERY_TOP_K" default:"5"`
}

type MetricsConfig struct {
	Enabled    bool   `envconfig:"METRICS_ENABLED" default:"true"`
	ListenAddr string `envconfig:"METRICS_LISTEN_ADDR" default:":9090"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
