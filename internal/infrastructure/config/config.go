package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// BillingWebhookToken is the shared bearer token the billing source sends
	// on webhook deliveries.
	BillingWebhookToken string `env:"BILLING_WEBHOOK_BEARER"`

	// SweepSchedule is the cron spec for the credit maintenance sweep.
	SweepSchedule string `env:"SWEEP_SCHEDULE, default=0 0 1 * *"`
	SweepWorkers  int    `env:"SWEEP_WORKERS,  default=8"`

	Mongo      MongoConfig
	Redis      RedisConfig
	OpenAI     OpenAIConfig
	ElevenLabs ElevenLabsConfig
	Media      MediaConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=story_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
}

type ElevenLabsConfig struct {
	APIKey  string `env:"ELEVENLABS_KEY"`
	BaseURL string `env:"ELEVENLABS_BASE_URL"`
}

type MediaConfig struct {
	Region    string        `env:"MEDIA_S3_REGION,     default=us-east-1"`
	Bucket    string        `env:"MEDIA_S3_BUCKET,     default=story-audio"`
	AccessKey string        `env:"MEDIA_S3_ACCESS_KEY"`
	SecretKey string        `env:"MEDIA_S3_SECRET_KEY"`
	Endpoint  string        `env:"MEDIA_S3_ENDPOINT"`
	URLTTL    time.Duration `env:"MEDIA_URL_TTL,       default=24h"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
