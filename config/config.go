package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT"         envDefault:"8090"`
	AppEnv      string `env:"APP_ENV"      envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront-service"`

	// RedisURL selects the Redis session repository; empty keeps sessions in memory.
	RedisURL       string        `env:"REDIS_URL"`
	SessionTTL     time.Duration `env:"SESSION_TTL"     envDefault:"30m"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	AWSEnabled          bool   `env:"AWS_ENABLED"           envDefault:"false"`
	AWSRegion           string `env:"AWS_REGION"            envDefault:"ap-northeast-2"`
	AWSEndpoint         string `env:"AWS_ENDPOINT"`
	OrderSNSTopicArn    string `env:"ORDER_SNS_TOPIC_ARN"`
	CloudWatchEnabled   bool   `env:"CLOUDWATCH_ENABLED"    envDefault:"false"`
	CloudWatchNamespace string `env:"CLOUDWATCH_NAMESPACE"  envDefault:"Storefront"`
	CloudWatchLogGroup  string `env:"CLOUDWATCH_LOG_GROUP"  envDefault:"/storefront/services"`

	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST"      envDefault:"40"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"       envDefault:"10s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS"  envDefault:"http://localhost:3000" envSeparator:","`

	AnalyticsChannel string `env:"ANALYTICS_CHANNEL" envDefault:"ecommerce"`
	Locale           string `env:"LOCALE"            envDefault:"ko-KR"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads Config from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}
