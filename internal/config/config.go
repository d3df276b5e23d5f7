package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"BOT_ENV" envDefault:"prod"`
	LogLevel string `env:"LOG_LEVEL"`

	BotToken     string  `env:"TELEGRAM_BOT_TOKEN"`
	SuperAdminID int64   `env:"SUPER_ADMIN_ID"`
	AdminIDs     []int64 `env:"ADMIN_IDS" envSeparator:","`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RateLimitPerSecond int           `env:"RATE_LIMIT_PER_SECOND" envDefault:"10"`
	ProfileCacheTTL    time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`

	MinProfileLength int `env:"MIN_PROFILE_LENGTH" envDefault:"10"`
	MaxProfileLength int `env:"MAX_PROFILE_LENGTH" envDefault:"5000"`

	MaxRetries   int           `env:"MAX_RETRIES_TELEGRAM" envDefault:"3"`
	RetryBackoff time.Duration `env:"RETRY_BACKOFF_BASE" envDefault:"2s"`

	ForbiddenWords []string `env:"FORBIDDEN_WORDS" envSeparator:"," envDefault:"spam,phishing,scam,hack,xxx,porn,18+,nudes"`

	SpamThreshold float64 `env:"SPAM_THRESHOLD" envDefault:"0.5"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("config.Load: no .env file found - using env variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("config.Load: TELEGRAM_BOT_TOKEN is required")
	}

	if cfg.SuperAdminID == 0 {
		return nil, fmt.Errorf("config.Load: SUPER_ADMIN_ID is required")
	}

	if cfg.DBUser == "" || cfg.DBPassword == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("config.Load: DB_USER, DB_PASSWORD, DB_NAME are required")
	}

	if cfg.LogLevel == "" {
		if strings.EqualFold(cfg.Env, "dev") {
			cfg.LogLevel = "debug"
		} else {
			cfg.LogLevel = "warn"
		}
	}

	return cfg, nil
}
