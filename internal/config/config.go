package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	AppPort       string
	AppVersion    string
	StoreDriver   string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Base URL the referral links point at (?ref=CODE is appended)
	ReferralBaseURL string

	// Defaults used when the reward_config table is empty or unavailable
	Rewards domain.RewardConfig

	JanitorInterval time.Duration

	APIRateLimit    int
	APIRateWindow   time.Duration
	ClaimRateLimit  int
	ClaimRateWindow time.Duration
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// Parse builds the config from a getenv-style lookup
func Parse(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:         orDefault(getenv("APP_PORT"), "8080"),
		AppVersion:      orDefault(getenv("APP_VERSION"), "dev"),
		StoreDriver:     strings.ToLower(orDefault(getenv("STORE_DRIVER"), DriverPostgres)),
		DatabaseURL:     getenv("DATABASE_URL"),
		JWTSecret:       getenv("JWT_SECRET"),
		AllowedOrigin:   getenv("ALLOWED_ORIGIN"),
		LogLevel:        orDefault(getenv("LOG_LEVEL"), "info"),
		LogJSON:         getenv("LOG_JSON") == "true",
		RedisAddr:       getenv("REDIS_ADDR"),
		RedisPassword:   getenv("REDIS_PASSWORD"),
		ReferralBaseURL: strings.TrimRight(orDefault(getenv("REFERRAL_BASE_URL"), "http://localhost:5173"), "/"),
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	cfg.RedisDB = intEnv(getenv, "REDIS_DB", 0)

	// Reward defaults (same amounts the dashboard advertises)
	cfg.Rewards = domain.RewardConfig{
		DailyReward:      int64(intEnv(getenv, "DAILY_REWARD", 5)),
		ReferralReward:   int64(intEnv(getenv, "REFERRAL_REWARD", 25)),
		ShareStackReward: int64(intEnv(getenv, "SHARE_STACK_REWARD", 10)),
		TopToolReward:    int64(intEnv(getenv, "TOP_TOOL_REWARD", 25)),
	}

	cfg.JanitorInterval = time.Duration(intEnv(getenv, "JANITOR_INTERVAL_SECONDS", 300)) * time.Second

	cfg.APIRateLimit = intEnv(getenv, "API_RATE_LIMIT", 120)
	cfg.APIRateWindow = time.Duration(intEnv(getenv, "API_RATE_WINDOW_SECONDS", 60)) * time.Second
	cfg.ClaimRateLimit = intEnv(getenv, "CLAIM_RATE_LIMIT", 20)
	cfg.ClaimRateWindow = time.Duration(intEnv(getenv, "CLAIM_RATE_WINDOW_SECONDS", 60)) * time.Second

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// intEnv reads a positive integer, falling back to def on absence or garbage
func intEnv(getenv func(string) string, key string, def int) int {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
