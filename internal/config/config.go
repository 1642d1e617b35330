package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Sync     SyncConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ServerConfig struct {
	Port string
}

type AppConfig struct {
	LogLevel  string
	BatchSize int
	// Store selects the repository backend: "postgres" or "memory".
	Store string
	// Timezone is used to turn timestamps into calendar days for matching.
	Timezone        string
	MatchMaxRetries int
}

type SyncConfig struct {
	ProvidersFile     string
	FetchTimeout      time.Duration
	DefaultLookback   time.Duration
	Interval          time.Duration
	ExpiryInterval    time.Duration
	LeaseTTL          time.Duration
	MaxConcurrentSync int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	batchSize, err := strconv.Atoi(getEnv("BATCH_SIZE", "500"))
	if err != nil {
		batchSize = 500
	}

	retries, err := strconv.Atoi(getEnv("MATCH_MAX_RETRIES", "3"))
	if err != nil || retries < 1 {
		retries = 3
	}

	maxConcurrent, err := strconv.Atoi(getEnv("SYNC_MAX_CONCURRENT", "4"))
	if err != nil || maxConcurrent < 1 {
		maxConcurrent = 4
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	fetchTimeout, err := getDuration("BANK_FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	lookback, err := getDuration("SYNC_DEFAULT_LOOKBACK", "720h")
	if err != nil {
		return nil, err
	}
	interval, err := getDuration("SYNC_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	expiryInterval, err := getDuration("EXPIRY_SWEEP_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	leaseTTL, err := getDuration("SYNC_LEASE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "club_recon"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			BatchSize:       batchSize,
			Store:           getEnv("STORE", "postgres"),
			Timezone:        getEnv("MATCH_TIMEZONE", "UTC"),
			MatchMaxRetries: retries,
		},
		Sync: SyncConfig{
			ProvidersFile:     getEnv("BANK_PROVIDERS_FILE", ""),
			FetchTimeout:      fetchTimeout,
			DefaultLookback:   lookback,
			Interval:          interval,
			ExpiryInterval:    expiryInterval,
			LeaseTTL:          leaseTTL,
			MaxConcurrentSync: maxConcurrent,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "club-finance-events"),
		},
	}

	if cfg.App.Store != "postgres" && cfg.App.Store != "memory" {
		return nil, fmt.Errorf("invalid STORE %q: want postgres or memory", cfg.App.Store)
	}

	return cfg, nil
}

// Location resolves the matching timezone.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid MATCH_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
