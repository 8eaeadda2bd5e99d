package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server   Server
	Database Database
	Redis    RedisConfig
	Kafka    Kafka
	Citizen  Citizen
	LogLevel string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	JWTSigningKey  string
	JWTIssuer      string
	JWTAudience    string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	TrustedProxies []string
}

// Database configures the PostgreSQL pool. An empty URL selects the in-memory store.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
	AutoMigrate     bool
}

// RedisConfig configures the stats cache client. An empty URL selects the in-process cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures lifecycle event publishing. Without brokers, events stay in the outbox.
type Kafka struct {
	Brokers      string
	Topic        string
	Acks         string
	PollInterval time.Duration
	BatchSize    int
	Retention    time.Duration
}

// Citizen tunes the record workflow.
type Citizen struct {
	BusinessIDPrefix string
	StatsCacheTTL    time.Duration
	BulkConcurrency  int
	MaxBatch         int
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load reads .env files when present, then the environment.
func Load() (Config, error) {
	// Missing files are normal outside local development.
	_ = godotenv.Load(".env", "config.env")

	env := envOr("IDCARD_ENV", "local")
	cfg := Config{
		LogLevel: envOr("LOG_LEVEL", "info"),
		Server: Server{
			Addr:           envOr("IDCARD_ADDR", ":8080"),
			Environment:    env,
			JWTSigningKey:  envOr("JWT_SIGNING_KEY", devSigningKey),
			JWTIssuer:      envOr("JWT_ISSUER", "idcard"),
			JWTAudience:    envOr("JWT_AUDIENCE", "idcard-api"),
			TokenTTL:       envDuration("TOKEN_TTL", 15*time.Minute),
			RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:   int64(envInt("MAX_BODY_BYTES", 1<<20)),
			TrustedProxies: envList("TRUSTED_PROXIES"),
		},
		Database: Database{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			TxTimeout:       envDuration("DATABASE_TX_TIMEOUT", 5*time.Second),
			AutoMigrate:     envBool("DATABASE_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		},
		Kafka: Kafka{
			Brokers:      os.Getenv("KAFKA_BROKERS"),
			Topic:        envOr("KAFKA_CITIZEN_TOPIC", "idcard.citizen.events"),
			Acks:         envOr("KAFKA_ACKS", "all"),
			PollInterval: envDuration("OUTBOX_POLL_INTERVAL", time.Second),
			BatchSize:    envInt("OUTBOX_BATCH_SIZE", 100),
			Retention:    envDuration("OUTBOX_RETENTION", 7*24*time.Hour),
		},
		Citizen: Citizen{
			BusinessIDPrefix: envOr("CITIZEN_ID_PREFIX", "ET-"),
			StatsCacheTTL:    envDuration("STATS_CACHE_TTL", 30*time.Second),
			BulkConcurrency:  envInt("BULK_CONCURRENCY", 8),
			MaxBatch:         envInt("BULK_MAX_BATCH", 500),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Environment == "production" && c.Server.JWTSigningKey == devSigningKey {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.Citizen.BulkConcurrency < 1 {
		return fmt.Errorf("BULK_CONCURRENCY must be at least 1")
	}
	if c.Citizen.MaxBatch < 1 {
		return fmt.Errorf("BULK_MAX_BATCH must be at least 1")
	}
	if c.Citizen.StatsCacheTTL <= 0 {
		return fmt.Errorf("STATS_CACHE_TTL must be positive")
	}
	switch c.Kafka.Acks {
	case "all", "leader", "none":
	default:
		return fmt.Errorf("KAFKA_ACKS must be one of all, leader, none")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
