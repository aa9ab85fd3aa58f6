package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Values come from environment
// variables so main stays lean and deployments stay twelve-factor.
type Config struct {
	Addr          string
	JWTSigningKey string
	AdminToken    string

	PostgresDSN string
	Redis       RedisConfig
	Kafka       KafkaConfig

	// ActivityBuffer sets the async activity-recorder buffer size.
	// Zero means synchronous recording.
	ActivityBuffer int
}

// RedisConfig holds connection settings for the optional Redis cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the optional Kafka activity sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("FLAGDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("FLAGDESK_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("FLAGDESK_KAFKA_TOPIC")
	if topic == "" {
		topic = "flagdesk.activity"
	}

	return Config{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		AdminToken:    os.Getenv("FLAGDESK_ADMIN_TOKEN"),
		PostgresDSN:   os.Getenv("FLAGDESK_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("FLAGDESK_REDIS_URL"),
			PoolSize:     intFromEnv("FLAGDESK_REDIS_POOL_SIZE", 10),
			MinIdleConns: intFromEnv("FLAGDESK_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("FLAGDESK_KAFKA_BROKERS")),
			Topic:   topic,
		},
		ActivityBuffer: intFromEnv("FLAGDESK_ACTIVITY_BUFFER", 256),
	}
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
