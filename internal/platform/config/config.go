package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr              string
	OwnerPrincipal    string
	ContractPrincipal string
	JWTSigningKey     string
	PostgresDSN       string
	Redis             RedisConfig
	Kafka             KafkaConfig
}

// RedisConfig tunes the optional asset cache. An empty URL disables redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig tunes the optional event stream. No seeds disables streaming.
type KafkaConfig struct {
	Seeds []string
	Topic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("LEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	owner := os.Getenv("LEDGER_OWNER_PRINCIPAL")
	if owner == "" {
		owner = "protocol-owner"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("LEDGER_KAFKA_TOPIC")
	if topic == "" {
		topic = "bit-holdings.events"
	}

	return Server{
		Addr:              addr,
		OwnerPrincipal:    owner,
		ContractPrincipal: os.Getenv("LEDGER_CONTRACT_PRINCIPAL"),
		JWTSigningKey:     jwtSigningKey,
		PostgresDSN:       os.Getenv("LEDGER_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("LEDGER_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Seeds: splitList(os.Getenv("LEDGER_KAFKA_SEEDS")),
			Topic: topic,
		},
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
