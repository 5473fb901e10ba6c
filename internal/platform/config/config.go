package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration.
type Config struct {
	Addr         string
	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string
	AuditTopic   string
}

// PeriodTotalCacheTTL bounds staleness of cached reconciliation sums.
var PeriodTotalCacheTTL = 30 * time.Second

// FromEnv builds a Config from environment variables so main stays lean.
// Empty DATABASE_URL selects the in-memory stores; empty REDIS_URL and
// KAFKA_BROKERS disable the period cache and the Kafka audit sink.
func FromEnv() Config {
	addr := os.Getenv("PAYBOOK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "paybook.operation-log"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Addr:         addr,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: brokers,
		AuditTopic:   topic,
	}
}
