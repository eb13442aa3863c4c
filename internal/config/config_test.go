package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "inventory-pipeline", cfg.ServiceName)
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, 30, cfg.CartRetentionDays)
	assert.Equal(t, 24*time.Hour, cfg.EventDedupTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "12")
	t.Setenv("CART_RETENTION_DAYS", "7")
	t.Setenv("EVENT_DEDUP_TTL", "1h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.Equal(t, 12, cfg.LowStockThreshold)
	assert.Equal(t, 7, cfg.CartRetentionDays)
	assert.Equal(t, time.Hour, cfg.EventDedupTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "not-a-number")

	cfg := Load()
	assert.Equal(t, 5, cfg.LowStockThreshold)
}
