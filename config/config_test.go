package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "KAFKA_BROKERS", "IDEMPOTENCY_TTL_SECONDS", "LOW_STOCK_THRESHOLD", "RATE_LIMIT_RPS", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 24*time.Hour, cfg.Business.IdempotencyTTL)
	assert.Equal(t, 5, cfg.Business.LowStockThreshold)
	assert.Zero(t, cfg.Server.RateLimitRPS)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("LOW_STOCK_THRESHOLD", "notanumber")
	t.Setenv("RATE_LIMIT_RPS", "12.5")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg := Load()
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, time.Minute, cfg.Business.IdempotencyTTL)
	assert.Equal(t, 5, cfg.Business.LowStockThreshold)
	assert.Equal(t, 12.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestEmptyRedisAddrDisablesRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()
	assert.Empty(t, cfg.Redis.Addr)
}
