package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig(nil)

	assert.Equal(t, 4000, cfg.port)
	assert.Equal(t, "postgres", cfg.storage)
	assert.Equal(t, 100, cfg.limiter.Limit)
	assert.Equal(t, time.Minute, cfg.limiter.Window)
	assert.False(t, cfg.limiter.Enforce)
	assert.Empty(t, cfg.kafka.brokers)
}

func TestLoadConfig_EnvironmentThenFlags(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LIMITER_ENFORCE", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg := loadConfig([]string{"-port", "9000", "-storage", "memory", "-limiter-window", "30s"})

	assert.Equal(t, 9000, cfg.port, "flags override the environment")
	assert.Equal(t, "memory", cfg.storage)
	assert.True(t, cfg.limiter.Enforce)
	assert.Equal(t, 30*time.Second, cfg.limiter.Window)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.kafka.brokers)
}
