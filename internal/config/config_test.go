package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "backoffice.orders", cfg.Kafka.Topic)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("API_KEY", "k-123")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "7")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("UPLOAD_MAX_BYTES", "1048576")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, "k-123", cfg.Server.APIKey)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(1<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "broker-1:9092,broker-2:9092", cfg.Kafka.Brokers)
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("SERVER_WRITE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
}
