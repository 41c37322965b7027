package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "CART_EXPIRATION", "STORE_BACKEND", "KAFKA_BROKERS", "REQUEST_TIMEOUT", "MONGO_MAX_POOL_SIZE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 8080, cfg.Port())
	assert.Equal(t, 20*time.Minute, cfg.CartExpiration)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, uint64(100), cfg.MongoMaxPoolSize)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CART_EXPIRATION", "45m")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port())
	assert.Equal(t, 45*time.Minute, cfg.CartExpiration)
	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("CART_EXPIRATION", "soon")
	assert.Equal(t, 20*time.Minute, Load().CartExpiration)

	t.Setenv("CART_EXPIRATION", "-5m")
	assert.Equal(t, 20*time.Minute, Load().CartExpiration)
}

func TestLoad_MongoPoolSizes(t *testing.T) {
	t.Setenv("MONGO_MAX_POOL_SIZE", "20")
	t.Setenv("MONGO_MIN_POOL_SIZE", "lots")

	cfg := Load()

	assert.Equal(t, uint64(20), cfg.MongoMaxPoolSize)
	assert.Equal(t, uint64(0), cfg.MongoMinPoolSize)
}

func TestConfig_SecureCookies(t *testing.T) {
	assert.False(t, Config{AppEnv: "dev"}.SecureCookies())
	assert.True(t, Config{AppEnv: "production"}.SecureCookies())
	assert.True(t, Config{AppEnv: "staging"}.SecureCookies())
}
