package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	CartExpiration time.Duration
	StoreBackend   string

	RedisAddr        string
	RedisPassword    string
	MongoURI         string
	MongoDBName      string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	CatalogDBPath string

	SendGridAPIKey  string
	SendGridHost    string
	OrderFromEmail  string
	OrderInboxEmail string

	KafkaBrokers []string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppEnv:           getEnv("APP_ENV", "dev"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CartExpiration:   getEnvDuration("CART_EXPIRATION", 20*time.Minute),
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", "memory")),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:      getEnv("MONGO_DB_NAME", "storefront"),
		MongoMaxPoolSize: getEnvUint("MONGO_MAX_POOL_SIZE", 100),
		MongoMinPoolSize: getEnvUint("MONGO_MIN_POOL_SIZE", 0),
		CatalogDBPath:    getEnv("CATALOG_DB_PATH", "file:catalog.db"),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		SendGridHost:     getEnv("SENDGRID_HOST", "https://api.sendgrid.com"),
		OrderFromEmail:   getEnv("ORDER_FROM_EMAIL", "pedidos@circulomatero.com.ar"),
		OrderInboxEmail:  getEnv("ORDER_INBOX_EMAIL", "ventas@circulomatero.com.ar"),
		KafkaBrokers:     getEnvList("KAFKA_BROKERS"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvUint(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Port returns HTTPPort as a number, or 0 when it is not numeric.
func (c Config) Port() int {
	n, err := strconv.Atoi(c.HTTPPort)
	if err != nil {
		return 0
	}
	return n
}

// SecureCookies reports whether cookies must carry the Secure flag. Only the
// dev environment serves plain HTTP.
func (c Config) SecureCookies() bool {
	return c.AppEnv != "dev"
}
