package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	JWTSecret       string
	JWTTTL          time.Duration
	SaltRound       int
	SessionSecret   string
	CookieSecure    bool
	StripeKey       string
	PaymentTimeout  time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CatalogCacheTTL time.Duration
	LogLevel        string
}

// Load reads the configuration from the environment, after merging an
// optional .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using lookup for every variable.
func FromEnv(lookup func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := lookup(key); v != "" {
			return v
		}
		return def
	}

	var missing []string
	required := func(key string) string {
		v := lookup(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		HTTPPort:      get("HTTP_PORT", "3000"),
		MongoURI:      required("MONGO_URI"),
		MongoDBName:   get("MONGO_DB_NAME", "shop"),
		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: lookup("REDIS_PASSWORD"),
		KafkaBrokers:  splitList(lookup("KAFKA_BROKERS")),
		JWTSecret:     required("JWT_SECRET"),
		SessionSecret: required("SESSION_SECRET"),
		StripeKey:     required("STRIPE_KEY"),
		LogLevel:      get("LOG_LEVEL", "info"),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.SaltRound, err = strconv.Atoi(get("SALT_ROUND", "10")); err != nil {
		return nil, fmt.Errorf("invalid SALT_ROUND: %w", err)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(get("COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"JWT_TTL", "24h", &cfg.JWTTTL},
		{"PAYMENT_TIMEOUT", "15s", &cfg.PaymentTimeout},
		{"REQUEST_TIMEOUT", "30s", &cfg.RequestTimeout},
		{"SHUTDOWN_TIMEOUT", "10s", &cfg.ShutdownTimeout},
		{"CATALOG_CACHE_TTL", "15m", &cfg.CatalogCacheTTL},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(get(d.key, d.def)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
