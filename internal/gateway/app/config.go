package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SecretKey string // Required in prod: HMAC verification secret shared with the auth service

	AuthHeader string // Request header carrying tokens (default: Authorization)
	AuthPrefix string // Token prefix inside the header (default: "Bearer ")

	AuthURL  string // Upstream auth service base URL (default: http://localhost:8081)
	UserURL  string // Upstream user service base URL (default: http://localhost:8082)
	StoreURL string // Upstream store service base URL (default: http://localhost:8083)

	OpenFavorites bool // Dev toggle: leave favorite/unfavorite open to guests (default: true)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		SecretKey: getEnvOrDefault("SECRET_KEY", "JwtSecretKey"),

		AuthHeader: getEnvOrDefault("AUTH_HEADER", "Authorization"),
		AuthPrefix: getEnvOrDefault("AUTH_PREFIX", "Bearer "),

		AuthURL:  getEnvOrDefault("AUTH_URL", "http://localhost:8081"),
		UserURL:  getEnvOrDefault("USER_URL", "http://localhost:8082"),
		StoreURL: getEnvOrDefault("STORE_URL", "http://localhost:8083"),

		OpenFavorites: getEnvBoolOrDefault("OPEN_FAVORITES", true),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
