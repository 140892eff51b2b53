package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	RPCPort         string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string
	AuthRequired    bool

	// External classification source.
	ClassificationSourceURL     string
	ClassificationSourceTimeout time.Duration
	ClassificationExpireDays    int
	SourceTokenURL              string
	SourceClientID              string
	SourceClientSecret          string

	// Sibling channels service (JSON-RPC).
	ChannelsRPCURL string

	// Event broker.
	AMQPURL      string
	AMQPExchange string

	// Rate limiting. Redis is used when RedisAddr is set.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "3000"),
		RPCPort:         getEnv("RPC_PORT", "3001"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:4200")),
		AuthRequired:    getEnvBool("AUTH_REQUIRED", env == "production"),

		ClassificationSourceURL:     getEnv("CLASSIFICATION_SOURCE_URL", ""),
		ClassificationSourceTimeout: getEnvDuration("CLASSIFICATION_SOURCE_TIMEOUT", 5*time.Second),
		ClassificationExpireDays:    getEnvInt("CLASSIFICATION_EXPIRATION_DAYS", 3),
		SourceTokenURL:              getEnv("CLASSIFICATION_SOURCE_TOKEN_URL", ""),
		SourceClientID:              getEnv("CLASSIFICATION_SOURCE_CLIENT_ID", ""),
		SourceClientSecret:          getEnv("CLASSIFICATION_SOURCE_CLIENT_SECRET", ""),

		ChannelsRPCURL: getEnv("CHANNELS_RPC_URL", ""),

		AMQPURL:      getEnv("RMQ_URL", ""),
		AMQPExchange: getEnv("RMQ_EXCHANGE", "application"),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 100),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid float: %v", key, err)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool: %v", key, err)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config %s invalid duration: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
