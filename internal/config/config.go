package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the server reads from the environment.
// LLM provider selection and API keys are read separately by the llm
// package, since provider construction owns those knobs.
type Config struct {
	Port    string
	BaseURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	CacheDir string
	RedisURL string
	CacheTTL time.Duration

	SMTPHost    string
	SMTPPort    string
	BotEmail    string
	BotPassword string

	GapThreshold float64
}

// Load reads .env if present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env")
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		BaseURL: getEnv("BASE_URL", "http://localhost:3000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "reteach_user"),
		DBPassword: getEnv("DB_PASSWORD", "reteach_password"),
		DBName:     getEnv("DB_NAME", "reteach"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		CacheDir: getEnv("LLM_CACHE_DIR", ".llm_cache"),
		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getEnvDuration("LLM_CACHE_TTL", 7*24*time.Hour),

		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		BotEmail:    getEnv("BOT_EMAIL", ""),
		BotPassword: getEnv("BOT_PASSWORD", ""),

		GapThreshold: getEnvFloat("GAP_THRESHOLD", 0),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("WARN: [config] invalid %s=%q, using default", key, value)
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("WARN: [config] invalid %s=%q, using default", key, value)
		return fallback
	}
	return parsed
}
