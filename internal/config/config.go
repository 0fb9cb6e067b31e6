package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// LearningAPIURL is the base URL of the remote learning-content API that
	// owns question data, user records and score persistence.
	LearningAPIURL     string
	LearningAPITimeout time.Duration

	// RedisURL enables the question-payload cache when non-empty. The service
	// runs fine without it; fetches just always go to the remote API.
	RedisURL string
	CacheTTL time.Duration

	// Quiz defaults, used when the remote quiz metadata omits a field.
	DefaultTimeLimitSeconds    int
	DefaultPassingScorePercent int

	// Quick-drill settings.
	DrillQuestionCount    int
	DrillTimeLimitSeconds int

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:                 getEnv("SERVER_PORT", "8080"),
		GinMode:                    getEnv("GIN_MODE", "debug"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "pretty"),
		LearningAPIURL:             getEnv("LEARNING_API_URL", "http://localhost:5000"),
		LearningAPITimeout:         time.Duration(getEnvInt("LEARNING_API_TIMEOUT_SECONDS", 10)) * time.Second,
		RedisURL:                   getEnv("REDIS_URL", ""),
		CacheTTL:                   time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		DefaultTimeLimitSeconds:    getEnvInt("DEFAULT_TIME_LIMIT_SECONDS", 600),
		DefaultPassingScorePercent: getEnvInt("DEFAULT_PASSING_SCORE_PERCENT", 60),
		DrillQuestionCount:         getEnvInt("DRILL_QUESTION_COUNT", 10),
		DrillTimeLimitSeconds:      getEnvInt("DRILL_TIME_LIMIT_SECONDS", 120),
		AllowedOrigins:             parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
