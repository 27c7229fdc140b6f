package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment
// variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisAddr   string

	AdminToken string

	ChatProvider      string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIAdminModel  string
	OpenAIPublicModel string
	OpenAIBaseURL     string
	OpenAIOrg         string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiAdminModel  string
	GeminiPublicModel string
	GeminiBaseURL     string

	GenTemperature float64
	GenMaxTokens   int

	RateLimitPolicyFile string

	SweepSchedule    string
	JobRetentionDays int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where sensible. DATABASE_URL is the only hard requirement.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		AdminToken: os.Getenv("ADMIN_TOKEN"),

		ChatProvider:      getEnv("CHAT_PROVIDER", "openai"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       os.Getenv("OPENAI_MODEL"),
		OpenAIAdminModel:  os.Getenv("OPENAI_ADMIN_MODEL"),
		OpenAIPublicModel: os.Getenv("OPENAI_PUBLIC_MODEL"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:         os.Getenv("OPENAI_ORG"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       os.Getenv("GEMINI_MODEL"),
		GeminiAdminModel:  os.Getenv("GEMINI_ADMIN_MODEL"),
		GeminiPublicModel: os.Getenv("GEMINI_PUBLIC_MODEL"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		GenTemperature: getEnvFloat("GEN_TEMPERATURE", 0.8),
		GenMaxTokens:   getEnvInt("GEN_MAX_TOKENS", 2048),

		RateLimitPolicyFile: os.Getenv("RATE_LIMIT_POLICY_FILE"),

		SweepSchedule:    getEnv("SWEEP_SCHEDULE", "0 4 * * *"),
		JobRetentionDays: getEnvInt("JOB_RETENTION_DAYS", 90),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
