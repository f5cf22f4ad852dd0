package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string  `yaml:"database_url"`
	ServerPort       string  `yaml:"server_port"`
	BaseURL          string  `yaml:"base_url"`
	FrontendURL      string  `yaml:"frontend_url"`
	OpenAIKey        string  `yaml:"openai_api_key"`
	AIModel          string  `yaml:"ai_model"`
	AIBaseURL        string  `yaml:"ai_base_url"`
	AIMaxTokens      int     `yaml:"ai_max_tokens"`
	AITemperature    float64 `yaml:"ai_temperature"`
	AIMaxConcurrent  int     `yaml:"ai_max_concurrent"`
	SessionSecret    string  `yaml:"session_secret"`
	SessionTTLHours  int     `yaml:"session_ttl_hours"`
	OAuthProvider    string  `yaml:"oauth_provider"`
	EnableHSTS       bool    `yaml:"enable_hsts"`
	RedisURL         string  `yaml:"redis_url"`
	RabbitMQURL      string  `yaml:"rabbitmq_url"`
	RabbitMQPrefetch int     `yaml:"rabbitmq_prefetch"`
	WorkerDebugMode  bool    `yaml:"worker_debug_mode"`
	ServerDebugMode  bool    `yaml:"server_debug_mode"`
	OTELEnabled      bool    `yaml:"otel_enabled"`
	OTELEndpoint     string  `yaml:"otel_endpoint"`
}

// Load loads configuration from an optional YAML file (CONFIG_FILE) overlaid
// with environment variables. Environment variables win.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       "8080",
		BaseURL:          "http://localhost:8080",
		FrontendURL:      "http://localhost:3000",
		AIModel:          "gpt-4o-mini",
		AIMaxTokens:      500,
		AITemperature:    0.7,
		AIMaxConcurrent:  4,
		SessionTTLHours:  24,
		OAuthProvider:    "google",
		RedisURL:         "redis://localhost:6379/0",
		RabbitMQPrefetch: 1,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	overlayEnv(cfg)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required for session token signing")
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for background summary refresh")
	}

	return cfg, nil
}

func overlayEnv(cfg *Config) {
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.AIMaxTokens = getEnvInt("AI_MAX_TOKENS", cfg.AIMaxTokens)
	cfg.AITemperature = getEnvFloat("AI_TEMPERATURE", cfg.AITemperature)
	cfg.AIMaxConcurrent = getEnvInt("AI_MAX_CONCURRENT", cfg.AIMaxConcurrent)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionTTLHours = getEnvInt("SESSION_TTL_HOURS", cfg.SessionTTLHours)
	cfg.OAuthProvider = getEnv("OAUTH_PROVIDER", cfg.OAuthProvider)
	cfg.EnableHSTS = getEnvBool("ENABLE_HSTS", cfg.EnableHSTS)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RabbitMQPrefetch = getEnvInt("RABBITMQ_PREFETCH", cfg.RabbitMQPrefetch)
	cfg.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", cfg.WorkerDebugMode)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
