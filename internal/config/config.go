package config

import (
	"os"
	"strconv"
	"time"

	"coachlens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// AIConfig holds generative-AI endpoint settings
type AIConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
	TopK            int
	TopP            float64
	Timeout         time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
	// MaxConcurrentGenerations caps simultaneous outbound LLM calls.
	MaxConcurrentGenerations int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	aiConfig, err := loadAIConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}
	config.AI = *aiConfig

	config.Server = *loadServerConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:     url,
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadAIConfig() (*AIConfig, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.ConfigInvalid("GEMINI_API_KEY is required")
	}

	return &AIConfig{
		APIKey:          apiKey,
		Model:           getEnvOrDefault("LLM_MODEL", "gemini-2.0-flash"),
		BaseURL:         getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1"),
		Temperature:     getEnvFloatOrDefault("LLM_TEMPERATURE", 0.7),
		MaxOutputTokens: getEnvIntOrDefault("LLM_MAX_TOKENS", 2048),
		TopK:            getEnvIntOrDefault("LLM_TOP_K", 40),
		TopP:            getEnvFloatOrDefault("LLM_TOP_P", 0.95),
		Timeout:         getEnvDurationOrDefault("LLM_TIMEOUT", 30*time.Second),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:                     getEnvOrDefault("PORT", "8080"),
		MaxConcurrentGenerations: int64(getEnvIntOrDefault("MAX_CONCURRENT_GENERATIONS", 4)),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.AI.APIKey == "" {
		return errors.ConfigInvalid("Gemini API key is required")
	}
	if config.AI.Timeout <= 0 {
		return errors.ConfigInvalid("LLM timeout must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
