package config

import (
	"os"
	"strconv"
	"time"

	"tablecast/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Inference InferenceConfig `validate:"required"`
	Server    ServerConfig    `validate:"required"`
	Logging   LoggingConfig
}

// InferenceConfig holds model provider settings. APIKey may be empty: the
// application still boots and every analysis degrades to an explanatory
// suggestion instead of calling out.
type InferenceConfig struct {
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string `validate:"required"`
	MaxUploadBytes int64
	SessionTTL     time.Duration
}

// LoggingConfig holds log verbosity settings
type LoggingConfig struct {
	Level string
}

// Provider names accepted by INFERENCE_PROVIDER
const (
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	// Load inference configuration
	inferenceConfig, err := loadInferenceConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inference configuration")
	}
	config.Inference = *inferenceConfig

	// Load server configuration
	serverConfig := loadServerConfig()
	config.Server = *serverConfig

	// Load logging configuration
	config.Logging = LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")}

	// Validate required fields
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadInferenceConfig() (*InferenceConfig, error) {
	provider := getEnvOrDefault("INFERENCE_PROVIDER", ProviderGemini)
	if provider != ProviderGemini && provider != ProviderOffline {
		return nil, errors.ConfigInvalid("INFERENCE_PROVIDER must be gemini or offline")
	}

	return &InferenceConfig{
		Provider:        provider,
		APIKey:          os.Getenv("GEMINI_API_KEY"),
		Model:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		BaseURL:         getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		Temperature:     getEnvFloatOrDefault("TEMPERATURE", 0.1),
		MaxOutputTokens: getEnvIntOrDefault("MAX_OUTPUT_TOKENS", 2048),
		Timeout:         getEnvDurationOrDefault("INFERENCE_TIMEOUT", 60*time.Second),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 20<<20)),
		SessionTTL:     getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Inference.Model == "" {
		return errors.ConfigInvalid("inference model is required")
	}
	if config.Inference.BaseURL == "" {
		return errors.ConfigInvalid("inference base URL is required")
	}
	if config.Inference.Temperature < 0 || config.Inference.Temperature > 2 {
		return errors.ConfigInvalid("temperature must be between 0 and 2")
	}
	if config.Inference.MaxOutputTokens <= 0 {
		return errors.ConfigInvalid("max output tokens must be positive")
	}
	return nil
}

// IsConfigured reports whether the provider can actually be called.
// The offline provider needs no credential; gemini needs an API key.
func (c InferenceConfig) IsConfigured() bool {
	if c.Provider == ProviderOffline {
		return true
	}
	return c.APIKey != ""
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
