package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// External recipe catalog
	SpoonacularAPIKey  string
	SpoonacularBaseURL string
	SpoonacularTimeout time.Duration
	DailyQuota         int

	// Embedding provider (OpenAI-compatible endpoint)
	EmbeddingHost  string
	EmbeddingModel string

	// LLM provider: "groq", "ollama" or empty/none for disabled
	LLMProvider string
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string
	OllamaHost  string
	OllamaModel string
	LLMTimeout  time.Duration

	// Logging
	LogLevel string
}

// Load creates a Config from environment variables, reading a .env file
// first when one is present. The catalog API key is required: without it the
// process must not start.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		ServerHost:         getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:         getEnv("SERVER_PORT", "5001"),
		SpoonacularAPIKey:  os.Getenv("SPOONACULAR_API_KEY"),
		SpoonacularBaseURL: getEnv("SPOONACULAR_BASE_URL", "https://api.spoonacular.com/recipes"),
		SpoonacularTimeout: getEnvAsDuration("SPOONACULAR_TIMEOUT", 10*time.Second),
		DailyQuota:         getEnvAsInt("DAILY_API_QUOTA", 150),
		EmbeddingHost:      getEnv("EMBEDDING_HOST", "http://localhost:8081/v1"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		LLMProvider:        getEnv("LLM_PROVIDER", "none"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:        os.Getenv("GROQ_API_URL"),
		GroqModel:          getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		OllamaHost:         os.Getenv("OLLAMA_HOST"),
		OllamaModel:        getEnv("OLLAMA_MODEL", "llama3.1:8b"),
		LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.SpoonacularAPIKey == "" {
		return fmt.Errorf("SPOONACULAR_API_KEY environment variable is not set; create a .env file with your API key")
	}
	if c.DailyQuota <= 0 {
		return fmt.Errorf("DAILY_API_QUOTA must be positive")
	}
	return nil
}

// Address returns the HTTP server address.
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
