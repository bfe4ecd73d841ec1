// Package config provides configuration management for Loom.
// It loads settings from environment variables with the LOOM_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration settings for the Loom server.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	LLM      LLMConfig
	Security SecurityConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 7171)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	Engine      string // Storage engine: sqlite, postgres (default: sqlite)
	SQLitePath  string // Path to the SQLite database file (default: ./data/loom.db)
	PostgresDSN string // Postgres DSN when Engine is postgres
}

// LLMConfig contains language-model provider configuration.
type LLMConfig struct {
	Provider       string // LLM provider: ollama, openai (default: ollama)
	OllamaURL      string // Ollama API URL (default: http://localhost:11434)
	Model          string // Model name for extraction/summarization (default: qwen2.5:7b)
	EmbeddingModel string // Model name for embeddings (default: nomic-embed-text)
	OpenAIAPIKey   string // OpenAI API key
	OpenAIModel    string // OpenAI model name (default: gpt-4o-mini)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	Mode     string // Security mode: development, production (default: development)
	APIToken string // API authentication token (required in production mode)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the LOOM_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("LOOM_PORT", 7171),
			Host: getEnv("LOOM_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			Engine:      getEnv("LOOM_STORAGE_ENGINE", "sqlite"),
			SQLitePath:  getEnv("LOOM_SQLITE_PATH", "./data/loom.db"),
			PostgresDSN: getEnv("LOOM_POSTGRES_DSN", ""),
		},
		LLM: LLMConfig{
			Provider:       getEnv("LOOM_LLM_PROVIDER", "ollama"),
			OllamaURL:      getEnv("LOOM_OLLAMA_URL", "http://localhost:11434"),
			Model:          getEnv("LOOM_MODEL", "qwen2.5:7b"),
			EmbeddingModel: getEnv("LOOM_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIAPIKey:   getEnv("LOOM_OPENAI_API_KEY", ""),
			OpenAIModel:    getEnv("LOOM_OPENAI_MODEL", "gpt-4o-mini"),
		},
		Security: SecurityConfig{
			Mode:     getEnv("LOOM_SECURITY_MODE", "development"),
			APIToken: getEnv("LOOM_API_TOKEN", ""),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
