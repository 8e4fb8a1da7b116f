// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// EngineConfig holds the per-engine model override and, for the engines we
// call over plain HTTP, the base URL.
type EngineConfig struct {
	Model   string
	BaseURL string
}

type Config struct {
	Port              string
	Environment       string
	InngestEventKey   string
	InngestSigningKey string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	PerplexityAPIKey  string
	GoogleAIAPIKey    string
	DatabaseURL       string
	Database          DatabaseConfig

	// ParserModel is the model used for sentiment classification, not for
	// answering queries. OpenAIBaseURL overrides the SDK endpoint when set.
	ParserModel   string
	OpenAIBaseURL string

	OpenAIEngine     EngineConfig
	AnthropicEngine  EngineConfig
	PerplexityEngine EngineConfig
	GeminiEngine     EngineConfig

	// EngineTimeout bounds a single engine call. RunDelay is the pause
	// between processed query/engine pairs.
	EngineTimeout time.Duration
	RunDelay      time.Duration

	// RunSchedule is the cron expression for the daily monitoring run.
	RunSchedule string
}

// DatabaseConfig matches the brandsignal-api database configuration structure exactly
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

func Load() *Config {
	config := &Config{
		Port:              getEnv("PORT", "8000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		InngestEventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		InngestSigningKey: os.Getenv("INNGEST_SIGNING_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		PerplexityAPIKey:  os.Getenv("PERPLEXITY_API_KEY"),
		GoogleAIAPIKey:    os.Getenv("GOOGLE_AI_API_KEY"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ParserModel:       getEnv("PARSER_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenAIEngine: EngineConfig{
			Model: getEnv("OPENAI_ENGINE_MODEL", "gpt-4o"),
		},
		AnthropicEngine: EngineConfig{
			Model: getEnv("ANTHROPIC_ENGINE_MODEL", "claude-sonnet-4-20250514"),
		},
		PerplexityEngine: EngineConfig{
			Model:   getEnv("PERPLEXITY_ENGINE_MODEL", "llama-3.1-sonar-large-128k-online"),
			BaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		},
		GeminiEngine: EngineConfig{
			Model:   getEnv("GEMINI_ENGINE_MODEL", "gemini-2.0-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		},
		EngineTimeout: time.Duration(getEnvInt("ENGINE_TIMEOUT_SECONDS", 60)) * time.Second,
		RunDelay:      time.Duration(getEnvInt("RUN_DELAY_MS", 1500)) * time.Millisecond,
		RunSchedule:   getEnv("RUN_SCHEDULE", "0 3 * * *"),
	}

	// Parse database configuration
	dbConfig, err := parseDatabaseConfig()
	if err != nil {
		// If DATABASE_URL parsing fails, try individual env vars as fallback
		dbConfig = DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "brandsignal"),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		}
	}
	config.Database = dbConfig

	return config
}

func parseDatabaseConfig() (DatabaseConfig, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_URL not set")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	config := DatabaseConfig{
		Host:            parsedURL.Hostname(),
		Port:            5432, // default
		User:            parsedURL.User.Username(),
		Name:            parsedURL.Path[1:], // remove leading slash
		SSLMode:         getEnv("DB_SSLMODE", "require"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
	}

	if password, ok := parsedURL.User.Password(); ok {
		config.Password = password
	}

	if parsedURL.Port() != "" {
		if port, err := strconv.Atoi(parsedURL.Port()); err == nil {
			config.Port = port
		}
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
