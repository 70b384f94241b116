// Package common provides shared utilities for findigest
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for findigest
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Clients     ClientsConfig  `toml:"clients"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// ClientsConfig holds upstream API client configurations
type ClientsConfig struct {
	FMP    FMPConfig    `toml:"fmp"`
	LLM    LLMConfig    `toml:"llm"`
	Gemini GeminiConfig `toml:"gemini"`
	OpenAI OpenAIConfig `toml:"openai"`
	Claude ClaudeConfig `toml:"claude"`
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	APIKey    string `toml:"api_key"`
	Exchange  string `toml:"exchange" validate:"required"`
	UserAgent string `toml:"user_agent"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FMPConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LLMConfig selects the language model backend used for narratives
type LLMConfig struct {
	Provider string `toml:"provider" validate:"oneof=gemini openai claude"`
	Timeout  string `toml:"timeout"`
}

// GetTimeout parses and returns the per-call timeout
func (c *LLMConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// ClaudeConfig holds Anthropic API configuration
type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// AnalysisConfig tunes the report pipeline
type AnalysisConfig struct {
	HistoryYears        int    `toml:"history_years" validate:"min=1"`
	PeerLimit           int    `toml:"peer_limit" validate:"min=0"`
	PeerConcurrency     int    `toml:"peer_concurrency" validate:"min=1"`
	MarketShareIndustry string `toml:"market_share_industry"`
	CommentaryAttempts  int    `toml:"commentary_attempts" validate:"min=1"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string   `toml:"level"`
	Outputs []string `toml:"outputs"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Clients: ClientsConfig{
			FMP: FMPConfig{
				BaseURL:   "https://financialmodelingprep.com/api/v3",
				Exchange:  "NASDAQ",
				UserAgent: "Mozilla/5.0",
				RateLimit: 10,
				Timeout:   "30s",
			},
			LLM: LLMConfig{
				Provider: "gemini",
				Timeout:  "60s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-1.5-flash",
			},
			OpenAI: OpenAIConfig{
				Model: "gpt-4o-mini",
			},
			Claude: ClaudeConfig{
				Model:     "claude-3-5-haiku-latest",
				MaxTokens: 1024,
			},
		},
		Analysis: AnalysisConfig{
			HistoryYears:        5,
			PeerLimit:           5,
			PeerConcurrency:     5,
			MarketShareIndustry: "automobile",
			CommentaryAttempts:  2,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINDIGEST_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FINDIGEST_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FINDIGEST_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FINDIGEST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if provider := os.Getenv("FINDIGEST_LLM_PROVIDER"); provider != "" {
		config.Clients.LLM.Provider = strings.ToLower(provider)
	}

	if exchange := os.Getenv("FINDIGEST_FMP_EXCHANGE"); exchange != "" {
		config.Clients.FMP.Exchange = strings.ToUpper(exchange)
	}
}

// Validate checks the config against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from the environment, falling back to the config value.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"fmp_api_key":       {"FMP_API_KEY", "FINDIGEST_FMP_API_KEY"},
		"gemini_api_key":    {"GEMINI_API_KEY", "FINDIGEST_GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"openai_api_key":    {"OPENAI_API_KEY", "FINDIGEST_OPENAI_API_KEY"},
		"anthropic_api_key": {"ANTHROPIC_API_KEY", "FINDIGEST_ANTHROPIC_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
