// Package app wires configuration, clients and services into a runnable application
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bobmcallan/findigest/internal/clients/claude"
	"github.com/bobmcallan/findigest/internal/clients/fmp"
	"github.com/bobmcallan/findigest/internal/clients/gemini"
	"github.com/bobmcallan/findigest/internal/clients/openai"
	"github.com/bobmcallan/findigest/internal/common"
	"github.com/bobmcallan/findigest/internal/interfaces"
	"github.com/bobmcallan/findigest/internal/metrics"
	"github.com/bobmcallan/findigest/internal/services/analysis"
)

// App holds all initialized clients and services.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Metrics         *metrics.Metrics
	FMPClient       interfaces.FinancialDataClient
	LanguageModel   interfaces.LanguageModel
	AnalysisService interfaces.AnalysisService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, FINDIGEST_CONFIG, then the
// binary dir, then the development fallback.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("FINDIGEST_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "findigest.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/findigest.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes clients and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	m := metrics.New()

	fmpKey, err := common.ResolveAPIKey("fmp_api_key", config.Clients.FMP.APIKey)
	if err != nil {
		logger.Warn().Msg("FMP API key not configured - company lookups will fail")
	}

	fmpClient := fmp.NewClient(fmpKey,
		fmp.WithBaseURL(config.Clients.FMP.BaseURL),
		fmp.WithLogger(logger),
		fmp.WithRateLimit(config.Clients.FMP.RateLimit),
		fmp.WithTimeout(config.Clients.FMP.GetTimeout()),
		fmp.WithUserAgent(config.Clients.FMP.UserAgent),
		fmp.WithRequestObserver(m.ObserveUpstream),
	)

	llm, err := NewLanguageModel(context.Background(), config, logger)
	if err != nil {
		return nil, err
	}

	analysisService := analysis.NewService(fmpClient, llm, config, logger, m)

	a := &App{
		Config:          config,
		Logger:          logger,
		Metrics:         m,
		FMPClient:       fmpClient,
		LanguageModel:   llm,
		AnalysisService: analysisService,
		StartupTime:     startupStart,
	}

	logger.Info().
		Str("llm_provider", config.Clients.LLM.Provider).
		Str("exchange", config.Clients.FMP.Exchange).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// NewLanguageModel builds the client for the configured provider.
func NewLanguageModel(ctx context.Context, config *common.Config, logger *common.Logger) (interfaces.LanguageModel, error) {
	clients := config.Clients

	switch clients.LLM.Provider {
	case "openai":
		key, err := common.ResolveAPIKey("openai_api_key", clients.OpenAI.APIKey)
		if err != nil {
			return nil, fmt.Errorf("openai provider selected: %w", err)
		}
		return openai.NewClient(key,
			openai.WithModel(clients.OpenAI.Model),
			openai.WithBaseURL(clients.OpenAI.BaseURL),
			openai.WithLogger(logger),
		), nil

	case "claude":
		key, err := common.ResolveAPIKey("anthropic_api_key", clients.Claude.APIKey)
		if err != nil {
			return nil, fmt.Errorf("claude provider selected: %w", err)
		}
		return claude.NewClient(key, []claude.ClientOption{
			claude.WithModel(clients.Claude.Model),
			claude.WithMaxTokens(clients.Claude.MaxTokens),
			claude.WithLogger(logger),
		}, option.WithRequestTimeout(clients.LLM.GetTimeout())), nil

	case "gemini", "":
		key, err := common.ResolveAPIKey("gemini_api_key", clients.Gemini.APIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini provider selected: %w", err)
		}
		client, err := gemini.NewClient(ctx, key,
			gemini.WithModel(clients.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q", clients.LLM.Provider)
	}
}

// Close releases application resources.
func (a *App) Close() {
	a.Logger.Info().Msg("App closed")
}
