// Package analysis builds financial digest reports from provider data and
// language model commentary.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/bobmcallan/findigest/internal/common"
	"github.com/bobmcallan/findigest/internal/interfaces"
	"github.com/bobmcallan/findigest/internal/models"
)

// Recorder receives pipeline measurements. A nil Recorder is allowed.
type Recorder interface {
	ObserveAnalysis(outcome string, elapsed time.Duration)
	ObserveModelCall(section string, err error, elapsed time.Duration)
	NarrativeDegraded(section string)
}

// Service implements AnalysisService
type Service struct {
	fmp        interfaces.FinancialDataClient
	llm        interfaces.LanguageModel
	config     common.AnalysisConfig
	exchange   string
	llmTimeout time.Duration
	logger     *common.Logger
	recorder   Recorder
}

// NewService creates a new analysis service.
// recorder may be nil; measurements are then dropped.
func NewService(fmp interfaces.FinancialDataClient, llm interfaces.LanguageModel, config *common.Config, logger *common.Logger, recorder Recorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		fmp:        fmp,
		llm:        llm,
		config:     config.Analysis,
		exchange:   config.Clients.FMP.Exchange,
		llmTimeout: config.Clients.LLM.GetTimeout(),
		logger:     logger,
		recorder:   recorder,
	}
}

// Analyze resolves the company, fetches its statements and peers, derives
// metrics and a forecast, requests commentary and assembles the report.
func (s *Service) Analyze(ctx context.Context, company string) (report *models.FinancialReport, err error) {
	start := time.Now()
	logger := s.logger.WithCorrelationID(common.CorrelationIDFromContext(ctx))
	defer func() {
		s.recorder.ObserveAnalysis(Outcome(err), time.Since(start))
		if err != nil {
			logger.Error().Err(err).Str("company", company).Str("outcome", Outcome(err)).Msg("Analysis failed")
		}
	}()

	company = strings.TrimSpace(company)
	if company == "" {
		return nil, ErrCompanyNameRequired
	}

	match, err := s.resolveTicker(ctx, company)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("company", company).Str("symbol", match.Symbol).Msg("Resolved ticker")

	data, err := s.fetchCompany(ctx, match.Symbol)
	if err != nil {
		return nil, err
	}
	data.requestedName = company

	if data.profile.Industry != "" {
		data.competitors = s.fetchPeers(ctx, logger, match.Symbol, data.profile.Industry)
	}
	logger.Debug().
		Str("symbol", data.symbol).
		Int("income_years", len(data.income)).
		Int("cashflow_years", len(data.cashFlow)).
		Int("competitors", len(data.competitors)).
		Msg("Fetched company data")

	forecast, growth, err := BuildForecast(data.income)
	if err != nil {
		return nil, err
	}

	report = s.assemble(data, forecast, growth)

	narr, err := s.generateNarrative(ctx, logger, data, report)
	if err != nil {
		return nil, err
	}
	narr.apply(report)

	logger.Info().
		Str("symbol", report.Symbol).
		Dur("elapsed", time.Since(start)).
		Msg("Analysis complete")

	return report, nil
}

type nopRecorder struct{}

func (nopRecorder) ObserveAnalysis(string, time.Duration)         {}
func (nopRecorder) ObserveModelCall(string, error, time.Duration) {}
func (nopRecorder) NarrativeDegraded(string)                      {}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
