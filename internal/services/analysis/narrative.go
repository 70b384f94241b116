package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/findigest/internal/common"
	"github.com/bobmcallan/findigest/internal/models"
)

// MarketInsightsUnavailable replaces market insights when generation fails.
const MarketInsightsUnavailable = "Unable to generate market insights due to data error."

const (
	sectionCommentary     = "commentary"
	sectionInsight        = "insight"
	sectionMarketInsights = "market_insights"
	sectionCashFlow       = "cash_flow"
)

// narrative holds the model-generated parts of a report.
type narrative struct {
	comments        map[string]string
	cashFlowComment string
	insight         string
	marketInsights  string
}

func (n *narrative) apply(r *models.FinancialReport) {
	r.Comments = n.comments
	if n.cashFlowComment != "" {
		if r.Comments == nil {
			r.Comments = map[string]string{}
		}
		r.Comments["cashFlow"] = n.cashFlowComment
	}
	r.Insight = n.insight
	r.InsightPoints = extractBullets(n.insight)
	r.MarketInsights = n.marketInsights
	if n.marketInsights != MarketInsightsUnavailable {
		r.MarketInsightPoints = extractBullets(n.marketInsights)
	}
}

// generateNarrative issues the four model calls concurrently. Commentary and
// insight failures abort the request; market insights and cash-flow inference
// degrade. A call cut short by a fatal sibling is not a degradation.
func (s *Service) generateNarrative(ctx context.Context, logger *common.Logger, data *companyData, report *models.FinancialReport) (*narrative, error) {
	n := &narrative{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		policy := RepairPolicy{
			MaxAttempts: s.config.CommentaryAttempts,
			Corrective:  commentaryCorrectivePrompt,
		}
		comments, err := generateStructured(gctx, s.generator(sectionCommentary), commentaryPrompt(data), policy, parseCommentary)
		if err != nil {
			var callErr *ModelCallError
			if errors.As(err, &callErr) {
				return &Error{Kind: KindCommentary, Message: "Failed to generate comments.", Err: err}
			}
			return wrap(ErrCommentaryGeneration, err)
		}
		n.comments = comments
		return nil
	})

	g.Go(func() error {
		text, err := s.generate(gctx, sectionInsight, insightPrompt(data, report))
		if err != nil {
			return wrap(ErrInsightGeneration, err)
		}
		n.insight = text
		return nil
	})

	g.Go(func() error {
		text, err := s.generate(gctx, sectionMarketInsights, marketInsightPrompt(data, report))
		if err != nil {
			if gctx.Err() != nil {
				return nil
			}
			logger.Warn().Err(err).Msg("Market insights generation failed, using placeholder")
			s.recorder.NarrativeDegraded(sectionMarketInsights)
			n.marketInsights = MarketInsightsUnavailable
			return nil
		}
		n.marketInsights = text
		return nil
	})

	g.Go(func() error {
		text, err := s.generate(gctx, sectionCashFlow, cashFlowPrompt(report.CashFlow))
		if err != nil {
			if gctx.Err() != nil {
				return nil
			}
			logger.Warn().Err(err).Msg("Cash flow inference failed, omitting")
			s.recorder.NarrativeDegraded(sectionCashFlow)
			return nil
		}
		n.cashFlowComment = text
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return n, nil
}

// generate issues one bounded model call and returns the trimmed text.
// Empty output counts as a failure.
func (s *Service) generate(ctx context.Context, section, prompt string) (string, error) {
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.llm.GenerateContent(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty model response")
	}
	s.recorder.ObserveModelCall(section, err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", section, err)
	}
	return strings.TrimSpace(text), nil
}

func (s *Service) generator(section string) generateFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		return s.generate(ctx, section, prompt)
	}
}

// latestRatios are the raw, pre-display figures used in prompts.
func latestRatios(data *companyData) (latest models.IncomeStatementYear, gross, profit float64) {
	if len(data.income) > 0 {
		latest = data.income[0]
	}
	return latest, SafeRatio(latest.GrossProfit, latest.Revenue), SafeRatio(latest.NetIncome, latest.Revenue)
}

func commentaryPrompt(data *companyData) string {
	latest, gross, profit := latestRatios(data)
	return fmt.Sprintf(`You are a financial analyst. Provide a one-sentence insight for each metric below.
Return valid JSON with keys: %s

- Revenue: %s
- Net Income: %s
- Gross Margins: %s
- Profit Margins: %s
- PE Ratio: %s
- PB Ratio: %s
`,
		strings.Join(commentaryKeys, ", "),
		formatNumber(latest.Revenue),
		formatNumber(latest.NetIncome),
		formatNumber(gross),
		formatNumber(profit),
		formatOptional(data.profile.PE),
		formatOptional(data.profile.PriceToBookRatio),
	)
}

func commentaryCorrectivePrompt(invalid string) string {
	prompt := fmt.Sprintf(`The following is not valid JSON. Please correct it and return only valid JSON with keys: %s. Do not include any extra text.

Original output:
%s
`, strings.Join(commentaryKeys, ", "), strings.TrimSpace(invalid))

	if draft := repairDraft(invalid); draft != "" {
		prompt += fmt.Sprintf(`
A partially recovered draft, which may be incomplete:
%s
`, draft)
	}
	return prompt
}

func insightPrompt(data *companyData, report *models.FinancialReport) string {
	latest, gross, profit := latestRatios(data)
	return fmt.Sprintf(`Write 3 professional financial insight bullet points based on this company:
- Sector: %s
- Market Cap: %s
- Revenue: %s
- Net Income: %s
- Gross Margins: %s
- Profit Margins: %s
- PE Ratio: %s
- PB Ratio: %s
Avoid numbers. Focus on trends and sentiment.
`,
		report.Sector,
		formatNumber(report.MarketCap),
		formatNumber(latest.Revenue),
		formatNumber(latest.NetIncome),
		formatNumber(gross),
		formatNumber(profit),
		formatOptional(data.profile.PE),
		formatOptional(data.profile.PriceToBookRatio),
	)
}

// marketInsightPrompt uses the display values so the model sees which
// figures were not reported.
func marketInsightPrompt(data *companyData, report *models.FinancialReport) string {
	return fmt.Sprintf(`You are a financial analyst. Based on the following real data, provide 2-3 deep, analytical, and insightful bullet points about this company's financial performance, trends, and risks. Use real numbers and trends, avoid generic statements. If a value is missing, use the best available context or explain why it's missing.

- Company: %s
- Sector: %s
- Industry: %s
- Market Cap: %s
- Revenue: %s
- Net Income: %s
- Gross Margin: %s
- Profit Margin: %s
- PE Ratio: %s
- PB Ratio: %s
- Debt/Equity: %s
- Current Ratio: %s
- Quick Ratio: %s
- Historical Revenue: %s
- Historical Net Income: %s
- Cash Flow: %s
`,
		report.Company,
		report.Sector,
		orNA(report.Industry),
		formatNumber(report.MarketCap),
		formatNumber(report.Revenue),
		formatNumber(report.NetIncome),
		formatDisplay(report.GrossMargins),
		formatDisplay(report.ProfitMargins),
		formatDisplay(report.PERatio),
		formatDisplay(report.PBRatio),
		formatOptional(data.profile.DebtToEquity),
		formatOptional(data.profile.CurrentRatio),
		formatOptional(data.profile.QuickRatio),
		formatSeries(report.HistoricalTrends.Revenue),
		formatSeries(report.HistoricalTrends.NetIncome),
		formatCashFlow(report.CashFlow),
	)
}

func cashFlowPrompt(cf models.CashFlowTrend) string {
	return fmt.Sprintf(`You are a financial analyst. Based on the following cash flow data (operating, investing, financing for the last %d years), provide a concise, real-data-based inference (1-2 sentences) about the company's cash flow trends, strengths, and risks. Use real numbers and trends, avoid generic statements.

Operating Cash Flow: %s
Investing Cash Flow: %s
Financing Cash Flow: %s
Years: [%s]
`,
		len(cf.Years),
		formatSeries(cf.Operating),
		formatSeries(cf.Investing),
		formatSeries(cf.Financing),
		strings.Join(cf.Years, ", "),
	)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatNumber(*v)
}

func formatDisplay(v any) string {
	switch t := v.(type) {
	case float64:
		return formatNumber(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func formatSeries(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatCashFlow(cf models.CashFlowTrend) string {
	return fmt.Sprintf("years=[%s] operating=%s investing=%s financing=%s",
		strings.Join(cf.Years, ", "),
		formatSeries(cf.Operating),
		formatSeries(cf.Investing),
		formatSeries(cf.Financing),
	)
}
