package models

// NotReported is the display marker substituted for absent numeric fields.
const NotReported = "Not reported by company"

// AnalyzeRequest is the inbound body of an analysis request.
type AnalyzeRequest struct {
	Company string `json:"company" validate:"required"`
}

// HistoricalTrends holds parallel per-year series, oldest first.
type HistoricalTrends struct {
	Years         []string  `json:"years"`
	Revenue       []float64 `json:"revenue"`
	NetIncome     []float64 `json:"netIncome"`
	GrossMargins  []float64 `json:"grossMargins"`
	ProfitMargins []float64 `json:"profitMargins"`
}

// CashFlowTrend holds parallel per-year cash-flow series, oldest first.
type CashFlowTrend struct {
	Years     []string  `json:"years"`
	Operating []float64 `json:"operating"`
	Investing []float64 `json:"investing"`
	Financing []float64 `json:"financing"`
}

// IndustryInsights groups competitor metrics for the company's industry.
type IndustryInsights struct {
	Competitors []PeerMetric `json:"competitors"`
}

// MarketShare expresses revenue shares in percent of the peer-group total.
type MarketShare struct {
	Company     float64   `json:"company"`
	Competitors []float64 `json:"competitors"`
}

// ForecastPoint is the revenue and net income for one fiscal year.
type ForecastPoint struct {
	Revenue   float64 `json:"revenue"`
	NetIncome float64 `json:"netIncome"`
}

// NewsItem is a headline attached to a report. The analysis pipeline has no
// news source and always returns an empty list; the shape is reserved for the
// frontend, which renders these fields when present.
type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Publisher string `json:"publisher,omitempty"`
}

// FinancialReport is the composite analysis payload.
//
// Fields typed any carry either a number or a "not reported" string; clients
// must accept both.
type FinancialReport struct {
	Company       string  `json:"company"`
	Symbol        string  `json:"symbol"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry,omitempty"`
	MarketCap     float64 `json:"marketCap"`
	Revenue       float64 `json:"revenue"`
	NetIncome     float64 `json:"netIncome"`
	GrossMargins  any     `json:"grossMargins"`
	ProfitMargins any     `json:"profitMargins"`
	PERatio       any     `json:"peRatio"`
	PBRatio       any     `json:"pbRatio"`
	NetMargin     any     `json:"netMargin"`

	HistoricalTrends HistoricalTrends         `json:"historicalTrends"`
	CashFlow         CashFlowTrend            `json:"cashFlow"`
	IndustryInsights *IndustryInsights        `json:"industryInsights,omitempty"`
	MarketShare      *MarketShare             `json:"marketShare,omitempty"`
	Forecast         map[string]ForecastPoint `json:"forecast"`

	Comments            map[string]string `json:"comments,omitempty"`
	Insight             string            `json:"insight"`
	InsightPoints       []string          `json:"insightPoints,omitempty"`
	MarketInsights      string            `json:"marketInsights"`
	MarketInsightPoints []string          `json:"marketInsightPoints,omitempty"`
	GraphInference      string            `json:"graphInference"`
	News                []NewsItem        `json:"news"`

	QualitativeFactors any `json:"qualitativeFactors"`
	CompanySegregation any `json:"companySegregation"`
	CurrentInvestments any `json:"currentInvestments"`
	FutureInvestments  any `json:"futureInvestments"`
	FutureDemands      any `json:"futureDemands"`
	FinancialHealth    any `json:"financialHealth"`
}
