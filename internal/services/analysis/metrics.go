package analysis

import (
	"math"
	"strings"

	"github.com/bobmcallan/findigest/internal/models"
)

// SafeRatio divides num by den, returning 0 when den is zero.
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// BuildHistoricalTrends turns newest-first statements into oldest-first
// parallel series.
func BuildHistoricalTrends(income []models.IncomeStatementYear) models.HistoricalTrends {
	n := len(income)
	t := models.HistoricalTrends{
		Years:         make([]string, n),
		Revenue:       make([]float64, n),
		NetIncome:     make([]float64, n),
		GrossMargins:  make([]float64, n),
		ProfitMargins: make([]float64, n),
	}
	for i := range income {
		y := income[n-1-i]
		t.Years[i] = y.CalendarYear
		t.Revenue[i] = y.Revenue
		t.NetIncome[i] = y.NetIncome
		t.GrossMargins[i] = SafeRatio(y.GrossProfit, y.Revenue)
		t.ProfitMargins[i] = SafeRatio(y.NetIncome, y.Revenue)
	}
	return t
}

// BuildCashFlowTrend turns newest-first cash-flow statements into
// oldest-first parallel series.
func BuildCashFlowTrend(cashFlow []models.CashFlowYear) models.CashFlowTrend {
	n := len(cashFlow)
	t := models.CashFlowTrend{
		Years:     make([]string, n),
		Operating: make([]float64, n),
		Investing: make([]float64, n),
		Financing: make([]float64, n),
	}
	for i := range cashFlow {
		y := cashFlow[n-1-i]
		t.Years[i] = y.CalendarYear
		t.Operating[i] = y.OperatingCashFlow
		t.Investing[i] = y.CashflowFromInvestment
		t.Financing[i] = y.CashflowFromFinancing
	}
	return t
}

// BuildPeerMetric derives a competitor row from its profile and latest income statement.
func BuildPeerMetric(symbol string, profile *models.CompanyProfile, income models.IncomeStatementYear) models.PeerMetric {
	name := symbol
	var marketCap float64
	if profile != nil {
		if profile.CompanyName != "" {
			name = profile.CompanyName
		}
		marketCap = profile.MarketCap
	}
	return models.PeerMetric{
		Symbol:        symbol,
		Company:       name,
		Revenue:       income.Revenue,
		NetIncome:     income.NetIncome,
		GrossMargins:  SafeRatio(income.GrossProfit, income.Revenue),
		ProfitMargins: SafeRatio(income.NetIncome, income.Revenue),
		MarketCap:     marketCap,
	}
}

// ComputeMarketShare returns revenue shares in percent, rounded to 2 dp.
// Returns nil when the combined revenue is not positive.
func ComputeMarketShare(companyRevenue float64, competitors []models.PeerMetric) *models.MarketShare {
	total := companyRevenue
	for _, c := range competitors {
		total += c.Revenue
	}
	if total <= 0 {
		return nil
	}

	share := &models.MarketShare{
		Company:     round2(companyRevenue / total * 100),
		Competitors: make([]float64, len(competitors)),
	}
	for i, c := range competitors {
		share.Competitors[i] = round2(c.Revenue / total * 100)
	}
	return share
}

// industryMatches reports whether industry contains match, ignoring case.
func industryMatches(industry, match string) bool {
	if industry == "" || match == "" {
		return false
	}
	return strings.Contains(strings.ToLower(industry), strings.ToLower(match))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
