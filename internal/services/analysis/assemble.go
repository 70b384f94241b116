package analysis

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bobmcallan/findigest/internal/models"
)

const noData = "No data"

var amountPrinter = message.NewPrinter(language.English)

// DisplayValue substitutes the not-reported marker for nil, empty or zero
// values. Other values pass through, with optional pointers dereferenced.
func DisplayValue(value any, label string) any {
	placeholder := models.NotReported
	if label != "" {
		placeholder = label + ": " + models.NotReported
	}

	switch v := value.(type) {
	case nil:
		return placeholder
	case string:
		if v == "" {
			return placeholder
		}
	case *string:
		if v == nil || *v == "" {
			return placeholder
		}
		return *v
	case float64:
		if v == 0 {
			return placeholder
		}
	case *float64:
		if v == nil || *v == 0 {
			return placeholder
		}
		return *v
	case int:
		if v == 0 {
			return placeholder
		}
	case int64:
		if v == 0 {
			return placeholder
		}
	}
	return value
}

// applyDisplayTransform runs every display field of the report through DisplayValue.
func applyDisplayTransform(r *models.FinancialReport) {
	fields := []struct {
		label string
		value *any
	}{
		{"Gross Margin", &r.GrossMargins},
		{"Profit Margin", &r.ProfitMargins},
		{"PE Ratio", &r.PERatio},
		{"PB Ratio", &r.PBRatio},
		{"Net Margin", &r.NetMargin},
		{"Qualitative Factors", &r.QualitativeFactors},
		{"Company Segregation", &r.CompanySegregation},
		{"Future Investments", &r.FutureInvestments},
		{"Current Investments", &r.CurrentInvestments},
		{"Future Demands", &r.FutureDemands},
		{"Financial Health", &r.FinancialHealth},
	}
	for _, f := range fields {
		*f.value = DisplayValue(*f.value, f.label)
	}
}

// assemble builds the report from fetched data and derived figures. Narrative
// fields are filled in later.
func (s *Service) assemble(data *companyData, forecast map[string]models.ForecastPoint, growth Growth) *models.FinancialReport {
	p := data.profile

	var latest models.IncomeStatementYear
	if len(data.income) > 0 {
		latest = data.income[0]
	}

	company := p.CompanyName
	if company == "" {
		company = data.requestedName
	}
	sector := orNA(p.Sector)

	r := &models.FinancialReport{
		Company:          company,
		Symbol:           data.symbol,
		Sector:           sector,
		Industry:         p.Industry,
		MarketCap:        p.MarketCap,
		Revenue:          latest.Revenue,
		NetIncome:        latest.NetIncome,
		GrossMargins:     SafeRatio(latest.GrossProfit, latest.Revenue),
		ProfitMargins:    SafeRatio(latest.NetIncome, latest.Revenue),
		PERatio:          p.PE,
		PBRatio:          p.PriceToBookRatio,
		NetMargin:        SafeRatio(latest.NetIncome, latest.Revenue),
		HistoricalTrends: BuildHistoricalTrends(data.income),
		CashFlow:         BuildCashFlowTrend(data.cashFlow),
		Forecast:         forecast,
		GraphInference:   InferTrend(growth),
		News:             []models.NewsItem{},

		QualitativeFactors: "Industry: " + orNA(p.Industry) + ". Sector: " + sector + ".",
		CompanySegregation: "Company operates in " + orDefault(p.Industry, "various industries") + " with a focus on " + sector + ".",
		FutureDemands:      "Demand outlook: " + sector + " sector expected to grow based on recent trends.",
		FinancialHealth:    financialHealth(&p),
		FutureInvestments:  noData,
		CurrentInvestments: noData,
	}

	if len(data.cashFlow) > 0 && data.cashFlow[0].CapitalExpenditure != nil {
		r.CurrentInvestments = "Capital Expenditure: $" + formatAmount(*data.cashFlow[0].CapitalExpenditure)
	}
	if latest.ResearchAndDevelopmentExpenses != nil {
		r.FutureInvestments = "R&D Expenses: $" + formatAmount(*latest.ResearchAndDevelopmentExpenses)
	}

	if p.Industry != "" {
		r.IndustryInsights = &models.IndustryInsights{Competitors: data.competitors}
		if r.IndustryInsights.Competitors == nil {
			r.IndustryInsights.Competitors = []models.PeerMetric{}
		}
		if industryMatches(p.Industry, s.config.MarketShareIndustry) {
			r.MarketShare = ComputeMarketShare(latest.Revenue, data.competitors)
		}
	}

	applyDisplayTransform(r)
	return r
}

func financialHealth(p *models.CompanyProfile) string {
	return "Debt/Equity: " + ratioOrNoData(p.DebtToEquity) +
		", Current Ratio: " + ratioOrNoData(p.CurrentRatio) +
		", Quick Ratio: " + ratioOrNoData(p.QuickRatio)
}

func ratioOrNoData(v *float64) string {
	if v == nil {
		return noData
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// formatAmount groups thousands: -8898000000 -> "-8,898,000,000".
func formatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e18 {
		return amountPrinter.Sprintf("%d", int64(v))
	}
	return amountPrinter.Sprintf("%.2f", v)
}

func orNA(s string) string {
	return orDefault(s, "N/A")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
