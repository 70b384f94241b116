package analysis

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bobmcallan/findigest/internal/models"
)

const (
	latestYearFallback   = "latest"
	previousYearFallback = "prev"
	nextYearFallback     = "next"
)

// Growth holds year-over-year growth rates. Known is false when there is no
// previous year to compare against.
type Growth struct {
	Revenue   float64
	NetIncome float64
	Known     bool
}

// ComputeGrowth returns (latest-previous)/previous, or 0 when previous is zero.
func ComputeGrowth(latest, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (latest - previous) / previous
}

// NextFiscalYear returns label+1 for an all-digit label, otherwise "next".
func NextFiscalYear(label string) string {
	if label == "" {
		return nextYearFallback
	}
	for _, r := range label {
		if r < '0' || r > '9' {
			return nextYearFallback
		}
	}
	year, err := strconv.Atoi(label)
	if err != nil {
		return nextYearFallback
	}
	return strconv.Itoa(year + 1)
}

// BuildForecast projects next-year revenue and net income from the two latest
// income statements (newest first). The previous-year key is omitted when only
// one year is available.
func BuildForecast(income []models.IncomeStatementYear) (map[string]models.ForecastPoint, Growth, error) {
	var latest models.IncomeStatementYear
	if len(income) > 0 {
		latest = income[0]
	}
	latestLabel := latest.CalendarYear
	if latestLabel == "" {
		latestLabel = latestYearFallback
	}

	forecast := make(map[string]models.ForecastPoint, 3)
	var growth Growth

	if len(income) > 1 {
		prev := income[1]
		prevLabel := prev.CalendarYear
		if prevLabel == "" {
			prevLabel = previousYearFallback
		}
		growth = Growth{
			Revenue:   ComputeGrowth(latest.Revenue, prev.Revenue),
			NetIncome: ComputeGrowth(latest.NetIncome, prev.NetIncome),
			Known:     true,
		}
		forecast[prevLabel] = models.ForecastPoint{Revenue: prev.Revenue, NetIncome: prev.NetIncome}
	}

	forecast[latestLabel] = models.ForecastPoint{Revenue: latest.Revenue, NetIncome: latest.NetIncome}

	next := models.ForecastPoint{
		Revenue:   round2(latest.Revenue * (1 + growth.Revenue)),
		NetIncome: round2(latest.NetIncome * (1 + growth.NetIncome)),
	}
	if !isFinite(next.Revenue) || !isFinite(next.NetIncome) {
		return nil, growth, wrap(ErrForecast, fmt.Errorf("non-finite projection for %s", NextFiscalYear(latest.CalendarYear)))
	}
	forecast[NextFiscalYear(latest.CalendarYear)] = next

	return forecast, growth, nil
}

// InferTrend classifies the sign of revenue and net-income growth.
func InferTrend(g Growth) string {
	if !g.Known {
		return "Insufficient data to determine growth trends."
	}
	switch {
	case g.Revenue > 0 && g.NetIncome > 0:
		return "Both revenue and net income have increased compared to last year, indicating positive growth."
	case g.Revenue > 0 && g.NetIncome < 0:
		return "Revenue has grown, but net income has decreased, suggesting rising costs or reduced profitability."
	case g.Revenue < 0 && g.NetIncome > 0:
		return "Revenue has declined, but net income increased, indicating improved efficiency or cost management."
	default:
		return "Both revenue and net income have decreased compared to last year, signaling a potential downturn."
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
