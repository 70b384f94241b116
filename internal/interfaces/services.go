package interfaces

import (
	"context"

	"github.com/bobmcallan/findigest/internal/models"
)

// AnalysisService builds a financial report for a company name
type AnalysisService interface {
	// Analyze resolves, fetches, derives and narrates a full report
	Analyze(ctx context.Context, company string) (*models.FinancialReport, error)
}
