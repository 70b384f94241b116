// Package interfaces defines service contracts for findigest
package interfaces

import (
	"context"

	"github.com/bobmcallan/findigest/internal/models"
)

// FinancialDataClient provides access to the financial data provider
type FinancialDataClient interface {
	// SearchTicker returns ticker matches for a free-text company name on one exchange
	SearchTicker(ctx context.Context, query string, limit int, exchange string) ([]*models.TickerMatch, error)

	// GetProfile retrieves the company profile; nil when the provider returns no profile
	GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error)

	// GetIncomeStatements retrieves up to limit yearly income statements, newest first
	GetIncomeStatements(ctx context.Context, symbol string, limit int) ([]models.IncomeStatementYear, error)

	// GetCashFlowStatements retrieves up to limit yearly cash-flow statements, newest first
	GetCashFlowStatements(ctx context.Context, symbol string, limit int) ([]models.CashFlowYear, error)

	// ScreenPeers lists companies in an industry
	ScreenPeers(ctx context.Context, industry string, limit int) ([]models.PeerSummary, error)
}

// LanguageModel generates free text from a prompt. Output structure is not guaranteed.
type LanguageModel interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
