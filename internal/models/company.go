// Package models defines data structures for findigest
package models

// TickerMatch is the first hit of a company-name search.
type TickerMatch struct {
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Exchange string         `json:"exchange"`
	Raw      map[string]any `json:"raw,omitempty"`
}

// CompanyProfile is a read-only snapshot of the provider's company profile.
// Pointer fields are optional; nil means the provider did not report them.
type CompanyProfile struct {
	Symbol             string   `json:"symbol"`
	CompanyName        string   `json:"companyName"`
	Sector             string   `json:"sector"`
	Industry           string   `json:"industry"`
	MarketCap          float64  `json:"marketCap"`
	PE                 *float64 `json:"pe,omitempty"`
	PriceToBookRatio   *float64 `json:"priceToBookRatio,omitempty"`
	DebtToEquity       *float64 `json:"debtToEquity,omitempty"`
	CurrentRatio       *float64 `json:"currentRatio,omitempty"`
	QuickRatio         *float64 `json:"quickRatio,omitempty"`
	CompanyDescription string   `json:"companyDescription"`
}

// IncomeStatementYear is one fiscal year of an income statement.
type IncomeStatementYear struct {
	CalendarYear                   string   `json:"calendarYear"`
	Revenue                        float64  `json:"revenue"`
	NetIncome                      float64  `json:"netIncome"`
	GrossProfit                    float64  `json:"grossProfit"`
	ResearchAndDevelopmentExpenses *float64 `json:"researchAndDevelopmentExpenses,omitempty"`
}

// CashFlowYear is one fiscal year of a cash-flow statement.
type CashFlowYear struct {
	CalendarYear           string   `json:"calendarYear"`
	OperatingCashFlow      float64  `json:"operatingCashFlow"`
	CashflowFromInvestment float64  `json:"cashflowFromInvestment"`
	CashflowFromFinancing  float64  `json:"cashflowFromFinancing"`
	CapitalExpenditure     *float64 `json:"capitalExpenditure,omitempty"`
}

// PeerSummary is one row of an industry peer screen.
type PeerSummary struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Industry    string  `json:"industry"`
	MarketCap   float64 `json:"marketCap"`
}

// PeerMetric holds derived figures for one competitor.
type PeerMetric struct {
	Symbol        string  `json:"symbol"`
	Company       string  `json:"company"`
	Revenue       float64 `json:"revenue"`
	NetIncome     float64 `json:"netIncome"`
	GrossMargins  float64 `json:"grossMargins"`
	ProfitMargins float64 `json:"profitMargins"`
	MarketCap     float64 `json:"marketCap"`
}
