package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/findigest/internal/common"
	"github.com/bobmcallan/findigest/internal/models"
)

// --- Mocks ---

type mockFMP struct {
	mu sync.Mutex

	search      []*models.TickerMatch
	searchErr   error
	profiles    map[string]*models.CompanyProfile
	profileErrs map[string]error
	income      map[string][]models.IncomeStatementYear
	incomeErrs  map[string]error
	cashFlow    map[string][]models.CashFlowYear
	cashFlowErr error
	peers       []models.PeerSummary
	peersErr    error

	calls        map[string]int
	incomeLimits map[string]int
}

func newMockFMP() *mockFMP {
	return &mockFMP{
		profiles:     map[string]*models.CompanyProfile{},
		profileErrs:  map[string]error{},
		income:       map[string][]models.IncomeStatementYear{},
		incomeErrs:   map[string]error{},
		cashFlow:     map[string][]models.CashFlowYear{},
		calls:        map[string]int{},
		incomeLimits: map[string]int{},
	}
}

func (m *mockFMP) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
}

func (m *mockFMP) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockFMP) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *mockFMP) SearchTicker(_ context.Context, _ string, _ int, _ string) ([]*models.TickerMatch, error) {
	m.record("SearchTicker")
	return m.search, m.searchErr
}

func (m *mockFMP) GetProfile(_ context.Context, symbol string) (*models.CompanyProfile, error) {
	m.record("GetProfile")
	if err := m.profileErrs[symbol]; err != nil {
		return nil, err
	}
	return m.profiles[symbol], nil
}

func (m *mockFMP) GetIncomeStatements(_ context.Context, symbol string, limit int) ([]models.IncomeStatementYear, error) {
	m.record("GetIncomeStatements")
	m.mu.Lock()
	m.incomeLimits[symbol] = limit
	m.mu.Unlock()
	if err := m.incomeErrs[symbol]; err != nil {
		return nil, err
	}
	years := m.income[symbol]
	if len(years) > limit {
		years = years[:limit]
	}
	return years, nil
}

func (m *mockFMP) GetCashFlowStatements(_ context.Context, symbol string, limit int) ([]models.CashFlowYear, error) {
	m.record("GetCashFlowStatements")
	if m.cashFlowErr != nil {
		return nil, m.cashFlowErr
	}
	years := m.cashFlow[symbol]
	if len(years) > limit {
		years = years[:limit]
	}
	return years, nil
}

func (m *mockFMP) ScreenPeers(_ context.Context, _ string, _ int) ([]models.PeerSummary, error) {
	m.record("ScreenPeers")
	return m.peers, m.peersErr
}

type reply struct {
	text string
	err  error
	// untilCancel blocks the call until its context ends.
	untilCancel bool
}

// mockLLM routes prompts to per-section reply queues. The last reply of a
// queue repeats.
type mockLLM struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   map[string]int
	prompts map[string][]string
}

func newMockLLM() *mockLLM {
	return &mockLLM{
		replies: map[string][]reply{
			sectionCommentary:     {{text: validCommentary}},
			sectionInsight:        {{text: "* Strong brand loyalty\n* Expanding product line\n* Positive investor sentiment"}},
			sectionMarketInsights: {{text: "- Revenue grew 18.8% year over year\n- Net margin of 15.5% leads the peer group"}},
			sectionCashFlow:       {{text: "Operating cash flow remains strong while investing outflows rose."}},
		},
		calls:   map[string]int{},
		prompts: map[string][]string{},
	}
}

const validCommentary = `{"revenue": "Revenue grew strongly.", "netIncome": "Net income rose.", "grossMargins": "Gross margins narrowed.", "profitMargins": "Profit margins are healthy.", "peRatio": "Valuation is elevated.", "pbRatio": "Book multiple is not reported."}`

func classifyPrompt(prompt string) string {
	switch {
	case strings.Contains(prompt, "Provide a one-sentence insight for each metric"),
		strings.HasPrefix(prompt, "The following is not valid JSON"):
		return sectionCommentary
	case strings.HasPrefix(prompt, "Write 3 professional financial insight"):
		return sectionInsight
	case strings.Contains(prompt, "Based on the following real data"):
		return sectionMarketInsights
	case strings.Contains(prompt, "Based on the following cash flow data"):
		return sectionCashFlow
	default:
		return "unknown"
	}
}

func (m *mockLLM) set(section string, replies ...reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[section] = replies
}

func (m *mockLLM) GenerateContent(ctx context.Context, prompt string) (string, error) {
	section := classifyPrompt(prompt)

	m.mu.Lock()
	n := m.calls[section]
	m.calls[section]++
	m.prompts[section] = append(m.prompts[section], prompt)

	queue := m.replies[section]
	if len(queue) == 0 {
		m.mu.Unlock()
		return "", errors.New("no reply configured")
	}
	if n >= len(queue) {
		n = len(queue) - 1
	}
	r := queue[n]
	m.mu.Unlock()

	if r.untilCancel {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return r.text, r.err
}

func (m *mockLLM) callCount(section string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[section]
}

func (m *mockLLM) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *mockLLM) promptsFor(section string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts[section]...)
}

type mockRecorder struct {
	mu        sync.Mutex
	outcomes  []string
	degraded  []string
	modelErrs int
}

func (r *mockRecorder) ObserveAnalysis(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *mockRecorder) ObserveModelCall(_ string, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.modelErrs++
	}
}

func (r *mockRecorder) NarrativeDegraded(section string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded = append(r.degraded, section)
}

// --- Fixtures ---

func ptr(v float64) *float64 { return &v }

// newTeslaFMP returns provider data for Tesla with two years of statements,
// an automobile industry and two peers.
func newTeslaFMP() *mockFMP {
	m := newMockFMP()
	m.search = []*models.TickerMatch{{Symbol: "TSLA", Name: "Tesla, Inc.", Exchange: "NASDAQ"}}

	m.profiles["TSLA"] = &models.CompanyProfile{
		Symbol:       "TSLA",
		CompanyName:  "Tesla, Inc.",
		Sector:       "Consumer Cyclical",
		Industry:     "Automobile Manufacturers",
		MarketCap:    750000000000,
		PE:           ptr(60.5),
		DebtToEquity: ptr(0.18),
		CurrentRatio: ptr(1.73),
	}
	m.income["TSLA"] = []models.IncomeStatementYear{
		{CalendarYear: "2023", Revenue: 96773000000, NetIncome: 14997000000, GrossProfit: 17660000000, ResearchAndDevelopmentExpenses: ptr(3969000000)},
		{CalendarYear: "2022", Revenue: 81462000000, NetIncome: 12556000000, GrossProfit: 20853000000},
	}
	m.cashFlow["TSLA"] = []models.CashFlowYear{
		{CalendarYear: "2023", OperatingCashFlow: 13256000000, CashflowFromInvestment: -15584000000, CashflowFromFinancing: 2589000000, CapitalExpenditure: ptr(-8898000000)},
		{CalendarYear: "2022", OperatingCashFlow: 14724000000, CashflowFromInvestment: -11973000000, CashflowFromFinancing: -3527000000},
	}

	m.peers = []models.PeerSummary{
		{Symbol: "TSLA", CompanyName: "Tesla, Inc.", Industry: "Automobile Manufacturers"},
		{Symbol: "F", CompanyName: "Ford Motor Company", Industry: "Automobile Manufacturers"},
		{Symbol: "GM", CompanyName: "General Motors Company", Industry: "Automobile Manufacturers"},
	}
	m.profiles["F"] = &models.CompanyProfile{Symbol: "F", CompanyName: "Ford Motor Company", MarketCap: 48000000000}
	m.profiles["GM"] = &models.CompanyProfile{Symbol: "GM", CompanyName: "General Motors Company", MarketCap: 45000000000}
	m.income["F"] = []models.IncomeStatementYear{{CalendarYear: "2023", Revenue: 176191000000, NetIncome: 4347000000, GrossProfit: 24910000000}}
	m.income["GM"] = []models.IncomeStatementYear{{CalendarYear: "2023", Revenue: 171842000000, NetIncome: 10127000000, GrossProfit: 21827000000}}

	return m
}

func newTestConfig() *common.Config {
	cfg := common.NewDefaultConfig()
	cfg.Clients.LLM.Timeout = "5s"
	return cfg
}

func newTestService(fmp *mockFMP, llm *mockLLM, recorder Recorder) *Service {
	return NewService(fmp, llm, newTestConfig(), common.NewSilentLogger(), recorder)
}
