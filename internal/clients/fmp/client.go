// Package fmp provides a client for the Financial Modeling Prep API
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/findigest/internal/common"
	"github.com/bobmcallan/findigest/internal/interfaces"
	"github.com/bobmcallan/findigest/internal/models"
)

const (
	DefaultBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultUserAgent = "Mozilla/5.0"
)

// RequestObserver is notified after every upstream request.
// status is 0 when the request failed before a response arrived.
type RequestObserver func(endpoint string, status int, elapsed time.Duration)

// Client implements the FinancialDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	observer   RequestObserver
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout applied to every request
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent on every request
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRequestObserver registers a callback invoked after every request
func WithRequestObserver(observer RequestObserver) ClientOption {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient creates a new FMP client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 response from the provider
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request and decodes the JSON body into result
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("endpoint", endpoint).Str("path", path).Msg("FMP API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, start)
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, start)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return nil
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer(endpoint, status, time.Since(start))
	}
}

// SearchTicker searches for a ticker by company name on one exchange
func (c *Client) SearchTicker(ctx context.Context, query string, limit int, exchange string) ([]*models.TickerMatch, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	if exchange != "" {
		params.Set("exchange", exchange)
	}

	var raw []map[string]any
	if err := c.get(ctx, "search", "/search", params, &raw); err != nil {
		return nil, err
	}

	matches := make([]*models.TickerMatch, 0, len(raw))
	for _, item := range raw {
		matches = append(matches, &models.TickerMatch{
			Symbol:   stringField(item, "symbol"),
			Name:     stringField(item, "name"),
			Exchange: stringField(item, "exchangeShortName"),
			Raw:      item,
		})
	}

	return matches, nil
}

// GetProfile retrieves the company profile. A nil profile with nil error
// means the provider returned an empty list.
func (c *Client) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	path := fmt.Sprintf("/profile/%s", url.PathEscape(symbol))

	var resp []profileResponse
	if err := c.get(ctx, "profile", path, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, nil
	}

	p := resp[0]
	description := p.CompanyDescription
	if description == "" {
		description = p.Description
	}

	return &models.CompanyProfile{
		Symbol:             p.Symbol,
		CompanyName:        p.CompanyName,
		Sector:             p.Sector,
		Industry:           p.Industry,
		MarketCap:          float64(p.MktCap),
		PE:                 p.PE.ptr(),
		PriceToBookRatio:   p.PriceToBookRatio.ptr(),
		DebtToEquity:       p.DebtToEquity.ptr(),
		CurrentRatio:       p.CurrentRatio.ptr(),
		QuickRatio:         p.QuickRatio.ptr(),
		CompanyDescription: description,
	}, nil
}

// profileResponse represents a company profile from the FMP API
type profileResponse struct {
	Symbol             string       `json:"symbol"`
	CompanyName        string       `json:"companyName"`
	MktCap             flexFloat64  `json:"mktCap"`
	Sector             string       `json:"sector"`
	Industry           string       `json:"industry"`
	Description        string       `json:"description"`
	CompanyDescription string       `json:"companyDescription"`
	PE                 *flexFloat64 `json:"pe"`
	PriceToBookRatio   *flexFloat64 `json:"priceToBookRatio"`
	DebtToEquity       *flexFloat64 `json:"debtToEquity"`
	CurrentRatio       *flexFloat64 `json:"currentRatio"`
	QuickRatio         *flexFloat64 `json:"quickRatio"`
}

// GetIncomeStatements retrieves yearly income statements, newest first
func (c *Client) GetIncomeStatements(ctx context.Context, symbol string, limit int) ([]models.IncomeStatementYear, error) {
	path := fmt.Sprintf("/income-statement/%s", url.PathEscape(symbol))
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp []incomeStatementResponse
	if err := c.get(ctx, "income-statement", path, params, &resp); err != nil {
		return nil, err
	}

	years := make([]models.IncomeStatementYear, len(resp))
	for i, r := range resp {
		years[i] = models.IncomeStatementYear{
			CalendarYear:                   string(r.CalendarYear),
			Revenue:                        float64(r.Revenue),
			NetIncome:                      float64(r.NetIncome),
			GrossProfit:                    float64(r.GrossProfit),
			ResearchAndDevelopmentExpenses: r.ResearchAndDevelopmentExpenses.ptr(),
		}
	}

	return years, nil
}

// incomeStatementResponse represents one year of the income statement endpoint
type incomeStatementResponse struct {
	CalendarYear                   flexString   `json:"calendarYear"`
	Revenue                        flexFloat64  `json:"revenue"`
	NetIncome                      flexFloat64  `json:"netIncome"`
	GrossProfit                    flexFloat64  `json:"grossProfit"`
	ResearchAndDevelopmentExpenses *flexFloat64 `json:"researchAndDevelopmentExpenses"`
}

// GetCashFlowStatements retrieves yearly cash-flow statements, newest first
func (c *Client) GetCashFlowStatements(ctx context.Context, symbol string, limit int) ([]models.CashFlowYear, error) {
	path := fmt.Sprintf("/cash-flow-statement/%s", url.PathEscape(symbol))
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp []cashFlowResponse
	if err := c.get(ctx, "cash-flow-statement", path, params, &resp); err != nil {
		return nil, err
	}

	years := make([]models.CashFlowYear, len(resp))
	for i, r := range resp {
		investing := r.CashflowFromInvestment
		if investing == nil {
			investing = r.NetCashUsedForInvestingActivities
		}
		financing := r.CashflowFromFinancing
		if financing == nil {
			financing = r.NetCashUsedProvidedByFinancingActivities
		}
		years[i] = models.CashFlowYear{
			CalendarYear:           string(r.CalendarYear),
			OperatingCashFlow:      float64(r.OperatingCashFlow),
			CashflowFromInvestment: investing.value(),
			CashflowFromFinancing:  financing.value(),
			CapitalExpenditure:     r.CapitalExpenditure.ptr(),
		}
	}

	return years, nil
}

// cashFlowResponse represents one year of the cash-flow statement endpoint.
// The v3 statement names investing/financing flows differently from the
// bulk endpoints, so both spellings are accepted.
type cashFlowResponse struct {
	CalendarYear                             flexString   `json:"calendarYear"`
	OperatingCashFlow                        flexFloat64  `json:"operatingCashFlow"`
	CashflowFromInvestment                   *flexFloat64 `json:"cashflowFromInvestment"`
	CashflowFromFinancing                    *flexFloat64 `json:"cashflowFromFinancing"`
	NetCashUsedForInvestingActivities        *flexFloat64 `json:"netCashUsedForInvestingActivites"`
	NetCashUsedProvidedByFinancingActivities *flexFloat64 `json:"netCashUsedProvidedByFinancingActivities"`
	CapitalExpenditure                       *flexFloat64 `json:"capitalExpenditure"`
}

// ScreenPeers lists companies in an industry via the stock screener
func (c *Client) ScreenPeers(ctx context.Context, industry string, limit int) ([]models.PeerSummary, error) {
	params := url.Values{}
	params.Set("industry", industry)
	params.Set("limit", strconv.Itoa(limit))

	var resp []screenerResponse
	if err := c.get(ctx, "stock-screener", "/stock-screener", params, &resp); err != nil {
		return nil, fmt.Errorf("screener request failed: %w", err)
	}

	peers := make([]models.PeerSummary, len(resp))
	for i, r := range resp {
		peers[i] = models.PeerSummary{
			Symbol:      r.Symbol,
			CompanyName: r.CompanyName,
			Industry:    r.Industry,
			MarketCap:   float64(r.MarketCap),
		}
	}

	c.logger.Debug().Str("industry", industry).Int("results", len(peers)).Msg("FMP screener returned results")

	return peers, nil
}

// screenerResponse represents a single result from the stock screener API
type screenerResponse struct {
	Symbol      string      `json:"symbol"`
	CompanyName string      `json:"companyName"`
	Industry    string      `json:"industry"`
	MarketCap   flexFloat64 `json:"marketCap"`
}

func stringField(item map[string]any, key string) string {
	if v, ok := item[key].(string); ok {
		return v
	}
	return ""
}

// Ensure Client implements FinancialDataClient
var _ interfaces.FinancialDataClient = (*Client)(nil)
