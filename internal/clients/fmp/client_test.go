package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearchTicker_SendsQueryAndHeaders(t *testing.T) {
	var capturedPath, capturedQuery, capturedExchange, capturedKey, capturedUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedQuery = r.URL.Query().Get("query")
		capturedExchange = r.URL.Query().Get("exchange")
		capturedKey = r.URL.Query().Get("apikey")
		capturedUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"symbol":"TSLA","name":"Tesla, Inc.","exchangeShortName":"NASDAQ"}]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	matches, err := client.SearchTicker(context.Background(), "Tesla", 1, "NASDAQ")
	if err != nil {
		t.Fatalf("SearchTicker failed: %v", err)
	}

	if capturedPath != "/search" {
		t.Errorf("Expected path /search, got %s", capturedPath)
	}
	if capturedQuery != "Tesla" {
		t.Errorf("Expected query Tesla, got %s", capturedQuery)
	}
	if capturedExchange != "NASDAQ" {
		t.Errorf("Expected exchange NASDAQ, got %s", capturedExchange)
	}
	if capturedKey != "test-key" {
		t.Errorf("Expected apikey test-key, got %s", capturedKey)
	}
	if capturedUA != DefaultUserAgent {
		t.Errorf("Expected User-Agent %s, got %s", DefaultUserAgent, capturedUA)
	}

	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Symbol != "TSLA" || matches[0].Exchange != "NASDAQ" {
		t.Errorf("Unexpected match: %+v", matches[0])
	}
}

func TestSearchTicker_NonOKReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid API KEY", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))

	_, err := client.SearchTicker(context.Background(), "Tesla", 1, "NASDAQ")
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Endpoint != "/search" {
		t.Errorf("Expected endpoint /search, got %s", apiErr.Endpoint)
	}
}

func TestGetProfile_ParsesOptionalRatios(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile/TSLA" {
			t.Errorf("Expected path /profile/TSLA, got %s", r.URL.Path)
		}
		w.Write([]byte(`[{
			"symbol": "TSLA",
			"companyName": "Tesla, Inc.",
			"mktCap": "750000000000",
			"sector": "Consumer Cyclical",
			"industry": "Auto - Manufacturers",
			"description": "Tesla designs electric vehicles.",
			"pe": 60.5,
			"debtToEquity": null
		}]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	profile, err := client.GetProfile(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile == nil {
		t.Fatal("Expected profile, got nil")
	}

	if profile.MarketCap != 750000000000 {
		t.Errorf("Expected string mktCap parsed to 7.5e11, got %v", profile.MarketCap)
	}
	if profile.PE == nil || *profile.PE != 60.5 {
		t.Errorf("Expected PE 60.5, got %v", profile.PE)
	}
	if profile.PriceToBookRatio != nil {
		t.Errorf("Expected missing priceToBookRatio to be nil, got %v", *profile.PriceToBookRatio)
	}
	if profile.DebtToEquity != nil {
		t.Errorf("Expected null debtToEquity to be nil, got %v", *profile.DebtToEquity)
	}
	if profile.CompanyDescription != "Tesla designs electric vehicles." {
		t.Errorf("Expected description fallback, got %q", profile.CompanyDescription)
	}
}

func TestGetProfile_EmptyListReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	profile, err := client.GetProfile(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile != nil {
		t.Errorf("Expected nil profile for empty list, got %+v", profile)
	}
}

func TestGetIncomeStatements_AcceptsNumericYear(t *testing.T) {
	var capturedLimit string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[
			{"calendarYear": "2023", "revenue": 96773000000, "netIncome": 14997000000, "grossProfit": 17660000000, "researchAndDevelopmentExpenses": 3969000000},
			{"calendarYear": 2022, "revenue": 81462000000, "netIncome": 12556000000, "grossProfit": 20853000000}
		]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	years, err := client.GetIncomeStatements(context.Background(), "TSLA", 5)
	if err != nil {
		t.Fatalf("GetIncomeStatements failed: %v", err)
	}

	if capturedLimit != "5" {
		t.Errorf("Expected limit 5, got %s", capturedLimit)
	}
	if len(years) != 2 {
		t.Fatalf("Expected 2 years, got %d", len(years))
	}
	if years[0].CalendarYear != "2023" || years[1].CalendarYear != "2022" {
		t.Errorf("Unexpected years: %s, %s", years[0].CalendarYear, years[1].CalendarYear)
	}
	if years[0].ResearchAndDevelopmentExpenses == nil || *years[0].ResearchAndDevelopmentExpenses != 3969000000 {
		t.Errorf("Expected R&D 3969000000, got %v", years[0].ResearchAndDevelopmentExpenses)
	}
	if years[1].ResearchAndDevelopmentExpenses != nil {
		t.Errorf("Expected missing R&D to be nil")
	}
}

func TestGetCashFlowStatements_FallsBackToStatementFieldNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cash-flow-statement/TSLA" {
			t.Errorf("Expected path /cash-flow-statement/TSLA, got %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"calendarYear": "2023", "operatingCashFlow": 13256000000, "netCashUsedForInvestingActivites": -15584000000, "netCashUsedProvidedByFinancingActivities": 2589000000, "capitalExpenditure": -8898000000},
			{"calendarYear": "2022", "operatingCashFlow": 14724000000, "cashflowFromInvestment": -11973000000, "cashflowFromFinancing": -3527000000}
		]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	years, err := client.GetCashFlowStatements(context.Background(), "TSLA", 5)
	if err != nil {
		t.Fatalf("GetCashFlowStatements failed: %v", err)
	}
	if len(years) != 2 {
		t.Fatalf("Expected 2 years, got %d", len(years))
	}

	if years[0].CashflowFromInvestment != -15584000000 {
		t.Errorf("Expected investing fallback -15584000000, got %v", years[0].CashflowFromInvestment)
	}
	if years[0].CashflowFromFinancing != 2589000000 {
		t.Errorf("Expected financing fallback 2589000000, got %v", years[0].CashflowFromFinancing)
	}
	if years[0].CapitalExpenditure == nil || *years[0].CapitalExpenditure != -8898000000 {
		t.Errorf("Expected capex -8898000000, got %v", years[0].CapitalExpenditure)
	}
	if years[1].CashflowFromInvestment != -11973000000 {
		t.Errorf("Expected investing -11973000000, got %v", years[1].CashflowFromInvestment)
	}
	if years[1].CapitalExpenditure != nil {
		t.Errorf("Expected missing capex to be nil")
	}
}

func TestScreenPeers_ParsesResponse(t *testing.T) {
	mockResponse := []map[string]interface{}{
		{"symbol": "TSLA", "companyName": "Tesla, Inc.", "industry": "Auto - Manufacturers", "marketCap": 750000000000.0},
		{"symbol": "F", "companyName": "Ford Motor Company", "industry": "Auto - Manufacturers", "marketCap": 48000000000.0},
	}

	var capturedIndustry string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedIndustry = r.URL.Query().Get("industry")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResponse)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	peers, err := client.ScreenPeers(context.Background(), "Auto - Manufacturers", 5)
	if err != nil {
		t.Fatalf("ScreenPeers failed: %v", err)
	}

	if capturedIndustry != "Auto - Manufacturers" {
		t.Errorf("Expected industry filter, got %s", capturedIndustry)
	}
	if len(peers) != 2 {
		t.Fatalf("Expected 2 peers, got %d", len(peers))
	}
	if peers[1].Symbol != "F" || peers[1].MarketCap != 48000000000 {
		t.Errorf("Unexpected peer: %+v", peers[1])
	}
}

func TestRequestObserver_ReceivesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var observedEndpoint string
	var observedStatus int

	client := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithTimeout(5*time.Second),
		WithRequestObserver(func(endpoint string, status int, elapsed time.Duration) {
			observedEndpoint = endpoint
			observedStatus = status
		}),
	)

	if _, err := client.ScreenPeers(context.Background(), "Banks", 5); err == nil {
		t.Fatal("Expected error for 429 response")
	}

	if observedEndpoint != "stock-screener" {
		t.Errorf("Expected endpoint stock-screener, got %s", observedEndpoint)
	}
	if observedStatus != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", observedStatus)
	}
}
