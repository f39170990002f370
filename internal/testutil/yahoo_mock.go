package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined test data instead of making actual API calls and is safe for
// the concurrent history fetches of a bulk refresh.
//
// Unknown tickers answer with apperrors.ErrSymbolNotFound for quotes and an empty series
// for history.
type MockYahooClient struct {
	mu sync.Mutex

	quotes        map[string]yahoo.QuoteSummary
	history       map[string][]yahoo.HistoryPoint
	quoteErrors   map[string]error
	historyErrors map[string]error
	err           error

	SearchResults   []string
	TrendingResults []string
	Recommended     map[string][]string

	// BeforeHistory runs before a history answer is returned, outside the mock's lock.
	// Tests use it to mutate the store while a fetch is in flight.
	BeforeHistory func(ticker string)

	// QueryCount tracks how many times a query method was called
	QueryCount   int
	HistoryCalls []HistoryCall
}

// HistoryCall records the arguments of one GetHistory call.
type HistoryCall struct {
	Ticker   string
	Start    time.Time
	Interval string
}

// NewMockYahooClient creates a new mock Yahoo client with no known tickers.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		quotes:        make(map[string]yahoo.QuoteSummary),
		history:       make(map[string][]yahoo.HistoryPoint),
		quoteErrors:   make(map[string]error),
		historyErrors: make(map[string]error),
		Recommended:   make(map[string][]string),
	}
}

// WithQuote registers a quote for ticker and clears any quote error set for it.
func (m *MockYahooClient) WithQuote(ticker string, price, previousClose float64) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.quoteErrors, ticker)
	m.quotes[ticker] = yahoo.QuoteSummary{
		Symbol:                     ticker,
		LongName:                   ticker + " Holdings Inc.",
		ShortName:                  ticker,
		FinancialCurrency:          "USD",
		FullExchangeName:           "NasdaqGS",
		RegularMarketPrice:         &price,
		RegularMarketPreviousClose: &previousClose,
	}
	return m
}

// WithQuoteSummary registers a raw quote for ticker.
func (m *MockYahooClient) WithQuoteSummary(ticker string, quote yahoo.QuoteSummary) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.quotes[ticker] = quote
	return m
}

// WithHistory registers the history answer for ticker.
func (m *MockYahooClient) WithHistory(ticker string, points ...yahoo.HistoryPoint) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	if points == nil {
		points = []yahoo.HistoryPoint{}
	}
	m.history[ticker] = points
	return m
}

// WithQuoteError makes quote fetches for ticker fail with err.
func (m *MockYahooClient) WithQuoteError(ticker string, err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.quoteErrors[ticker] = err
	return m
}

// WithHistoryError makes history fetches for ticker fail with err.
func (m *MockYahooClient) WithHistoryError(ticker string, err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.historyErrors[ticker] = err
	return m
}

// WithError configures the mock to return the specified error from every method.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
	return m
}

// GetQuote returns the registered quote for symbol.
func (m *MockYahooClient) GetQuote(_ context.Context, symbol string) (yahoo.QuoteSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	if m.err != nil {
		return yahoo.QuoteSummary{}, m.err
	}
	if err, ok := m.quoteErrors[symbol]; ok {
		return yahoo.QuoteSummary{}, err
	}
	quote, ok := m.quotes[symbol]
	if !ok {
		return yahoo.QuoteSummary{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return quote, nil
}

// GetHistory returns the registered history for symbol.
func (m *MockYahooClient) GetHistory(_ context.Context, symbol string, start time.Time, interval string) ([]yahoo.HistoryPoint, error) {
	m.mu.Lock()
	m.QueryCount++
	m.HistoryCalls = append(m.HistoryCalls, HistoryCall{Ticker: symbol, Start: start, Interval: interval})
	hook := m.BeforeHistory
	m.mu.Unlock()

	if hook != nil {
		hook(symbol)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if err, ok := m.historyErrors[symbol]; ok {
		return nil, err
	}
	points := m.history[symbol]
	out := make([]yahoo.HistoryPoint, len(points))
	copy(out, points)
	return out, nil
}

// Search returns SearchResults capped at limit.
func (m *MockYahooClient) Search(_ context.Context, _ string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	if m.err != nil {
		return nil, m.err
	}
	out := append([]string{}, m.SearchResults...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Trending returns TrendingResults.
func (m *MockYahooClient) Trending(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	if m.err != nil {
		return nil, m.err
	}
	return append([]string{}, m.TrendingResults...), nil
}

// Recommendations returns Recommended[symbol].
func (m *MockYahooClient) Recommendations(_ context.Context, symbol string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	if m.err != nil {
		return nil, m.err
	}
	return append([]string{}, m.Recommended[symbol]...), nil
}

// Calls returns a copy of the recorded history calls.
func (m *MockYahooClient) Calls() []HistoryCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]HistoryCall{}, m.HistoryCalls...)
}

// HistoryPoints builds a daily series starting at start with one point per close.
func HistoryPoints(start time.Time, closes ...float64) []yahoo.HistoryPoint {
	points := make([]yahoo.HistoryPoint, len(closes))
	for i, c := range closes {
		points[i] = yahoo.HistoryPoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return points
}
