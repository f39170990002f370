package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/metrics"
)

// Client is the quote, history and suggestion source used by the services.
// FinanceClient is the production implementation; tests use testutil.MockYahooClient.
type Client interface {
	GetQuote(ctx context.Context, symbol string) (QuoteSummary, error)
	GetHistory(ctx context.Context, symbol string, start time.Time, interval string) ([]HistoryPoint, error)
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Trending(ctx context.Context) ([]string, error)
	Recommendations(ctx context.Context, symbol string) ([]string, error)
}

// Options configures a FinanceClient.
type Options struct {
	BaseURL   string        // chart and recommendation endpoints, e.g. https://query1.finance.yahoo.com
	SearchURL string        // search and trending endpoints, e.g. https://query2.finance.yahoo.com
	Timeout   time.Duration // per-request timeout
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// Every request goes through a circuit breaker so a failing upstream is not hammered
// by bulk refreshes.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
	searchURL  string
	breaker    *gobreaker.CircuitBreaker
	log        zerolog.Logger
	now        func() time.Time
}

// NewFinanceClient creates a new Yahoo Finance client.
//
// Parameters:
//   - opts: Endpoints and timeout; empty URLs fall back to the public Yahoo hosts
//   - log: Logger used for breaker state changes and failed requests
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(opts Options, log zerolog.Logger) *FinanceClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://query1.finance.yahoo.com"
	}
	if opts.SearchURL == "" {
		opts.SearchURL = "https://query2.finance.yahoo.com"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	logger := log.With().Str("client", "yahoo").Logger()

	st := gobreaker.Settings{
		Name:        "YahooFinance",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// An unknown symbol is a valid answer, not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, apperrors.ErrSymbolNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.UpdateCircuitBreakerState(name, float64(to))
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &FinanceClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		searchURL:  strings.TrimRight(opts.SearchURL, "/"),
		breaker:    gobreaker.NewCircuitBreaker(st),
		log:        logger,
		now:        time.Now,
	}
}

// ParseChart converts a raw chart response into a structured price chart.
// Bars without a close price are dropped; an empty chart is not an error.
//
// Returns an error when the response has no result or the close array does not
// line up with the timestamps.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, apperrors.ErrSymbolNotFound
	}
	result := yahooResult.Chart.Result[0]

	chart := PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
		Indicators:       []Indicators{},
	}

	if len(result.Timestamp) == 0 {
		return chart, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	for i, ts := range result.Timestamp {
		if quote.Close[i] == nil {
			continue
		}
		ind := Indicators{
			Date:       time.Unix(ts, 0).UTC(),
			PriceClose: *quote.Close[i],
		}
		if i < len(quote.Open) {
			ind.PriceOpen = quote.Open[i]
		}
		chart.Indicators = append(chart.Indicators, ind)
	}

	return chart, nil
}

// GetQuote fetches the current quote of a symbol from the one-day chart.
// The previous close comes from the chart meta; the open is the first bar's open.
//
// Returns apperrors.ErrSymbolNotFound when Yahoo knows no such symbol.
func (c *FinanceClient) GetQuote(ctx context.Context, symbol string) (QuoteSummary, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))

	var response Response
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return QuoteSummary{}, err
	}
	if err := chartError(response); err != nil {
		return QuoteSummary{}, err
	}
	if len(response.Chart.Result) == 0 {
		return QuoteSummary{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	meta := response.Chart.Result[0].Meta
	summary := QuoteSummary{
		Symbol:                     meta.Symbol,
		LongName:                   meta.LongName,
		ShortName:                  meta.Shortname,
		FinancialCurrency:          meta.Currency,
		FullExchangeName:           meta.FullExchangeName,
		RegularMarketPrice:         meta.RegularMarketPrice,
		RegularMarketPreviousClose: meta.PreviousClose,
	}
	if summary.RegularMarketPreviousClose == nil {
		summary.RegularMarketPreviousClose = meta.ChartPreviousClose
	}

	chart, err := c.ParseChart(response)
	if err == nil && len(chart.Indicators) > 0 {
		summary.RegularMarketOpen = chart.Indicators[0].PriceOpen
	}

	return summary, nil
}

// GetHistory fetches closes for a symbol from start until now at the given interval
// ("1d", "1wk" or "1mo"). Points come back ordered by date.
func (c *FinanceClient) GetHistory(ctx context.Context, symbol string, start time.Time, interval string) ([]HistoryPoint, error) {
	endpoint := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=%s&period1=%d&period2=%d",
		c.baseURL,
		url.PathEscape(symbol),
		url.QueryEscape(interval),
		start.Unix(),
		c.now().Unix(),
	)

	var response Response
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	if err := chartError(response); err != nil {
		return nil, err
	}

	chart, err := c.ParseChart(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse history for %s: %w", symbol, err)
	}

	points := make([]HistoryPoint, len(chart.Indicators))
	for i, ind := range chart.Indicators {
		points[i] = HistoryPoint{Date: ind.Date, Close: ind.PriceClose}
	}
	return points, nil
}

// Search returns up to limit ticker symbols matching a partial query.
func (c *FinanceClient) Search(ctx context.Context, query string, limit int) ([]string, error) {
	endpoint := fmt.Sprintf(
		"%s/v1/finance/search?q=%s&quotesCount=%d&newsCount=0",
		c.searchURL,
		url.QueryEscape(query),
		limit,
	)

	var response searchResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(response.Quotes))
	for _, q := range response.Quotes {
		if q.Symbol == "" {
			continue
		}
		symbols = append(symbols, q.Symbol)
		if limit > 0 && len(symbols) == limit {
			break
		}
	}
	return symbols, nil
}

// Trending returns the currently trending US symbols.
func (c *FinanceClient) Trending(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/v1/finance/trending/US", c.searchURL)

	var response trendingResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	symbols := []string{}
	for _, result := range response.Finance.Result {
		for _, q := range result.Quotes {
			symbols = append(symbols, q.Symbol)
		}
	}
	return symbols, nil
}

// Recommendations returns symbols Yahoo considers similar to symbol.
func (c *FinanceClient) Recommendations(ctx context.Context, symbol string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/v6/finance/recommendationsbysymbol/%s", c.baseURL, url.PathEscape(symbol))

	var response recommendationsResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	symbols := []string{}
	for _, result := range response.Finance.Result {
		for _, s := range result.RecommendedSymbols {
			symbols = append(symbols, s.Symbol)
		}
	}
	return symbols, nil
}

// chartError maps a Yahoo error object to an error. "Not Found" becomes ErrSymbolNotFound.
func chartError(response Response) error {
	if response.Chart.Error == nil {
		return nil
	}
	if strings.EqualFold(response.Chart.Error.Code, "Not Found") {
		return fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, response.Chart.Error.Description)
	}
	return fmt.Errorf("yahoo error: %s: %s", response.Chart.Error.Code, response.Chart.Error.Description)
}

// getJSON executes a GET through the circuit breaker and decodes the body into out.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
//
// 4xx responses are still decoded because Yahoo reports unknown symbols as a 404 with a
// chart error body; 5xx responses are returned as errors.
func (c *FinanceClient) getJSON(ctx context.Context, endpoint string, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(data, out); err != nil {
			if resp.StatusCode == http.StatusNotFound {
				return nil, apperrors.ErrSymbolNotFound
			}
			return nil, fmt.Errorf("failed to decode yahoo response: %w", err)
		}
		return nil, nil
	})

	if err != nil && !errors.Is(err, apperrors.ErrSymbolNotFound) {
		c.log.Debug().Err(err).Str("endpoint", endpoint).Msg("Yahoo request failed")
	}
	return err
}
