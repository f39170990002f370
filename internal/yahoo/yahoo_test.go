package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *FinanceClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewFinanceClient(Options{
		BaseURL:   server.URL,
		SearchURL: server.URL,
		Timeout:   2 * time.Second,
	}, zerolog.Nop())
}

const quoteBody = `{
  "chart": {
    "result": [{
      "meta": {
        "currency": "USD",
        "symbol": "AAPL",
        "exchangeName": "NMS",
        "fullExchangeName": "NasdaqGS",
        "longName": "Apple Inc.",
        "shortName": "Apple",
        "regularMarketPrice": 190.5,
        "chartPreviousClose": 188.25
      },
      "timestamp": [1700000000],
      "indicators": {"quote": [{"open": [189.0], "close": [190.5]}]}
    }],
    "error": null
  }
}`

func TestFinanceClient_GetQuote(t *testing.T) {
	t.Run("reads meta and first open", func(t *testing.T) {
		var gotPath, gotUA string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte(quoteBody))
		})

		quote, err := client.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)

		assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
		assert.NotEmpty(t, gotUA)
		assert.Equal(t, "Apple Inc.", quote.LongName)
		assert.Equal(t, "Apple", quote.ShortName)
		assert.Equal(t, "USD", quote.FinancialCurrency)
		assert.Equal(t, "NasdaqGS", quote.FullExchangeName)
		require.NotNil(t, quote.RegularMarketPrice)
		assert.InDelta(t, 190.5, *quote.RegularMarketPrice, 1e-9)
		require.NotNil(t, quote.RegularMarketPreviousClose)
		assert.InDelta(t, 188.25, *quote.RegularMarketPreviousClose, 1e-9)
		require.NotNil(t, quote.RegularMarketOpen)
		assert.InDelta(t, 189.0, *quote.RegularMarketOpen, 1e-9)
	})

	t.Run("empty result is symbol not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
		})

		_, err := client.GetQuote(context.Background(), "ZZZ")
		assert.True(t, errors.Is(err, apperrors.ErrSymbolNotFound))
	})

	t.Run("not found error body is symbol not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		})

		_, err := client.GetQuote(context.Background(), "ZZZ")
		assert.True(t, errors.Is(err, apperrors.ErrSymbolNotFound))
	})

	t.Run("server error is returned", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.GetQuote(context.Background(), "AAPL")
		require.Error(t, err)
		assert.False(t, errors.Is(err, apperrors.ErrSymbolNotFound))
	})
}

func TestFinanceClient_GetHistory(t *testing.T) {
	t.Run("skips null closes and passes window", func(t *testing.T) {
		var gotQuery string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{"chart":{"result":[{
				"meta":{"symbol":"AAPL"},
				"timestamp":[1700000000,1700086400,1700172800],
				"indicators":{"quote":[{"close":[10.5,null,11.25]}]}
			}]}}`))
		})

		start := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
		points, err := client.GetHistory(context.Background(), "AAPL", start, "1d")
		require.NoError(t, err)

		assert.Contains(t, gotQuery, "interval=1d")
		assert.Contains(t, gotQuery, "period1=1698796800")
		require.Len(t, points, 2)
		assert.InDelta(t, 10.5, points[0].Close, 1e-9)
		assert.InDelta(t, 11.25, points[1].Close, 1e-9)
		assert.Equal(t, time.Unix(1700172800, 0).UTC(), points[1].Date)
	})

	t.Run("no timestamps yields empty slice", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"NEW"}}]}}`))
		})

		points, err := client.GetHistory(context.Background(), "NEW", time.Now().AddDate(0, -1, 0), "1wk")
		require.NoError(t, err)
		assert.NotNil(t, points)
		assert.Empty(t, points)
	})

	t.Run("mismatched arrays fail", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":[{
				"timestamp":[1700000000,1700086400],
				"indicators":{"quote":[{"close":[10.5]}]}
			}]}}`))
		})

		_, err := client.GetHistory(context.Background(), "AAPL", time.Now(), "1d")
		assert.Error(t, err)
	})
}

func TestFinanceClient_Suggestions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/finance/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "app", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"quotes":[{"symbol":"AAPL"},{"symbol":""},{"symbol":"APP"},{"symbol":"APPN"}]}`))
	})
	mux.HandleFunc("/v1/finance/trending/US", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"finance":{"result":[{"quotes":[{"symbol":"NVDA"},{"symbol":"TSLA"}]}]}}`))
	})
	mux.HandleFunc("/v6/finance/recommendationsbysymbol/MSFT", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"finance":{"result":[{"symbol":"MSFT","recommendedSymbols":[{"symbol":"GOOGL","score":0.3},{"symbol":"AMZN","score":0.2}]}]}}`))
	})

	client := newTestClient(t, mux.ServeHTTP)

	t.Run("search drops blanks and honours limit", func(t *testing.T) {
		symbols, err := client.Search(context.Background(), "app", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "APP"}, symbols)
	})

	t.Run("trending", func(t *testing.T) {
		symbols, err := client.Trending(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"NVDA", "TSLA"}, symbols)
	})

	t.Run("recommendations", func(t *testing.T) {
		symbols, err := client.Recommendations(context.Background(), "MSFT")
		require.NoError(t, err)
		assert.Equal(t, []string{"GOOGL", "AMZN"}, symbols)
	})
}

// WHY: a burst of upstream failures must stop hitting Yahoo, but unknown symbols
// are ordinary answers and must never open the breaker.
func TestFinanceClient_CircuitBreaker(t *testing.T) {
	t.Run("opens after consecutive server errors", func(t *testing.T) {
		calls := 0
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		})

		for i := 0; i < 5; i++ {
			_, err := client.GetQuote(context.Background(), "AAPL")
			require.Error(t, err)
		}

		_, err := client.GetQuote(context.Background(), "AAPL")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "circuit breaker is open"))
		assert.Equal(t, 5, calls)
	})

	t.Run("unknown symbols do not trip", func(t *testing.T) {
		calls := 0
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls++
			_, _ = w.Write([]byte(`{"chart":{"result":[]}}`))
		})

		for i := 0; i < 8; i++ {
			_, err := client.GetQuote(context.Background(), "ZZZ")
			assert.True(t, errors.Is(err, apperrors.ErrSymbolNotFound))
		}
		assert.Equal(t, 8, calls)
	})
}
