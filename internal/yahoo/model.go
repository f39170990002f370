package yahoo

import "time"

// Response represents the raw JSON response structure of the Yahoo Finance v8 chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata (name, currency, exchange, live price fields)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays, entries are null on missing bars
//   - Chart.Error: Optional error object from Yahoo
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level container of a chart response.
type Chart struct {
	Result []Result    `json:"result"`
	Error  *ChartError `json:"error"`
}

// ChartError is the error object Yahoo returns, e.g. {"code":"Not Found","description":"No data found"}.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is one symbol's chart.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta carries descriptive data and the live quote of a symbol.
type Meta struct {
	Currency           string   `json:"currency"`
	Symbol             string   `json:"symbol"`
	ExchangeName       string   `json:"exchangeName"`
	FullExchangeName   string   `json:"fullExchangeName"`
	LongName           string   `json:"longName"`
	Shortname          string   `json:"shortName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"previousClose"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
}

// IndicatorsContainer wraps the quote arrays.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds the OHLCV arrays, aligned with Result.Timestamp.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// PriceChart represents a parsed price chart: symbol metadata plus the bars that have a close.
type PriceChart struct {
	Currency         string       `json:"currency"`
	Symbol           string       `json:"symbol"`
	ExchangeName     string       `json:"exchangeName"`
	FullExchangeName string       `json:"fullExchangeName"`
	LongName         string       `json:"longName"`
	Shortname        string       `json:"shortName"`
	Indicators       []Indicators `json:"indicators"`
}

// Indicators represents a single bar of a chart.
// Open is nil when Yahoo reported no open for the bar.
type Indicators struct {
	Date       time.Time
	PriceOpen  *float64
	PriceClose float64
}

// QuoteSummary is the current quote of a ticker, shaped like the quote endpoint payload.
// Price fields are nil when Yahoo did not report them.
type QuoteSummary struct {
	Symbol                     string
	LongName                   string
	ShortName                  string
	FinancialCurrency          string
	FullExchangeName           string
	RegularMarketPrice         *float64
	RegularMarketPreviousClose *float64
	RegularMarketOpen          *float64
}

// HistoryPoint is one historical close.
type HistoryPoint struct {
	Date  time.Time
	Close float64
}

// searchResponse is the v1 search payload.
type searchResponse struct {
	Quotes []struct {
		Symbol string `json:"symbol"`
	} `json:"quotes"`
}

// trendingResponse is the v1 trending payload.
type trendingResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
	} `json:"finance"`
}

// recommendationsResponse is the v6 recommendations-by-symbol payload.
type recommendationsResponse struct {
	Finance struct {
		Result []struct {
			Symbol             string `json:"symbol"`
			RecommendedSymbols []struct {
				Symbol string  `json:"symbol"`
				Score  float64 `json:"score"`
			} `json:"recommendedSymbols"`
		} `json:"result"`
	} `json:"finance"`
}
