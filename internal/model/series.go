package model

// SeriesPoint is one chart point keyed by a day-precision label.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TickerSeries is the chart-ready series of a single holding.
type TickerSeries struct {
	Ticker       string        `json:"ticker"`
	DisplayColor string        `json:"displayColor,omitempty"`
	Points       []SeriesPoint `json:"points"`
}

// AlignedSeries holds the canonical label axis plus one series per holding with history.
// Series may be shorter than Labels; they are not padded.
type AlignedSeries struct {
	Labels []string       `json:"labels"`
	Series []TickerSeries `json:"series"`
}

// PortfolioChart is the full line chart payload: the per-holding series plus the weighted blend.
type PortfolioChart struct {
	Labels   []string       `json:"labels"`
	Datasets []TickerSeries `json:"datasets"`
	Weighted TickerSeries   `json:"weighted"`
	Window   HistoryWindow  `json:"window"`
}
