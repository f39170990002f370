package model

// RefreshResult reports the outcome of a bulk quote or history refresh.
// Failures on individual tickers never abort the others.
type RefreshResult struct {
	Updated      []string       `json:"updated"`
	Skipped      []string       `json:"skipped"`
	Errors       []RefreshError `json:"errors"`
	TotalUpdated int            `json:"totalUpdated"`
	TotalErrors  int            `json:"totalErrors"`
}

// RefreshError is a ticker that failed to refresh.
type RefreshError struct {
	Ticker string `json:"ticker"`
	Error  string `json:"error"`
}

// NewRefreshResult returns a result with non-nil slices so it encodes as empty arrays.
func NewRefreshResult() RefreshResult {
	return RefreshResult{
		Updated: []string{},
		Skipped: []string{},
		Errors:  []RefreshError{},
	}
}

// AddUpdated records a successful ticker.
func (r *RefreshResult) AddUpdated(ticker string) {
	r.Updated = append(r.Updated, ticker)
	r.TotalUpdated = len(r.Updated)
}

// AddSkipped records a ticker that got no fresh data: its result was discarded because it was
// deleted or superseded, or it was restored without prices.
func (r *RefreshResult) AddSkipped(ticker string) {
	r.Skipped = append(r.Skipped, ticker)
}

// AddError records a failing ticker.
func (r *RefreshResult) AddError(ticker string, err error) {
	r.Errors = append(r.Errors, RefreshError{Ticker: ticker, Error: err.Error()})
	r.TotalErrors = len(r.Errors)
}
