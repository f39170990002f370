package request

import "encoding/json"

// AddHoldingRequest represents the request body for adding a holding
type AddHoldingRequest struct {
	Ticker              string  `json:"ticker"`
	PortfolioPercentage float64 `json:"portfolioPercentage"`
	Upsert              bool    `json:"upsert"`
}

// UpdatePercentageRequest carries the raw percentage entry so non-numeric text can be
// told apart from a missing value. Commit marks the end of an edit.
type UpdatePercentageRequest struct {
	PortfolioPercentage json.RawMessage `json:"portfolioPercentage"`
	Commit              bool            `json:"commit"`
}

// AllocationItem is one ticker + percentage pair of an import.
type AllocationItem struct {
	Ticker              string  `json:"ticker"`
	PortfolioPercentage float64 `json:"portfolioPercentage"`
}

// ImportAllocationsRequest represents the request body for restoring a saved allocation list
type ImportAllocationsRequest struct {
	Allocations []AllocationItem `json:"allocations"`
}

// UpdateWindowRequest represents the request body for changing the history window
type UpdateWindowRequest struct {
	Period   string `json:"period"`
	Interval string `json:"interval"`
}
