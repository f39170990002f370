package model

import (
	"encoding/json"
	"math"
	"time"
)

// Holding represents one tracked ticker in the portfolio.
// CurrentPrice and PreviousClosePrice may be NaN when the quote source returned unusable data.
type Holding struct {
	Ticker              string       `json:"ticker"`
	Name                string       `json:"name"`
	Currency            string       `json:"currency"`
	Exchange            string       `json:"exchange"`
	CurrentPrice        float64      `json:"currentPrice"`
	PreviousClosePrice  float64      `json:"previousClosePrice"`
	PortfolioPercentage float64      `json:"portfolioPercentage"`
	DisplayColor        string       `json:"displayColor"`
	HistoricalData      []PricePoint `json:"historicalData,omitempty"` // nil until the history fetch resolves
	Revision            uint64       `json:"revision"`
}

// PricePoint is a single historical close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// AllocationEntry is the ticker + percentage projection that is persisted and shared.
// Prices and history are never part of it.
type AllocationEntry struct {
	Ticker              string  `json:"ticker"`
	PortfolioPercentage float64 `json:"portfolioPercentage"`
}

// HasHistory reports whether the history fetch has resolved with at least one point.
func (h Holding) HasHistory() bool {
	return len(h.HistoricalData) > 0
}

// Allocation returns the persisted projection of the holding.
func (h Holding) Allocation() AllocationEntry {
	return AllocationEntry{Ticker: h.Ticker, PortfolioPercentage: h.PortfolioPercentage}
}

// Clone returns a copy that shares no mutable state with h.
func (h Holding) Clone() Holding {
	if h.HistoricalData != nil {
		points := make([]PricePoint, len(h.HistoricalData))
		copy(points, h.HistoricalData)
		h.HistoricalData = points
	}
	return h
}

// MarshalJSON encodes non-finite prices as null, which encoding/json cannot do for float64.
func (h Holding) MarshalJSON() ([]byte, error) {
	type alias Holding
	return json.Marshal(struct {
		alias
		CurrentPrice       *float64 `json:"currentPrice"`
		PreviousClosePrice *float64 `json:"previousClosePrice"`
	}{
		alias:              alias(h),
		CurrentPrice:       finiteOrNil(h.CurrentPrice),
		PreviousClosePrice: finiteOrNil(h.PreviousClosePrice),
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// PriceChange describes the move from the previous close to the current price.
// Valid is false when either price is unusable.
type PriceChange struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	Direction     string  `json:"direction"`
	Difference    float64 `json:"difference"`
	PercentChange float64 `json:"percentChange"`
	Valid         bool    `json:"valid"`
}

// NewPriceChange computes the day change of a quote. Difference and PercentChange are absolute
// values; Direction carries the sign.
func NewPriceChange(current, previous float64) PriceChange {
	direction := "+"
	if current < previous {
		direction = "-"
	}

	difference := math.Abs(current - previous)
	percent := math.Abs((current - previous) / previous * 100)

	if math.IsNaN(difference) || math.IsNaN(percent) || math.IsInf(percent, 0) {
		return PriceChange{Direction: direction, Valid: false}
	}

	return PriceChange{
		Current:       current,
		Previous:      previous,
		Direction:     direction,
		Difference:    difference,
		PercentChange: percent,
		Valid:         true,
	}
}

// HoldingView is the API projection of a holding together with its derived allocation metrics.
type HoldingView struct {
	Holding             Holding     `json:"holding"`
	AvailablePercentage float64     `json:"availablePercentage"`
	EstimatedShares     int64       `json:"estimatedShares"`
	PriceChange         PriceChange `json:"priceChange"`
}

// PortfolioOverview is returned by the holdings listing.
type PortfolioOverview struct {
	Holdings            []HoldingView `json:"holdings"`
	PortfolioValue      float64       `json:"portfolioValue"`
	TotalPercentage     float64       `json:"totalPercentage"`
	RemainingPercentage float64       `json:"remainingPercentage"`
}

// BreakdownSlice is one segment of the allocation breakdown chart.
type BreakdownSlice struct {
	Ticker              string  `json:"ticker"`
	PortfolioPercentage float64 `json:"portfolioPercentage"`
	DisplayColor        string  `json:"displayColor"`
}
