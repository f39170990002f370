package testutil

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// HoldingOption customises a holding built by MakeHolding.
type HoldingOption func(*model.Holding)

// MakeHolding builds a priced holding without history.
//
// Example usage:
//
//	h := testutil.MakeHolding("AAA", 60, 100, testutil.WithHistory(day1, 100, 110))
func MakeHolding(ticker string, percentage, price float64, opts ...HoldingOption) model.Holding {
	h := model.Holding{
		Ticker:              ticker,
		Name:                ticker + " Holdings Inc.",
		Currency:            "USD",
		Exchange:            "NasdaqGS",
		CurrentPrice:        price,
		PreviousClosePrice:  price,
		PortfolioPercentage: percentage,
		DisplayColor:        "#336699",
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// WithHistory sets daily closes starting at start.
func WithHistory(start time.Time, closes ...float64) HoldingOption {
	return func(h *model.Holding) {
		h.HistoricalData = make([]model.PricePoint, len(closes))
		for i, c := range closes {
			h.HistoricalData[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
		}
	}
}

// WithPoints sets explicit history points.
func WithPoints(points ...model.PricePoint) HoldingOption {
	return func(h *model.Holding) {
		h.HistoricalData = points
	}
}

// WithPreviousClose sets the previous close.
func WithPreviousClose(price float64) HoldingOption {
	return func(h *model.Holding) {
		h.PreviousClosePrice = price
	}
}

// WithColor sets the display colour.
func WithColor(color string) HoldingOption {
	return func(h *model.Holding) {
		h.DisplayColor = color
	}
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MakeID generates a UUID string for use in tests.
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
