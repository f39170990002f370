package model_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// TestHolding_MarshalJSON tests encoding holdings with unusable prices.
//
// WHY: a quote without a price is stored as NaN, which encoding/json refuses to encode.
// Such holdings must still encode, with the missing prices as null.
func TestHolding_MarshalJSON(t *testing.T) {
	decode := func(t *testing.T, h model.Holding) map[string]any {
		t.Helper()
		raw, err := json.Marshal(h)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.Unmarshal(raw, &out))
		return out
	}

	t.Run("non-finite prices are null", func(t *testing.T) {
		got := decode(t, model.Holding{
			Ticker:              "AAA",
			CurrentPrice:        math.NaN(),
			PreviousClosePrice:  math.Inf(1),
			PortfolioPercentage: 25,
		})

		assert.Contains(t, got, "currentPrice")
		assert.Nil(t, got["currentPrice"])
		assert.Nil(t, got["previousClosePrice"])
		assert.Equal(t, "AAA", got["ticker"])
		assert.Equal(t, 25.0, got["portfolioPercentage"])
	})

	t.Run("finite prices are kept", func(t *testing.T) {
		got := decode(t, model.Holding{Ticker: "AAA", CurrentPrice: 10.5, PreviousClosePrice: 0})

		assert.Equal(t, 10.5, got["currentPrice"])
		assert.Equal(t, 0.0, got["previousClosePrice"])
	})

	t.Run("history is omitted until fetched", func(t *testing.T) {
		got := decode(t, model.Holding{Ticker: "AAA"})
		assert.NotContains(t, got, "historicalData")
	})
}

// TestNewPriceChange tests the day change shown next to each holding.
//
// WHY: missing or zero prices must give an invalid change rather than NaN or Inf values.
func TestNewPriceChange(t *testing.T) {
	t.Run("down move", func(t *testing.T) {
		change := model.NewPriceChange(9, 10)

		assert.True(t, change.Valid)
		assert.Equal(t, "-", change.Direction)
		assert.InDelta(t, 1.0, change.Difference, 1e-9)
		assert.InDelta(t, 10.0, change.PercentChange, 1e-9)
	})

	t.Run("flat is an up move", func(t *testing.T) {
		change := model.NewPriceChange(10, 10)

		assert.True(t, change.Valid)
		assert.Equal(t, "+", change.Direction)
		assert.Equal(t, 0.0, change.PercentChange)
	})

	invalid := []struct {
		name     string
		current  float64
		previous float64
	}{
		{"NaN current price", math.NaN(), 10},
		{"NaN previous close", 10, math.NaN()},
		{"zero previous close", 10, 0},
		{"both zero", 0, 0},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			change := model.NewPriceChange(tt.current, tt.previous)

			assert.False(t, change.Valid)
			assert.Zero(t, change.Difference)
			assert.Zero(t, change.PercentChange)

			_, err := json.Marshal(change)
			assert.NoError(t, err)
		})
	}
}
