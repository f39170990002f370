package validation_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/validation"
)

func TestNormalizeTicker(t *testing.T) {
	valid := map[string]string{
		"aapl":     "AAPL",
		"  vti ":   "VTI",
		"brk-b":    "BRK-B",
		"asml.as":  "ASML.AS",
		"^gspc":    "^GSPC",
		"eurusd=x": "EURUSD=X",
	}
	for raw, want := range valid {
		t.Run(raw, func(t *testing.T) {
			got, err := validation.NormalizeTicker(raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	for _, raw := range []string{"", "   ", "AA PL", "-AAPL", "DROP;TABLE", "ABCDEFGHIJKLMNOPQRSTU"} {
		t.Run("invalid "+raw, func(t *testing.T) {
			_, err := validation.NormalizeTicker(raw)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidTicker))
		})
	}
}

// TestParsePercentage tests reading the allocation input box.
//
// WHY: the box holds whatever the user is typing. Half-typed input must be rejected while
// editing but must never block a commit.
func TestParsePercentage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		commit  bool
		want    float64
		wantErr bool
	}{
		{"plain number", "42.5", false, 42.5, false},
		{"quoted number", `"15"`, false, 15, false},
		{"empty is zero", "", false, 0, false},
		{"out of range kept", "150", false, 150, false},
		{"negative kept", "-3", true, -3, false},
		{"text while editing", "abc", false, 0, true},
		{"text on commit", "abc", true, 0, false},
		{"NaN literal while editing", "NaN", false, 0, true},
		{"infinity on commit", "Inf", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validation.ParsePercentage(tt.raw, tt.commit)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrInvalidAllocationInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePortfolioValue(t *testing.T) {
	v, err := validation.ParsePortfolioValue("10000")
	require.NoError(t, err)
	assert.Equal(t, 10000.0, v)

	v, err = validation.ParsePortfolioValue("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	for _, raw := range []string{"-1", "lots", "NaN"} {
		_, err := validation.ParsePortfolioValue(raw)
		var vErr *validation.Error
		assert.True(t, errors.As(err, &vErr), raw)
	}
}

func TestParseWindow(t *testing.T) {
	current := model.HistoryWindow{Period: model.PeriodYear, Interval: model.IntervalWeek}

	t.Run("empty parts keep the current window", func(t *testing.T) {
		got, err := validation.ParseWindow("", "", current)
		require.NoError(t, err)
		assert.Equal(t, current, got)
	})

	t.Run("overrides one part", func(t *testing.T) {
		got, err := validation.ParseWindow("M", "", current)
		require.NoError(t, err)
		assert.Equal(t, model.HistoryWindow{Period: model.PeriodMonth, Interval: model.IntervalWeek}, got)
	})

	t.Run("week with monthly points is rejected", func(t *testing.T) {
		_, err := validation.ParseWindow("w", "1mo", current)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidWindow))
	})

	t.Run("unknown period is rejected", func(t *testing.T) {
		_, err := validation.ParseWindow("decade", "", current)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidWindow))
	})
}

func TestValidateAddHolding(t *testing.T) {
	t.Run("normalises the ticker", func(t *testing.T) {
		ticker, err := validation.ValidateAddHolding(request.AddHoldingRequest{Ticker: " msft ", PortfolioPercentage: 10})
		require.NoError(t, err)
		assert.Equal(t, "MSFT", ticker)
	})

	t.Run("reports every bad field", func(t *testing.T) {
		_, err := validation.ValidateAddHolding(request.AddHoldingRequest{Ticker: "", PortfolioPercentage: math.NaN()})
		var vErr *validation.Error
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.Fields, "ticker")
		assert.Contains(t, vErr.Fields, "portfolioPercentage")
	})
}

func TestValidateImportAllocations(t *testing.T) {
	t.Run("empty import is rejected", func(t *testing.T) {
		_, err := validation.ValidateImportAllocations(request.ImportAllocationsRequest{})
		assert.Error(t, err)
	})

	t.Run("normalises every ticker in order", func(t *testing.T) {
		got, err := validation.ValidateImportAllocations(request.ImportAllocationsRequest{
			Allocations: []request.AllocationItem{
				{Ticker: "vti", PortfolioPercentage: 60},
				{Ticker: "bnd", PortfolioPercentage: 40},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []request.AllocationItem{
			{Ticker: "VTI", PortfolioPercentage: 60},
			{Ticker: "BND", PortfolioPercentage: 40},
		}, got)
	})

	t.Run("one bad ticker rejects the import", func(t *testing.T) {
		_, err := validation.ValidateImportAllocations(request.ImportAllocationsRequest{
			Allocations: []request.AllocationItem{{Ticker: "VTI"}, {Ticker: "bad ticker"}},
		})
		var vErr *validation.Error
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.Fields, "bad ticker")
	})

	t.Run("percentage outside 0 to 100 rejects the import", func(t *testing.T) {
		for _, pct := range []float64{-50, 100.5, math.NaN()} {
			_, err := validation.ValidateImportAllocations(request.ImportAllocationsRequest{
				Allocations: []request.AllocationItem{
					{Ticker: "vti", PortfolioPercentage: 60},
					{Ticker: "bnd", PortfolioPercentage: pct},
				},
			})
			var vErr *validation.Error
			require.True(t, errors.As(err, &vErr), "%v", pct)
			assert.Contains(t, vErr.Fields, "BND")
			assert.NotContains(t, vErr.Fields, "VTI")
		}
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		got, err := validation.ValidateImportAllocations(request.ImportAllocationsRequest{
			Allocations: []request.AllocationItem{{Ticker: "VTI", PortfolioPercentage: 0}, {Ticker: "BND", PortfolioPercentage: 100}},
		})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("UUID validation", func(t *testing.T) {
		assert.NoError(t, validation.ValidateUUID("123e4567-e89b-12d3-a456-426614174000"))
		assert.True(t, errors.Is(validation.ValidateUUID("nope"), validation.ErrInvalidUUID))
	})
}
