package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// unpricedDivisor stands in for a missing or unusable price so the share estimate collapses to zero.
const unpricedDivisor = 99999999

// AllocationService enforces the percentage rules across holdings.
type AllocationService struct {
	store *HoldingStore
	log   zerolog.Logger
}

// NewAllocationService creates a new AllocationService over store.
func NewAllocationService(store *HoldingStore, log zerolog.Logger) *AllocationService {
	return &AllocationService{
		store: store,
		log:   log.With().Str("service", "allocation").Logger(),
	}
}

// TotalPercentage returns the sum of all allocations. It may exceed 100 while edits are in progress.
func (s *AllocationService) TotalPercentage() float64 {
	total := 0.0
	for _, e := range s.store.Allocations() {
		total += e.PortfolioPercentage
	}
	return total
}

// AvailablePercentage returns the largest percentage ticker could take without the total
// exceeding 100: max(0, 100 - total + own). An unknown ticker owns 0.
// The value is advisory; UpdatePercentage does not enforce it.
func (s *AllocationService) AvailablePercentage(ticker string) float64 {
	total := 0.0
	own := 0.0
	for _, e := range s.store.Allocations() {
		total += e.PortfolioPercentage
		if e.Ticker == ticker {
			own = e.PortfolioPercentage
		}
	}
	return math.Max(0, 100-total+own)
}

// RemainingPercentage returns the unallocated share of the portfolio.
func (s *AllocationService) RemainingPercentage() float64 {
	return s.AvailablePercentage("")
}

// UpdatePercentage sets the allocation of ticker.
//
// While editing (commit false) the value is stored as given, so a total above 100 is tolerated.
// NaN is rejected with apperrors.ErrInvalidAllocationInput. On commit the value is clamped into
// [0, 100] and NaN becomes 0.
//
// Returns false without error when ticker is not held.
func (s *AllocationService) UpdatePercentage(ctx context.Context, ticker string, percent float64, commit bool) (bool, error) {
	if commit {
		percent = ClampPercentage(percent)
	} else if math.IsNaN(percent) {
		return false, fmt.Errorf("%w: percentage for %s is not a number", apperrors.ErrInvalidAllocationInput, ticker)
	}

	updated := s.store.SetPercentage(ctx, ticker, percent)
	if !updated {
		s.log.Debug().Str("ticker", ticker).Msg("Percentage update for unknown ticker ignored")
	}
	return updated, nil
}

// Breakdown returns the allocation slices for the breakdown chart in insertion order.
func (s *AllocationService) Breakdown() []model.BreakdownSlice {
	holdings := s.store.Values()
	slices := make([]model.BreakdownSlice, 0, len(holdings))
	for _, h := range holdings {
		slices = append(slices, model.BreakdownSlice{
			Ticker:              h.Ticker,
			PortfolioPercentage: h.PortfolioPercentage,
			DisplayColor:        h.DisplayColor,
		})
	}
	return slices
}

// Overview builds the holdings listing for a total portfolio value.
func (s *AllocationService) Overview(portfolioValue float64) model.PortfolioOverview {
	holdings := s.store.Values()

	views := make([]model.HoldingView, 0, len(holdings))
	total := 0.0
	for _, h := range holdings {
		total += h.PortfolioPercentage
	}

	for _, h := range holdings {
		views = append(views, newHoldingView(h, total, portfolioValue))
	}

	return model.PortfolioOverview{
		Holdings:            views,
		PortfolioValue:      portfolioValue,
		TotalPercentage:     total,
		RemainingPercentage: math.Max(0, 100-total),
	}
}

// View returns the listing entry of a single ticker. Returns false when ticker is not held.
func (s *AllocationService) View(ticker string, portfolioValue float64) (model.HoldingView, bool) {
	h, ok := s.store.Get(ticker)
	if !ok {
		return model.HoldingView{}, false
	}
	return newHoldingView(h, s.TotalPercentage(), portfolioValue), true
}

func newHoldingView(h model.Holding, total, portfolioValue float64) model.HoldingView {
	return model.HoldingView{
		Holding:             h,
		AvailablePercentage: math.Max(0, 100-total+h.PortfolioPercentage),
		EstimatedShares:     EstimatedShares(portfolioValue, h.PortfolioPercentage, h.CurrentPrice),
		PriceChange:         model.NewPriceChange(h.CurrentPrice, h.PreviousClosePrice),
	}
}

// ClampPercentage bounds a committed percentage to [0, 100]; NaN becomes 0.
func ClampPercentage(percent float64) float64 {
	if math.IsNaN(percent) {
		return 0
	}
	return math.Min(100, math.Max(0, percent))
}

// EstimatedShares returns how many whole shares the allocation buys:
// floor(total * pct / 100 / price).
//
// A zero, negative or non-finite price is replaced by a very large divisor, and any result
// that is negative or non-finite is reported as 0.
func EstimatedShares(total, pct, price float64) int64 {
	if price <= 0 || isNonFinite(price) {
		price = unpricedDivisor
	}

	shares := math.Floor(total * pct / 100 / price)
	if isNonFinite(shares) || shares < 0 {
		return 0
	}
	if shares > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(shares)
}
