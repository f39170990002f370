package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/metrics"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/yahoo"
)

// QuoteService fetches quotes and history for holdings and applies the results to the store.
// Fetches run outside the store lock; each result is applied only to its own ticker and only
// if the ticker is still held.
type QuoteService struct {
	store       *HoldingStore
	client      yahoo.Client
	log         zerolog.Logger
	concurrency int
	now         func() time.Time

	mu     sync.RWMutex
	window model.HistoryWindow
}

// NewQuoteService creates a new QuoteService.
//
// Parameters:
//   - store: The holding store results are applied to
//   - client: Quote and history source
//   - window: Initial history window
//   - concurrency: Maximum number of history fetches in flight during a bulk refresh
//   - log: Base logger
func NewQuoteService(
	store *HoldingStore,
	client yahoo.Client,
	window model.HistoryWindow,
	concurrency int,
	log zerolog.Logger,
) *QuoteService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &QuoteService{
		store:       store,
		client:      client,
		log:         log.With().Str("service", "quote").Logger(),
		concurrency: concurrency,
		now:         time.Now,
		window:      window,
	}
}

// Window returns the history window used for new history fetches.
func (s *QuoteService) Window() model.HistoryWindow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// SetWindow validates and stores window, then refetches history for every holding.
func (s *QuoteService) SetWindow(ctx context.Context, window model.HistoryWindow) (model.RefreshResult, error) {
	if err := window.Validate(); err != nil {
		return model.RefreshResult{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidWindow, err)
	}

	s.mu.Lock()
	s.window = window
	s.mu.Unlock()

	s.log.Info().
		Str("period", string(window.Period)).
		Str("interval", string(window.Interval)).
		Msg("History window changed")

	return s.RefreshAllHistory(ctx, window, ""), nil
}

// AddQuote fetches the quote of ticker, stores a new holding with percentage, and then fetches
// its history for the current window.
//
// A failed or empty quote returns apperrors.ErrTickerNotFound wrapping the source error and
// leaves the store unchanged.
// Without isUpsert an already held ticker returns apperrors.ErrDuplicateTicker. A failed history
// fetch is logged only; the holding stays with no history.
//
// Returns the stored holding, including history when it arrived.
func (s *QuoteService) AddQuote(ctx context.Context, ticker string, percentage float64, isUpsert bool) (model.Holding, error) {
	quote, err := s.client.GetQuote(ctx, ticker)
	if err != nil {
		s.recordQuoteFailure(ticker, err)
		return model.Holding{}, fmt.Errorf("%w: %s: %w", apperrors.ErrTickerNotFound, ticker, err)
	}
	metrics.RecordFetch(metrics.KindQuote, metrics.OutcomeSuccess)

	h := holdingFromQuote(ticker, quote)
	h.PortfolioPercentage = percentage
	h.DisplayColor = randomBrightColor()

	stored, err := s.store.Upsert(ctx, ticker, h, UpsertOptions{AllowOverwrite: isUpsert, SetPercentage: true})
	if err != nil {
		return model.Holding{}, err
	}

	s.log.Info().
		Str("ticker", ticker).
		Float64("portfolio_percentage", percentage).
		Bool("upsert", isUpsert).
		Msg("Holding added")

	if _, err := s.refreshHistory(ctx, ticker, s.Window()); err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("History fetch failed")
	}

	if latest, ok := s.store.Get(ticker); ok {
		stored = latest
	}
	return stored, nil
}

// UpdateQuote refreshes the price fields of a held ticker. Name, percentage and history are kept.
//
// A ticker that is not held, or is removed before the quote arrives, is a no-op. A failed fetch
// returns apperrors.ErrTransientFetchFailure and the last known prices stay in place.
//
// Returns true when new prices were stored.
func (s *QuoteService) UpdateQuote(ctx context.Context, ticker string) (bool, error) {
	ticket, ok := s.store.Begin(ticker, FetchQuote)
	if !ok {
		return false, nil
	}

	quote, err := s.client.GetQuote(ctx, ticker)
	if err != nil {
		s.recordQuoteFailure(ticker, err)
		return false, fmt.Errorf("%w: quote %s: %w", apperrors.ErrTransientFetchFailure, ticker, err)
	}

	fresh := holdingFromQuote(ticker, quote)
	applied, err := s.store.Apply(ctx, ticket, func(h *model.Holding) {
		h.CurrentPrice = fresh.CurrentPrice
		h.PreviousClosePrice = fresh.PreviousClosePrice
		if h.Name == "" {
			h.Name = fresh.Name
			h.Currency = fresh.Currency
			h.Exchange = fresh.Exchange
		}
	})
	if err != nil {
		return false, err
	}
	if !applied {
		metrics.RecordFetch(metrics.KindQuote, metrics.OutcomeStale)
		return false, nil
	}

	metrics.RecordFetch(metrics.KindQuote, metrics.OutcomeSuccess)
	return true, nil
}

// UpdateAllQuotes refreshes the prices of every holding one by one.
// A failing ticker is reported in the result and does not stop the others.
func (s *QuoteService) UpdateAllQuotes(ctx context.Context) model.RefreshResult {
	result := model.NewRefreshResult()

	for _, ticker := range s.store.Tickers() {
		updated, err := s.UpdateQuote(ctx, ticker)
		switch {
		case err != nil:
			result.AddError(ticker, err)
		case updated:
			result.AddUpdated(ticker)
		default:
			result.AddSkipped(ticker)
		}
	}

	s.log.Info().
		Int("updated", result.TotalUpdated).
		Int("errors", result.TotalErrors).
		Msg("Quotes refreshed")

	return result
}

// RefreshAllHistory refetches history for window for every holding except excludeTicker.
//
// Fetches run concurrently, bounded by the configured concurrency. Each completion is applied
// to its own ticker only; results for tickers removed in the meantime, or overtaken by a newer
// history fetch, are dropped and reported as skipped.
func (s *QuoteService) RefreshAllHistory(ctx context.Context, window model.HistoryWindow, excludeTicker string) model.RefreshResult {
	tickers := s.store.Tickers()

	var mu sync.Mutex
	result := model.NewRefreshResult()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, ticker := range tickers {
		if ticker == excludeTicker {
			continue
		}
		g.Go(func() error {
			applied, err := s.refreshHistory(gctx, ticker, window)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.AddError(ticker, err)
			case applied:
				result.AddUpdated(ticker)
			default:
				result.AddSkipped(ticker)
			}
			// Per-ticker failures never cancel the siblings.
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info().
		Int("updated", result.TotalUpdated).
		Int("skipped", len(result.Skipped)).
		Int("errors", result.TotalErrors).
		Msg("History refreshed")

	return result
}

// DeleteHolding removes ticker. Returns false when it was not held.
// In-flight fetches for the ticker are dropped when they complete.
func (s *QuoteService) DeleteHolding(ctx context.Context, ticker string) bool {
	deleted := s.store.Delete(ctx, ticker)
	if deleted {
		s.log.Info().Str("ticker", ticker).Msg("Holding deleted")
	}
	return deleted
}

// ImportAllocations adds every entry as an upsert in order. It backs the import endpoint and
// share links. Percentages are clamped to [0, 100]; entries that fail are reported in the
// result and left out of the store.
func (s *QuoteService) ImportAllocations(ctx context.Context, entries []model.AllocationEntry) model.RefreshResult {
	result := model.NewRefreshResult()

	for _, e := range entries {
		if _, err := s.AddQuote(ctx, e.Ticker, ClampPercentage(e.PortfolioPercentage), true); err != nil {
			result.AddError(e.Ticker, err)
			continue
		}
		result.AddUpdated(e.Ticker)
	}

	s.log.Info().
		Int("imported", result.TotalUpdated).
		Int("errors", result.TotalErrors).
		Msg("Allocations imported")

	return result
}

// RestoreAllocations reloads a saved allocation list at startup.
//
// It adds entries like ImportAllocations, but only a ticker the source reports as unknown is
// dropped. A ticker whose quote fails for any other reason is kept with its percentage and no
// prices, so the saved list survives a network failure at boot; the next quote refresh fills
// it in. Kept tickers are reported as skipped.
func (s *QuoteService) RestoreAllocations(ctx context.Context, entries []model.AllocationEntry) model.RefreshResult {
	result := model.NewRefreshResult()

	for _, e := range entries {
		percentage := ClampPercentage(e.PortfolioPercentage)
		_, err := s.AddQuote(ctx, e.Ticker, percentage, true)
		switch {
		case err == nil:
			result.AddUpdated(e.Ticker)
		case errors.Is(err, apperrors.ErrSymbolNotFound):
			result.AddError(e.Ticker, err)
		default:
			if err := s.keepUnpriced(ctx, e.Ticker, percentage); err != nil {
				result.AddError(e.Ticker, err)
				continue
			}
			result.AddSkipped(e.Ticker)
		}
	}

	s.log.Info().
		Int("restored", result.TotalUpdated).
		Int("unpriced", len(result.Skipped)).
		Int("dropped", result.TotalErrors).
		Msg("Allocations restored")

	return result
}

// keepUnpriced stores ticker with percentage and NaN prices.
func (s *QuoteService) keepUnpriced(ctx context.Context, ticker string, percentage float64) error {
	h := model.Holding{
		Ticker:              ticker,
		CurrentPrice:        math.NaN(),
		PreviousClosePrice:  math.NaN(),
		PortfolioPercentage: percentage,
		DisplayColor:        randomBrightColor(),
	}
	if _, err := s.store.Upsert(ctx, ticker, h, UpsertOptions{AllowOverwrite: true, SetPercentage: true}); err != nil {
		return err
	}
	s.log.Warn().Str("ticker", ticker).Msg("Holding restored without prices")
	return nil
}

// refreshHistory fetches history for ticker and applies it under a ticket.
func (s *QuoteService) refreshHistory(ctx context.Context, ticker string, window model.HistoryWindow) (bool, error) {
	ticket, ok := s.store.Begin(ticker, FetchHistory)
	if !ok {
		return false, nil
	}

	points, err := s.client.GetHistory(ctx, ticker, window.StartDate(s.now()), string(window.Interval))
	if err != nil {
		metrics.RecordFetch(metrics.KindHistory, metrics.OutcomeError)
		return false, fmt.Errorf("%w: history %s: %w", apperrors.ErrTransientFetchFailure, ticker, err)
	}

	history := make([]model.PricePoint, len(points))
	for i, p := range points {
		history[i] = model.PricePoint{Date: p.Date, Close: p.Close}
	}

	applied, err := s.store.Apply(ctx, ticket, func(h *model.Holding) {
		h.HistoricalData = history
	})
	if err != nil {
		return false, err
	}
	if !applied {
		metrics.RecordFetch(metrics.KindHistory, metrics.OutcomeStale)
		s.log.Debug().Str("ticker", ticker).Msg("Discarded stale history response")
		return false, nil
	}

	metrics.RecordFetch(metrics.KindHistory, metrics.OutcomeSuccess)
	return true, nil
}

func (s *QuoteService) recordQuoteFailure(ticker string, err error) {
	if errors.Is(err, apperrors.ErrSymbolNotFound) {
		metrics.RecordFetch(metrics.KindQuote, metrics.OutcomeNotFound)
		s.log.Info().Str("ticker", ticker).Msg("Ticker not found")
		return
	}
	metrics.RecordFetch(metrics.KindQuote, metrics.OutcomeError)
	s.log.Warn().Err(err).Str("ticker", ticker).Msg("Quote fetch failed")
}

// holdingFromQuote maps a quote onto a holding. A missing price becomes NaN and the previous
// close falls back to the open.
func holdingFromQuote(ticker string, quote yahoo.QuoteSummary) model.Holding {
	name := strings.TrimSpace(quote.LongName)
	if name == "" {
		name = quote.ShortName
	}

	previous := quote.RegularMarketPreviousClose
	if previous == nil || *previous == 0 {
		previous = quote.RegularMarketOpen
	}

	return model.Holding{
		Ticker:             ticker,
		Name:               name,
		Currency:           quote.FinancialCurrency,
		Exchange:           quote.FullExchangeName,
		CurrentPrice:       floatOrNaN(quote.RegularMarketPrice),
		PreviousClosePrice: floatOrNaN(previous),
	}
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
