package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/metrics"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// AllocationPersister stores the ticker + percentage snapshot of the portfolio.
// repository.AllocationRepository is the SQLite implementation.
type AllocationPersister interface {
	Load(ctx context.Context) ([]model.AllocationEntry, error)
	Save(ctx context.Context, entries []model.AllocationEntry) error
}

// FetchKind separates quote and history responses so they are sequenced independently.
type FetchKind int

const (
	FetchQuote FetchKind = iota
	FetchHistory
)

func (k FetchKind) String() string {
	if k == FetchHistory {
		return metrics.KindHistory
	}
	return metrics.KindQuote
}

// FetchTicket identifies an in-flight fetch for one ticker.
// A ticket is only honoured by Apply while the holding it was issued for still exists.
type FetchTicket struct {
	Ticker     string
	Kind       FetchKind
	Generation uint64
	Seq        uint64
}

// UpsertOptions controls how Upsert treats an existing key.
type UpsertOptions struct {
	AllowOverwrite bool
	SetPercentage  bool
}

type storedHolding struct {
	holding    model.Holding
	generation uint64
	applied    map[FetchKind]uint64
}

// HoldingStore is the ordered, in-memory set of holdings keyed by ticker.
// Readers always receive copies. Every insert, overwrite and delete is followed by a
// snapshot save on the persister while the write lock is held, so saves land in mutation order.
type HoldingStore struct {
	mu         sync.RWMutex
	order      []string
	holdings   map[string]*storedHolding
	persister  AllocationPersister
	log        zerolog.Logger
	generation uint64
	seq        uint64
}

// NewHoldingStore creates an empty store. persister may be nil, in which case nothing is saved.
func NewHoldingStore(persister AllocationPersister, log zerolog.Logger) *HoldingStore {
	return &HoldingStore{
		holdings:  make(map[string]*storedHolding),
		persister: persister,
		log:       log.With().Str("service", "holding_store").Logger(),
	}
}

// Get returns a copy of the holding stored under ticker.
func (s *HoldingStore) Get(ticker string) (model.Holding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.holdings[ticker]
	if !ok {
		return model.Holding{}, false
	}
	return stored.holding.Clone(), true
}

// Has reports whether ticker is held.
func (s *HoldingStore) Has(ticker string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.holdings[ticker]
	return ok
}

// Len returns the number of holdings.
func (s *HoldingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}

// Values returns copies of all holdings in insertion order.
func (s *HoldingStore) Values() []model.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Holding, 0, len(s.order))
	for _, ticker := range s.order {
		out = append(out, s.holdings[ticker].holding.Clone())
	}
	return out
}

// Tickers returns the held tickers in insertion order.
func (s *HoldingStore) Tickers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Last returns the most recently inserted holding.
func (s *HoldingStore) Last() (model.Holding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return model.Holding{}, false
	}
	return s.holdings[s.order[len(s.order)-1]].holding.Clone(), true
}

// Allocations returns the persisted projection in insertion order.
func (s *HoldingStore) Allocations() []model.AllocationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.allocationsLocked()
}

func (s *HoldingStore) allocationsLocked() []model.AllocationEntry {
	out := make([]model.AllocationEntry, 0, len(s.order))
	for _, ticker := range s.order {
		out = append(out, s.holdings[ticker].holding.Allocation())
	}
	return out
}

// Upsert inserts or overwrites the holding stored under ticker.
//
// Without AllowOverwrite an existing key fails with apperrors.ErrDuplicateTicker and nothing changes.
// On overwrite the key keeps its position and display colour; the stored percentage is kept unless
// SetPercentage is set, and stored history is kept when the incoming holding carries none.
// Quote fetches issued before the overwrite are dropped when they complete.
//
// Returns the stored copy.
func (s *HoldingStore) Upsert(ctx context.Context, ticker string, h model.Holding, opts UpsertOptions) (model.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h = h.Clone()
	h.Ticker = ticker

	existing, ok := s.holdings[ticker]
	if ok {
		if !opts.AllowOverwrite {
			return model.Holding{}, fmt.Errorf("%w: %s", apperrors.ErrDuplicateTicker, ticker)
		}
		prev := existing.holding
		if !opts.SetPercentage {
			h.PortfolioPercentage = prev.PortfolioPercentage
		}
		if prev.DisplayColor != "" {
			h.DisplayColor = prev.DisplayColor
		}
		if h.HistoricalData == nil {
			h.HistoricalData = prev.HistoricalData
		}
		h.Revision = prev.Revision + 1
		existing.holding = h
	} else {
		s.generation++
		h.Revision = 1
		existing = &storedHolding{
			holding:    h,
			generation: s.generation,
			applied:    make(map[FetchKind]uint64),
		}
		s.holdings[ticker] = existing
		s.order = append(s.order, ticker)
	}

	s.seq++
	existing.applied[FetchQuote] = s.seq

	s.persistLocked(ctx)
	metrics.SetHoldings(len(s.order))

	return h.Clone(), nil
}

// Delete removes ticker. Returns false when it was not held.
func (s *HoldingStore) Delete(ctx context.Context, ticker string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.holdings[ticker]; !ok {
		return false
	}

	delete(s.holdings, ticker)
	for i, t := range s.order {
		if t == ticker {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.persistLocked(ctx)
	metrics.SetHoldings(len(s.order))
	return true
}

// SetPercentage stores pct for ticker and persists the snapshot. Returns false when ticker is not held.
func (s *HoldingStore) SetPercentage(ctx context.Context, ticker string, pct float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.holdings[ticker]
	if !ok {
		return false
	}
	stored.holding.PortfolioPercentage = pct
	stored.holding.Revision++
	s.persistLocked(ctx)
	return true
}

// Begin issues a ticket for a fetch of kind against ticker. Returns false when ticker is not held.
func (s *HoldingStore) Begin(ticker string, kind FetchKind) (FetchTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.holdings[ticker]
	if !ok {
		return FetchTicket{}, false
	}
	s.seq++
	return FetchTicket{
		Ticker:     ticker,
		Kind:       kind,
		Generation: stored.generation,
		Seq:        s.seq,
	}, true
}

// Apply runs mutate on the holding named by ticket and stores the result.
//
// The mutation is skipped (false, nil) when the ticker was deleted, deleted and re-added,
// or a newer fetch of the same kind has already been applied. mutate cannot change the
// ticker or the percentage.
func (s *HoldingStore) Apply(_ context.Context, ticket FetchTicket, mutate func(*model.Holding)) (bool, error) {
	if mutate == nil {
		return false, fmt.Errorf("apply %s: nil mutation", ticket.Ticker)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.holdings[ticket.Ticker]
	if !ok || stored.generation != ticket.Generation {
		return false, nil
	}
	if ticket.Seq < stored.applied[ticket.Kind] {
		return false, nil
	}

	h := stored.holding.Clone()
	mutate(&h)
	h.Ticker = stored.holding.Ticker
	h.PortfolioPercentage = stored.holding.PortfolioPercentage
	h.Revision = stored.holding.Revision + 1

	stored.holding = h
	stored.applied[ticket.Kind] = ticket.Seq
	return true, nil
}

func (s *HoldingStore) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.allocationsLocked()); err != nil {
		metrics.RecordPersistFailure()
		s.log.Error().Err(err).Msg("Failed to save allocation snapshot")
	}
}
