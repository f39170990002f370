package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/repository"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/service"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/sharelink"
)

// DefaultWindow is the history window used by the test services.
var DefaultWindow = model.HistoryWindow{Period: model.PeriodYear, Interval: model.IntervalWeek}

// MemoryPersister records every snapshot it is asked to save.
type MemoryPersister struct {
	mu      sync.Mutex
	Saved   []model.AllocationEntry
	History [][]model.AllocationEntry
	SaveErr error
	LoadErr error
}

// NewMemoryPersister creates a persister preloaded with entries.
func NewMemoryPersister(entries ...model.AllocationEntry) *MemoryPersister {
	return &MemoryPersister{Saved: entries}
}

// Load returns the last saved snapshot.
func (p *MemoryPersister) Load(_ context.Context) ([]model.AllocationEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.LoadErr != nil {
		return nil, p.LoadErr
	}
	return append([]model.AllocationEntry{}, p.Saved...), nil
}

// Save records entries unless SaveErr is set.
func (p *MemoryPersister) Save(_ context.Context, entries []model.AllocationEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.SaveErr != nil {
		return p.SaveErr
	}
	p.Saved = append([]model.AllocationEntry{}, entries...)
	p.History = append(p.History, p.Saved)
	return nil
}

// Snapshot returns the last saved snapshot.
func (p *MemoryPersister) Snapshot() []model.AllocationEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]model.AllocationEntry{}, p.Saved...)
}

// Saves returns how many snapshots were saved.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.History)
}

// Services bundles the engine services around one store for tests.
type Services struct {
	Store       *service.HoldingStore
	Persister   *MemoryPersister
	Yahoo       *MockYahooClient
	Allocation  *service.AllocationService
	Quotes      *service.QuoteService
	Charts      *service.ChartService
	Suggestions *service.SuggestionService
	Share       *service.ShareService
}

// NewTestStore creates a store backed by a MemoryPersister.
func NewTestStore(t *testing.T) (*service.HoldingStore, *MemoryPersister) {
	t.Helper()

	persister := NewMemoryPersister()
	return service.NewHoldingStore(persister, zerolog.Nop()), persister
}

// NewTestServices wires every service against mock and an in-memory persister.
// Share links use the stored codec on db; pass nil to leave the share service unset.
func NewTestServices(t *testing.T, db *sql.DB, mock *MockYahooClient) *Services {
	t.Helper()

	if mock == nil {
		mock = NewMockYahooClient()
	}
	store, persister := NewTestStore(t)
	log := zerolog.Nop()

	quotes := service.NewQuoteService(store, mock, DefaultWindow, 4, log)
	svc := &Services{
		Store:       store,
		Persister:   persister,
		Yahoo:       mock,
		Allocation:  service.NewAllocationService(store, log),
		Quotes:      quotes,
		Charts:      service.NewChartService(store, quotes.Window),
		Suggestions: service.NewSuggestionService(store, mock, log),
	}

	if db != nil {
		codec := sharelink.NewStoredCodec(repository.NewShareLinkRepository(db))
		svc.Share = service.NewShareService(store, quotes, codec, log)
	}
	return svc
}

// NewTestSystemService creates a SystemService on db.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}
