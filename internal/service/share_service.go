package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/sharelink"
)

// ShareService creates share handles for the current allocations and imports them again.
type ShareService struct {
	store  *HoldingStore
	quotes *QuoteService
	codec  sharelink.Codec
	log    zerolog.Logger
}

// NewShareService creates a new ShareService.
func NewShareService(store *HoldingStore, quotes *QuoteService, codec sharelink.Codec, log zerolog.Logger) *ShareService {
	return &ShareService{
		store:  store,
		quotes: quotes,
		codec:  codec,
		log:    log.With().Str("service", "share").Logger(),
	}
}

// Create encodes the current allocations and returns the handle.
func (s *ShareService) Create(ctx context.Context) (string, error) {
	entries := s.store.Allocations()

	handle, err := s.codec.Encode(ctx, entries)
	if err != nil {
		return "", fmt.Errorf("failed to create share link: %w", err)
	}

	s.log.Info().Int("holdings", len(entries)).Msg("Share link created")
	return handle, nil
}

// Resolve returns the allocations behind handle without touching the store.
func (s *ShareService) Resolve(ctx context.Context, handle string) ([]model.AllocationEntry, error) {
	return s.codec.Decode(ctx, handle)
}

// Import resolves handle and upserts every shared allocation into the store.
func (s *ShareService) Import(ctx context.Context, handle string) (model.RefreshResult, error) {
	entries, err := s.codec.Decode(ctx, handle)
	if err != nil {
		return model.RefreshResult{}, err
	}
	return s.quotes.ImportAllocations(ctx, entries), nil
}
