package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/yahoo"
)

// MaxSearchSuggestions caps autocomplete results.
const MaxSearchSuggestions = 6

// SuggestionService proposes tickers to add.
type SuggestionService struct {
	store  *HoldingStore
	client yahoo.Client
	log    zerolog.Logger
}

// NewSuggestionService creates a new SuggestionService.
func NewSuggestionService(store *HoldingStore, client yahoo.Client, log zerolog.Logger) *SuggestionService {
	return &SuggestionService{
		store:  store,
		client: client,
		log:    log.With().Str("service", "suggestion").Logger(),
	}
}

// Suggest returns ticker suggestions.
//
// A non-empty query autocompletes against the search endpoint. With no query, an empty
// portfolio gets the trending tickers and any other portfolio gets recommendations for the
// most recently added holding.
//
// On failure an empty list is returned together with the wrapped error.
func (s *SuggestionService) Suggest(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)

	var (
		symbols []string
		err     error
		source  string
	)

	switch last, ok := s.store.Last(); {
	case query != "":
		source = "search"
		symbols, err = s.client.Search(ctx, query, MaxSearchSuggestions)
	case !ok:
		source = "trending"
		symbols, err = s.client.Trending(ctx)
	default:
		source = "recommendations"
		symbols, err = s.client.Recommendations(ctx, last.Ticker)
	}

	if err != nil {
		s.log.Warn().Err(err).Str("source", source).Str("query", query).Msg("Suggestion lookup failed")
		return []string{}, fmt.Errorf("%w: %s: %w", apperrors.ErrTransientFetchFailure, source, err)
	}

	if len(symbols) > MaxSearchSuggestions && source == "search" {
		symbols = symbols[:MaxSearchSuggestions]
	}
	if symbols == nil {
		symbols = []string{}
	}
	return symbols, nil
}
