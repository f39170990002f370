package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// QuoteRefresher is the part of service.QuoteService the refresh job needs.
type QuoteRefresher interface {
	UpdateAllQuotes(ctx context.Context) model.RefreshResult
}

// QuoteRefreshJob refreshes the prices of every holding.
type QuoteRefreshJob struct {
	quotes  QuoteRefresher
	timeout time.Duration
	log     zerolog.Logger
}

// NewQuoteRefreshJob creates the job. Each run is bounded by timeout.
func NewQuoteRefreshJob(quotes QuoteRefresher, timeout time.Duration, log zerolog.Logger) *QuoteRefreshJob {
	return &QuoteRefreshJob{
		quotes:  quotes,
		timeout: timeout,
		log:     log.With().Str("job", "quote_refresh").Logger(),
	}
}

// Name returns the job name
func (j *QuoteRefreshJob) Name() string {
	return "quote_refresh"
}

// Run refreshes all quotes. It fails when every ticker failed.
func (j *QuoteRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result := j.quotes.UpdateAllQuotes(ctx)

	j.log.Info().
		Int("updated", result.TotalUpdated).
		Int("skipped", len(result.Skipped)).
		Int("errors", result.TotalErrors).
		Msg("Scheduled quote refresh finished")

	if result.TotalErrors > 0 && result.TotalUpdated == 0 {
		return fmt.Errorf("all %d quote refreshes failed", result.TotalErrors)
	}
	return nil
}
