// Package apperrors defines the sentinel errors shared across the engine.
// Callers compare with errors.Is; services wrap them with fmt.Errorf("...: %w").
package apperrors

import "errors"

// Domain entity errors represent missing or unknown entities.
var (
	// ErrTickerNotFound indicates that the quote source returned no usable payload for a ticker.
	// The add attempt for that ticker is terminated and the store is left unchanged.
	ErrTickerNotFound = errors.New("ticker not found")

	// ErrHoldingNotFound indicates that the ticker is not part of the current portfolio.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrSymbolNotFound indicates that a symbol lookup against the finance API returned no results.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrShareLinkNotFound indicates that a share handle could not be resolved.
	ErrShareLinkNotFound = errors.New("share link not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrDuplicateTicker indicates a non-upsert insert of a ticker that is already held.
	ErrDuplicateTicker = errors.New("ticker already added")

	// ErrInvalidAllocationInput indicates a non-numeric or otherwise unusable percentage entry.
	ErrInvalidAllocationInput = errors.New("invalid allocation input")

	// ErrInvalidTicker indicates an empty or malformed ticker symbol.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrInvalidWindow indicates an unsupported time period / interval combination.
	ErrInvalidWindow = errors.New("invalid history window")
)

// Operation failure errors represent failures talking to collaborators.
var (
	// ErrTransientFetchFailure indicates a network or parse error while refreshing quotes or history.
	// The holding keeps its last-known-good data and the engine does not retry on its own.
	ErrTransientFetchFailure = errors.New("transient fetch failure")

	// ErrFailedToPersist indicates the allocation snapshot could not be written.
	ErrFailedToPersist = errors.New("failed to persist allocations")

	// ErrFailedToCreateShareLink indicates the share codec could not encode the portfolio.
	ErrFailedToCreateShareLink = errors.New("failed to create share link")
)
