package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

// AllocationRepository persists the ticker + percentage snapshot of the portfolio.
// Prices and history are never stored; they are refetched on restore.
type AllocationRepository struct {
	db *sql.DB
}

// NewAllocationRepository creates a new AllocationRepository with the provided database connection.
func NewAllocationRepository(db *sql.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// Load returns the last saved snapshot in insertion order.
// Returns an empty slice when nothing was saved yet.
func (r *AllocationRepository) Load(ctx context.Context) ([]model.AllocationEntry, error) {
	query := `
        SELECT ticker, portfolio_percentage
        FROM allocation
        ORDER BY position ASC
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation table: %w", err)
	}
	defer rows.Close()

	entries := []model.AllocationEntry{}
	for rows.Next() {
		var e model.AllocationEntry
		if err := rows.Scan(&e.Ticker, &e.PortfolioPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan allocation table results: %w", err)
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation table: %w", err)
	}

	return entries, nil
}

// Save replaces the stored snapshot with entries inside one transaction.
// The slice order is kept in the position column. Failures wrap apperrors.ErrFailedToPersist.
func (r *AllocationRepository) Save(ctx context.Context, entries []model.AllocationEntry) error {
	if err := r.replaceAll(ctx, entries); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToPersist, err)
	}
	return nil
}

func (r *AllocationRepository) replaceAll(ctx context.Context, entries []model.AllocationEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM allocation`); err != nil {
		return fmt.Errorf("failed to clear allocation table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO allocation (ticker, portfolio_percentage, position)
        VALUES (?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare allocation insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Ticker, e.PortfolioPercentage, i); err != nil {
			return fmt.Errorf("failed to insert allocation %s: %w", e.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit allocation snapshot: %w", err)
	}
	return nil
}
