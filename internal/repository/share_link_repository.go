package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
)

// ShareLinkRepository stores encoded portfolios under a share handle.
type ShareLinkRepository struct {
	db *sql.DB
}

// NewShareLinkRepository creates a new ShareLinkRepository with the provided database connection.
func NewShareLinkRepository(db *sql.DB) *ShareLinkRepository {
	return &ShareLinkRepository{db: db}
}

// InsertShareLink stores payload under hash.
func (r *ShareLinkRepository) InsertShareLink(ctx context.Context, hash string, payload []byte) error {
	query := `
        INSERT INTO share_link (hash, portfolio)
        VALUES (?, ?)
    `

	if _, err := r.db.ExecContext(ctx, query, hash, string(payload)); err != nil {
		return fmt.Errorf("failed to insert share link: %w", err)
	}
	return nil
}

// GetShareLink returns the payload stored under hash.
// Returns apperrors.ErrShareLinkNotFound when no row matches.
func (r *ShareLinkRepository) GetShareLink(ctx context.Context, hash string) ([]byte, error) {
	query := `
        SELECT portfolio
        FROM share_link
        WHERE hash = ?
    `

	var payload string
	err := r.db.QueryRowContext(ctx, query, hash).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrShareLinkNotFound
		}
		return nil, fmt.Errorf("failed to query share link: %w", err)
	}
	return []byte(payload), nil
}
