// Package sharelink turns an allocation list into a short handle that can be put in a URL,
// and back. StoredCodec keeps the payload in the database under a random UUID; TokenCodec
// carries the payload inside a signed, encrypted fernet token and needs no storage.
package sharelink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/validation"
)

// Codec encodes an allocation list into a share handle and decodes it again.
// Decode returns apperrors.ErrShareLinkNotFound for unknown or invalid handles.
type Codec interface {
	Encode(ctx context.Context, entries []model.AllocationEntry) (string, error)
	Decode(ctx context.Context, handle string) ([]model.AllocationEntry, error)
}

// Store is the persistence used by StoredCodec. repository.ShareLinkRepository implements it.
type Store interface {
	InsertShareLink(ctx context.Context, hash string, payload []byte) error
	GetShareLink(ctx context.Context, hash string) ([]byte, error)
}

// StoredCodec stores payloads under a fresh UUID handle.
type StoredCodec struct {
	store Store
}

// NewStoredCodec creates a StoredCodec backed by store.
func NewStoredCodec(store Store) *StoredCodec {
	return &StoredCodec{store: store}
}

// Encode stores entries and returns the new handle.
func (c *StoredCodec) Encode(ctx context.Context, entries []model.AllocationEntry) (string, error) {
	payload, err := marshalEntries(entries)
	if err != nil {
		return "", err
	}

	handle := uuid.NewString()
	if err := c.store.InsertShareLink(ctx, handle, payload); err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrFailedToCreateShareLink, err)
	}
	return handle, nil
}

// Decode loads the entries stored under handle.
func (c *StoredCodec) Decode(ctx context.Context, handle string) ([]model.AllocationEntry, error) {
	if err := validation.ValidateUUID(handle); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrShareLinkNotFound, err)
	}

	payload, err := c.store.GetShareLink(ctx, handle)
	if err != nil {
		if errors.Is(err, apperrors.ErrShareLinkNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrShareLinkNotFound, handle)
		}
		return nil, err
	}
	return unmarshalEntries(payload)
}

// TokenCodec encodes entries into a fernet token. A zero ttl makes tokens never expire.
type TokenCodec struct {
	key *fernet.Key
	ttl time.Duration
}

// NewTokenCodec creates a TokenCodec from a base64 encoded 32-byte fernet key.
func NewTokenCodec(encodedKey string, ttl time.Duration) (*TokenCodec, error) {
	key, err := fernet.DecodeKey(strings.TrimSpace(encodedKey))
	if err != nil {
		return nil, fmt.Errorf("invalid share link key: %w", err)
	}
	return &TokenCodec{key: key, ttl: ttl}, nil
}

// Encode returns a URL-safe token carrying entries.
func (c *TokenCodec) Encode(_ context.Context, entries []model.AllocationEntry) (string, error) {
	payload, err := marshalEntries(entries)
	if err != nil {
		return "", err
	}

	token, err := fernet.EncryptAndSign(payload, c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrFailedToCreateShareLink, err)
	}
	return string(token), nil
}

// Decode verifies the token and returns its entries. Tampered, foreign-key and expired
// tokens are all reported as not found.
func (c *TokenCodec) Decode(_ context.Context, handle string) ([]model.AllocationEntry, error) {
	ttl := c.ttl
	if ttl <= 0 {
		// fernet skips the age check for a negative ttl.
		ttl = -1
	}

	payload := fernet.VerifyAndDecrypt([]byte(handle), ttl, []*fernet.Key{c.key})
	if payload == nil {
		return nil, fmt.Errorf("%w: invalid or expired token", apperrors.ErrShareLinkNotFound)
	}
	return unmarshalEntries(payload)
}

func marshalEntries(entries []model.AllocationEntry) ([]byte, error) {
	if entries == nil {
		entries = []model.AllocationEntry{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToCreateShareLink, err)
	}
	return payload, nil
}

func unmarshalEntries(payload []byte) ([]model.AllocationEntry, error) {
	entries := []model.AllocationEntry{}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode share link payload: %w", err)
	}
	return entries, nil
}
