// Package session owns the bearer token's storage, decoding, and expiry
// evaluation. Claims are read without signature verification — the
// backend is the authority — and are advisory only: they drive display,
// never authorization.
package session

import (
	"log/slog"
	"time"

	"bezorgen/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKey is the storage key the token lives under.
const TokenKey = "bezorgen_token"

// expiryMargin is subtracted from the token's expiry so the client stops
// trusting a token five minutes before the server would reject it.
const expiryMargin = 5 * time.Minute

// KV is the durable storage medium behind the store. The CLI backs it
// with the statestore SQLite table; tests use an in-memory map.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store is the single owner of the session token lifecycle.
type Store struct {
	kv  KV
	now func() time.Time
}

// NewStore creates a session store over the given storage medium.
func NewStore(kv KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Save persists the token. No validation is performed: the token was
// just issued by the backend and is treated as opaque.
func (s *Store) Save(token string) error {
	return s.kv.Set(TokenKey, token)
}

// Read returns the persisted token, or false when unauthenticated.
// Storage failures degrade to absent rather than propagating.
func (s *Store) Read() (string, bool) {
	token, ok, err := s.kv.Get(TokenKey)
	if err != nil {
		slog.Warn("failed to read session token", "error", err)
		return "", false
	}
	return token, ok
}

// Clear removes the token; clearing an absent token is a no-op.
func (s *Store) Clear() error {
	return s.kv.Delete(TokenKey)
}

// DecodeClaims splits and decodes the token's claims segment without
// verifying the signature. Any malformation degrades to absent.
func (s *Store) DecodeClaims() (*models.SessionClaims, bool) {
	token, ok := s.Read()
	if !ok || token == "" {
		return nil, false
	}

	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, &models.SessionClaims{})
	if err != nil {
		return nil, false
	}

	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok {
		return nil, false
	}

	return claims, true
}

// IsExpired reports whether the session should no longer be trusted:
// no token, no parseable claims, no expiry claim, or an expiry within
// the five-minute margin all count as expired.
func (s *Store) IsExpired() bool {
	claims, ok := s.DecodeClaims()
	if !ok || claims.ExpiresAt == nil {
		return true
	}

	return !s.now().Before(claims.ExpiresAt.Time.Add(-expiryMargin))
}

// IsAuthenticated reports whether a usable session exists.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Read()
	return ok && !s.IsExpired()
}
