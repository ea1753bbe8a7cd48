package redis

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// SessionRegistry maps bearer credentials to session records. The
// record is deliberately thin: feed data, transcripts, and activity all
// live in process memory and die with the session.
//
// Raw tokens never touch the store: keys are hex-encoded SHA3-256
// digests of the token, so a Redis dump leaks no usable credential.
type SessionRegistry struct {
	store Store
	ttl   time.Duration
}

// NewSessionRegistry creates a registry on top of the given store.
func NewSessionRegistry(store Store) *SessionRegistry {
	return &SessionRegistry{
		store: store,
		ttl:   TTLSession,
	}
}

// Register stores the record under the hashed token, refreshing the TTL.
func (r *SessionRegistry) Register(ctx context.Context, token string, record shared.SessionRecord) error {
	if token == "" {
		return shared.ErrNoCredential
	}

	if err := r.store.Set(ctx, sessionKey(token), record, r.ttl); err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	return nil
}

// Lookup finds the record for a credential.
// Returns shared.ErrSessionNotFound when no session exists for it.
func (r *SessionRegistry) Lookup(ctx context.Context, token string) (shared.SessionRecord, error) {
	if token == "" {
		return shared.SessionRecord{}, shared.ErrNoCredential
	}

	var record shared.SessionRecord
	err := r.store.Get(ctx, sessionKey(token), &record)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return shared.SessionRecord{}, shared.ErrSessionNotFound
		}
		return shared.SessionRecord{}, fmt.Errorf("lookup session: %w", err)
	}

	return record, nil
}

// Remove forgets the session for a credential. Removing an unknown
// credential is not an error.
func (r *SessionRegistry) Remove(ctx context.Context, token string) error {
	if token == "" {
		return shared.ErrNoCredential
	}

	return r.store.Delete(ctx, sessionKey(token))
}

// sessionKey hashes a bearer token into a namespaced Redis key.
func sessionKey(token string) string {
	digest := sha3.Sum256([]byte(token))
	return PrefixSession + hex.EncodeToString(digest[:])
}
