package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
)

// SnapshotCache keeps the last good live-opportunities snapshot per
// session, so a session that restarts mid-outage can still show stale
// data instead of an empty board.
type SnapshotCache struct {
	store Store
}

// NewSnapshotCache creates a snapshot cache on top of the given store.
func NewSnapshotCache(store Store) *SnapshotCache {
	return &SnapshotCache{store: store}
}

// Save stores the snapshot for a session.
func (c *SnapshotCache) Save(ctx context.Context, sessionID string, snapshot opportunity.Snapshot) error {
	if err := c.store.Set(ctx, PrefixSnapshot+sessionID, snapshot, TTLSnapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot for a session, and whether one existed.
func (c *SnapshotCache) Load(ctx context.Context, sessionID string) (opportunity.Snapshot, bool, error) {
	var snapshot opportunity.Snapshot
	err := c.store.Get(ctx, PrefixSnapshot+sessionID, &snapshot)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return opportunity.EmptySnapshot(), false, nil
		}
		return opportunity.EmptySnapshot(), false, fmt.Errorf("load snapshot: %w", err)
	}

	return snapshot.Normalize(), true, nil
}

// Forget drops the stored snapshot for a session.
func (c *SnapshotCache) Forget(ctx context.Context, sessionID string) error {
	return c.store.Delete(ctx, PrefixSnapshot+sessionID)
}
