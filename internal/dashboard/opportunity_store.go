package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// OpportunityStore holds the session's live opportunities snapshot.
//
// Refresh policy: a successful fetch replaces the whole snapshot
// atomically, so the three collections and the last-updated stamp never
// mix fetches. A failed fetch keeps the previous snapshot, including
// its now stale last-updated stamp.
type OpportunityStore struct {
	sessionID string
	client    FeedClient
	token     string
	events    shared.EventPublisher
	archive   SnapshotArchive

	mu       sync.RWMutex
	snapshot opportunity.Snapshot
}

// NewOpportunityStore creates a store seeded with an empty snapshot.
// The archive is optional.
func NewOpportunityStore(sessionID, token string, client FeedClient, events shared.EventPublisher, archive SnapshotArchive) *OpportunityStore {
	if events == nil {
		events = shared.NopPublisher{}
	}
	return &OpportunityStore{
		sessionID: sessionID,
		client:    client,
		token:     token,
		events:    events,
		archive:   archive,
		snapshot:  opportunity.EmptySnapshot(),
	}
}

// Seed loads the archived snapshot, if any, so a session created during
// a backend outage can show stale data instead of an empty board.
func (s *OpportunityStore) Seed(ctx context.Context) {
	if s.archive == nil {
		return
	}

	snapshot, ok, err := s.archive.Load(ctx, s.sessionID)
	if err != nil || !ok {
		return
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}

// Refresh re-pulls the live opportunities feed.
func (s *OpportunityStore) Refresh(ctx context.Context) error {
	snapshot, err := s.client.FetchOpportunities(ctx, s.token)
	if err != nil {
		s.events.Publish(shared.NewEvent(shared.EventRefreshFailed, s.sessionID, map[string]any{
			"feed": "live_opportunities",
		}))
		return fmt.Errorf("refresh opportunities: %w", err)
	}

	snapshot = snapshot.Normalize()

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	if s.archive != nil {
		// Best effort; a failed archive write must not fail the refresh.
		_ = s.archive.Save(ctx, s.sessionID, snapshot)
	}

	jobs, internships, hackathons := snapshot.Counts()
	s.events.Publish(shared.NewEvent(shared.EventSnapshotRefreshed, s.sessionID, map[string]any{
		"jobs":        jobs,
		"internships": internships,
		"hackathons":  hackathons,
	}))

	return nil
}

// Snapshot returns the current snapshot.
func (s *OpportunityStore) Snapshot() opportunity.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}
