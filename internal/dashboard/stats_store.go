package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// StatsStore holds the session's dashboard stats.
//
// Until the stats feed has succeeded once, the store serves defaults for
// the career score and defers the average progress to the learning
// store's derived value. After the first success, the feed's own numbers
// win; a failed refresh keeps the last good ones.
type StatsStore struct {
	sessionID string
	client    FeedClient
	token     string
	events    shared.EventPublisher

	mu      sync.RWMutex
	stats   shared.DashboardStats
	hasFeed bool
}

// NewStatsStore creates a store serving default stats.
func NewStatsStore(sessionID, token string, client FeedClient, events shared.EventPublisher) *StatsStore {
	if events == nil {
		events = shared.NopPublisher{}
	}
	return &StatsStore{
		sessionID: sessionID,
		client:    client,
		token:     token,
		events:    events,
		stats:     shared.DefaultStats(),
	}
}

// Refresh re-pulls the stats feed. On failure the previous values stay.
func (s *StatsStore) Refresh(ctx context.Context) error {
	stats, err := s.client.FetchStats(ctx, s.token)
	if err != nil {
		s.events.Publish(shared.NewEvent(shared.EventRefreshFailed, s.sessionID, map[string]any{
			"feed": "dashboard_stats",
		}))
		return fmt.Errorf("refresh stats: %w", err)
	}

	s.mu.Lock()
	s.stats = stats
	s.hasFeed = true
	s.mu.Unlock()

	return nil
}

// Stats returns the current values and whether they came from the feed.
func (s *StatsStore) Stats() (shared.DashboardStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, s.hasFeed
}
