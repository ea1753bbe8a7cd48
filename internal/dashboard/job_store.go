package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// JobStore holds the session's job recommendations.
//
// Refresh policy: a successful fetch replaces the collection wholesale,
// which also resets any locally applied flags. A failed fetch keeps the
// previous recommendations as they are.
type JobStore struct {
	sessionID string
	client    FeedClient
	token     string
	events    shared.EventPublisher

	mu   sync.RWMutex
	jobs []*opportunity.JobRecommendation
}

// NewJobStore creates an empty store for a session.
func NewJobStore(sessionID, token string, client FeedClient, events shared.EventPublisher) *JobStore {
	if events == nil {
		events = shared.NopPublisher{}
	}
	return &JobStore{
		sessionID: sessionID,
		client:    client,
		token:     token,
		events:    events,
		jobs:      []*opportunity.JobRecommendation{},
	}
}

// Refresh re-pulls the recommendations feed. On failure the current
// collection stays in place and the error is reported for logging.
func (s *JobStore) Refresh(ctx context.Context) error {
	jobs, err := s.client.FetchRecommendations(ctx, s.token)
	if err != nil {
		s.events.Publish(shared.NewEvent(shared.EventRefreshFailed, s.sessionID, map[string]any{
			"feed": "job_recommendations",
		}))
		return fmt.Errorf("refresh recommendations: %w", err)
	}

	if jobs == nil {
		jobs = []*opportunity.JobRecommendation{}
	}

	s.mu.Lock()
	s.jobs = jobs
	s.mu.Unlock()

	return nil
}

// Jobs returns a copy of the current collection. Entries are copied by
// value so readers never share memory with a concurrent Apply.
func (s *JobStore) Jobs() []*opportunity.JobRecommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*opportunity.JobRecommendation, len(s.jobs))
	for i, j := range s.jobs {
		snapshot := *j
		out[i] = &snapshot
	}
	return out
}

// Apply marks a recommendation as applied. Applying to an unknown ID or
// to an already applied recommendation silently changes nothing; only a
// first apply publishes the event that feeds the activity log and the
// confirmation notice.
func (s *JobStore) Apply(jobID string) {
	s.mu.Lock()

	var applied *opportunity.JobRecommendation
	for _, j := range s.jobs {
		if j.ID == jobID {
			if j.Apply(time.Now()) {
				applied = j
			}
			break
		}
	}
	var snapshot opportunity.JobRecommendation
	if applied != nil {
		snapshot = *applied
	}
	s.mu.Unlock()

	if applied == nil {
		return
	}

	s.events.Publish(shared.NewEvent(shared.EventJobApplied, s.sessionID, map[string]any{
		"job_id":  snapshot.ID,
		"title":   snapshot.Title,
		"company": snapshot.Company,
	}))
}
