package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/learning"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// LearningStore holds the session's learning paths and their derived
// average progress.
//
// Refresh policy: a successful fetch replaces the whole collection,
// including any locally added paths and locally advanced progress. A
// failed fetch replaces the collection with exactly one fallback
// placeholder. Local mutations are therefore deliberately ephemeral.
type LearningStore struct {
	sessionID string
	client    FeedClient
	token     string
	events    shared.EventPublisher

	mu       sync.RWMutex
	paths    []*learning.Path
	average  int
	degraded bool
}

// NewLearningStore creates an empty store for a session.
func NewLearningStore(sessionID, token string, client FeedClient, events shared.EventPublisher) *LearningStore {
	if events == nil {
		events = shared.NopPublisher{}
	}
	return &LearningStore{
		sessionID: sessionID,
		client:    client,
		token:     token,
		events:    events,
		paths:     []*learning.Path{},
	}
}

// Refresh re-pulls the learning paths feed and applies the replace or
// fall-back policy. The returned error reports the fetch failure after
// the fallback has already been installed.
func (s *LearningStore) Refresh(ctx context.Context) error {
	paths, err := s.client.FetchLearningPaths(ctx, s.token)
	if err != nil {
		s.mu.Lock()
		s.paths = []*learning.Path{learning.FallbackPath()}
		s.average = learning.AverageProgress(s.paths)
		s.degraded = true
		s.mu.Unlock()

		s.events.Publish(shared.NewEvent(shared.EventRefreshFailed, s.sessionID, map[string]any{
			"feed": "learning_paths",
		}))
		return fmt.Errorf("refresh learning paths: %w", err)
	}

	if paths == nil {
		paths = []*learning.Path{}
	}

	s.mu.Lock()
	s.paths = paths
	s.average = learning.AverageProgress(paths)
	s.degraded = false
	s.mu.Unlock()

	return nil
}

// Paths returns a copy of the current collection. Entries are copied by
// value so readers never share memory with a concurrent Advance.
func (s *LearningStore) Paths() []*learning.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*learning.Path, len(s.paths))
	for i, p := range s.paths {
		snapshot := *p
		out[i] = &snapshot
	}
	return out
}

// Average returns the derived average progress.
func (s *LearningStore) Average() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.average
}

// Degraded reports whether the store currently shows the fallback placeholder.
func (s *LearningStore) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// AddPath creates a locally added path and appends it at the end of the
// collection. The path lives until the next successful refresh.
func (s *LearningStore) AddPath(title, description string, difficulty learning.Difficulty) (*learning.Path, error) {
	path, err := learning.NewPath(title, description, difficulty)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.average = learning.AverageProgress(s.paths)
	s.mu.Unlock()

	s.events.Publish(shared.NewEvent(shared.EventPathAdded, s.sessionID, map[string]any{
		"path_id": path.ID,
		"title":   path.Title,
	}))

	return path, nil
}

// Advance bumps a path's progress by one step. Completing the path
// publishes a completion event; advancing an already completed path is
// a no-op. An unknown ID is also a no-op and returns nil.
func (s *LearningStore) Advance(pathID string) *learning.Path {
	s.mu.Lock()

	var target *learning.Path
	for _, p := range s.paths {
		if p.ID == pathID {
			target = p
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return nil
	}

	completed := target.Advance(time.Now())
	s.average = learning.AverageProgress(s.paths)
	snapshot := *target
	s.mu.Unlock()

	s.events.Publish(shared.NewEvent(shared.EventPathAdvanced, s.sessionID, map[string]any{
		"path_id":  snapshot.ID,
		"title":    snapshot.Title,
		"progress": snapshot.Progress,
	}))

	if completed {
		s.events.Publish(shared.NewEvent(shared.EventPathCompleted, s.sessionID, map[string]any{
			"path_id": snapshot.ID,
			"title":   snapshot.Title,
		}))
	}

	return &snapshot
}
