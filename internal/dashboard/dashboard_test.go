package dashboard

import (
	"context"
	"sync"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/assistant"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/learning"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// fakeClient is a scriptable FeedClient for store and session tests.
type fakeClient struct {
	mu sync.Mutex

	paths    []*learning.Path
	pathsErr error

	jobs    []*opportunity.JobRecommendation
	jobsErr error

	stats    shared.DashboardStats
	statsErr error

	snapshot    opportunity.Snapshot
	snapshotErr error

	reply    string
	askErr   error
	askGate  chan struct{} // when set, Ask blocks until closed
	askCalls int
}

func (f *fakeClient) FetchLearningPaths(ctx context.Context, token string) ([]*learning.Path, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pathsErr != nil {
		return nil, f.pathsErr
	}
	return f.paths, nil
}

func (f *fakeClient) FetchRecommendations(ctx context.Context, token string) ([]*opportunity.JobRecommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jobsErr != nil {
		return nil, f.jobsErr
	}
	return f.jobs, nil
}

func (f *fakeClient) FetchStats(ctx context.Context, token string) (shared.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return shared.DashboardStats{}, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeClient) FetchOpportunities(ctx context.Context, token string) (opportunity.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshotErr != nil {
		return opportunity.EmptySnapshot(), f.snapshotErr
	}
	return f.snapshot, nil
}

func (f *fakeClient) Ask(ctx context.Context, token, message string, actx assistant.Context) (string, error) {
	f.mu.Lock()
	f.askCalls++
	gate := f.askGate
	reply, err := f.reply, f.askErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply, err
}

func (f *fakeClient) set(mutate func(*fakeClient)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mutate(f)
}

func mustPath(title string, progress int) *learning.Path {
	p, err := learning.NewPath(title, "desc for "+title, learning.DifficultyBeginner)
	if err != nil {
		panic(err)
	}
	p.Progress = progress
	return p
}
