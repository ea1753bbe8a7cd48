package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	learningErr      error
	jobsErr          error
	statsErr         error
	opportunitiesErr error

	learningCalls      atomic.Int64
	jobsCalls          atomic.Int64
	statsCalls         atomic.Int64
	opportunitiesCalls atomic.Int64
}

func (f *fakeTarget) ID() string { return "sess-1" }

func (f *fakeTarget) RefreshLearning(ctx context.Context) error {
	f.learningCalls.Add(1)
	return f.learningErr
}

func (f *fakeTarget) RefreshJobs(ctx context.Context) error {
	f.jobsCalls.Add(1)
	return f.jobsErr
}

func (f *fakeTarget) RefreshStats(ctx context.Context) error {
	f.statsCalls.Add(1)
	return f.statsErr
}

func (f *fakeTarget) RefreshOpportunities(ctx context.Context) error {
	f.opportunitiesCalls.Add(1)
	return f.opportunitiesErr
}

func TestDashboardRefreshJob_Name(t *testing.T) {
	job := NewDashboardRefreshJob(&fakeTarget{}, nil)
	assert.Equal(t, "dashboard-refresh:sess-1", job.Name())
	assert.Equal(t, "dashboard-refresh:abc", RefreshJobName("abc"))
}

func TestDashboardRefreshJob_RefreshesAllFeeds(t *testing.T) {
	target := &fakeTarget{}
	job := NewDashboardRefreshJob(target, nil)

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, int64(1), target.learningCalls.Load())
	assert.Equal(t, int64(1), target.jobsCalls.Load())
	assert.Equal(t, int64(1), target.statsCalls.Load())
	assert.Equal(t, int64(1), target.opportunitiesCalls.Load())

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.FailedFeeds)
}

func TestDashboardRefreshJob_FeedFailureIsIsolated(t *testing.T) {
	wantErr := errors.New("backend down")
	target := &fakeTarget{statsErr: wantErr}
	job := NewDashboardRefreshJob(target, nil)

	err := job.Run(context.Background())
	require.ErrorIs(t, err, wantErr)

	// The other three feeds still ran.
	assert.Equal(t, int64(1), target.learningCalls.Load())
	assert.Equal(t, int64(1), target.jobsCalls.Load())
	assert.Equal(t, int64(1), target.opportunitiesCalls.Load())

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.FailedFeeds)
}

func TestDashboardRefreshJob_AggregatesFailures(t *testing.T) {
	target := &fakeTarget{
		learningErr:      errors.New("paths down"),
		opportunitiesErr: errors.New("opportunities down"),
	}
	job := NewDashboardRefreshJob(target, nil)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, target.learningErr)
	assert.ErrorIs(t, err, target.opportunitiesErr)
	assert.Equal(t, 2, job.LastStats().FailedFeeds)
}
