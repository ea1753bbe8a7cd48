// Package jobs contains implementations of scheduled jobs for the dashboard.
// The central one is the per-session refresh pass that re-pulls all four
// feeds from the backend on a fixed interval.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD REFRESH JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshTarget is the part of a session the refresh job drives. Each
// method pulls one feed and applies that feed's own fallback policy, so
// an error return here means the policy was applied, not that the
// dashboard broke.
type RefreshTarget interface {
	// ID identifies the session the job refreshes.
	ID() string

	// RefreshLearning re-pulls the learning paths feed.
	RefreshLearning(ctx context.Context) error

	// RefreshJobs re-pulls the job recommendations feed.
	RefreshJobs(ctx context.Context) error

	// RefreshStats re-pulls the dashboard stats feed.
	RefreshStats(ctx context.Context) error

	// RefreshOpportunities re-pulls the live opportunities feed.
	RefreshOpportunities(ctx context.Context) error
}

// RefreshPassStats contains statistics from a refresh pass.
type RefreshPassStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	FailedFeeds int
}

// DashboardRefreshJob refreshes every feed of one session. The four
// feeds run concurrently and independently: one feed failing never
// stops the other three.
type DashboardRefreshJob struct {
	target RefreshTarget
	logger *slog.Logger

	lastStats atomic.Value // *RefreshPassStats
}

// NewDashboardRefreshJob creates a refresh job for the given session.
func NewDashboardRefreshJob(target RefreshTarget, logger *slog.Logger) *DashboardRefreshJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardRefreshJob{
		target: target,
		logger: logger,
	}
}

// RefreshJobName returns the scheduler name for a session's refresh job.
func RefreshJobName(sessionID string) string {
	return "dashboard-refresh:" + sessionID
}

// Name implements scheduler.Job.
func (j *DashboardRefreshJob) Name() string {
	return RefreshJobName(j.target.ID())
}

// Description implements scheduler.Job.
func (j *DashboardRefreshJob) Description() string {
	return "refreshes all dashboard feeds for one session"
}

// Run pulls all four feeds concurrently and waits for every one to
// settle. The returned error aggregates per-feed failures for logging;
// the session has already absorbed each failure through its fallback
// policy by the time Run returns.
func (j *DashboardRefreshJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	feeds := []struct {
		name    string
		refresh func(context.Context) error
	}{
		{"learning_paths", j.target.RefreshLearning},
		{"job_recommendations", j.target.RefreshJobs},
		{"dashboard_stats", j.target.RefreshStats},
		{"live_opportunities", j.target.RefreshOpportunities},
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)

	for _, feed := range feeds {
		wg.Add(1)
		go func(name string, refresh func(context.Context) error) {
			defer wg.Done()

			if err := refresh(ctx); err != nil {
				j.logger.Warn("feed refresh failed",
					"session", j.target.ID(), "feed", name, "error", err)

				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
		}(feed.name, feed.refresh)
	}

	wg.Wait()

	completedAt := time.Now()
	j.lastStats.Store(&RefreshPassStats{
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt),
		FailedFeeds: len(failures),
	})

	return errors.Join(failures...)
}

// LastStats returns statistics from the most recent pass, if any.
func (j *DashboardRefreshJob) LastStats() *RefreshPassStats {
	stats, _ := j.lastStats.Load().(*RefreshPassStats)
	return stats
}
