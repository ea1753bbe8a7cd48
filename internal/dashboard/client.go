// Package dashboard is the application layer of the learner dashboard.
// It owns session lifecycle, the per-feed stores with their fallback
// policies, the assistant conversation, and the activity and notice
// surfaces built on domain events.
package dashboard

import (
	"context"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/assistant"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/learning"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// FeedClient is the backend surface the dashboard pulls from. The
// backend API client implements it; tests substitute fakes per feed.
type FeedClient interface {
	FetchLearningPaths(ctx context.Context, token string) ([]*learning.Path, error)
	FetchRecommendations(ctx context.Context, token string) ([]*opportunity.JobRecommendation, error)
	FetchStats(ctx context.Context, token string) (shared.DashboardStats, error)
	FetchOpportunities(ctx context.Context, token string) (opportunity.Snapshot, error)
	Ask(ctx context.Context, token, message string, actx assistant.Context) (string, error)
}

// SnapshotArchive persists the last good opportunities snapshot per
// session so stale data survives a process restart.
type SnapshotArchive interface {
	Save(ctx context.Context, sessionID string, snapshot opportunity.Snapshot) error
	Load(ctx context.Context, sessionID string) (opportunity.Snapshot, bool, error)
	Forget(ctx context.Context, sessionID string) error
}
