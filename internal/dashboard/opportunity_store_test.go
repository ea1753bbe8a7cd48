package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/opportunity"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/persistence/redis"
)

func sampleSnapshot() opportunity.Snapshot {
	return opportunity.Snapshot{
		Jobs: []opportunity.LiveOpportunity{
			{ID: "j1", Title: "Go Developer", Company: "Acme", Kind: opportunity.KindJob},
		},
		Internships: []opportunity.LiveOpportunity{},
		Hackathons: []opportunity.LiveOpportunity{
			{ID: "h1", Title: "AI Hackathon", Kind: opportunity.KindHackathon},
			{ID: "h2", Title: "Web3 Hackathon", Kind: opportunity.KindHackathon},
		},
		LastUpdated: "T1",
	}
}

func TestOpportunityStore_StartsEmpty(t *testing.T) {
	store := NewOpportunityStore("s1", "tok", &fakeClient{}, nil, nil)

	snapshot := store.Snapshot()
	assert.Empty(t, snapshot.Jobs)
	assert.NotNil(t, snapshot.Jobs)
	assert.Empty(t, snapshot.LastUpdated)
}

func TestOpportunityStore_RefreshReplacesAtomically(t *testing.T) {
	client := &fakeClient{snapshot: sampleSnapshot()}
	store := NewOpportunityStore("s1", "tok", client, nil, nil)

	require.NoError(t, store.Refresh(context.Background()))

	snapshot := store.Snapshot()
	jobs, internships, hackathons := snapshot.Counts()
	assert.Equal(t, 1, jobs)
	assert.Equal(t, 0, internships)
	assert.Equal(t, 2, hackathons)
	assert.Equal(t, "T1", snapshot.LastUpdated)
}

func TestOpportunityStore_FailureRetainsStaleSnapshot(t *testing.T) {
	client := &fakeClient{snapshot: sampleSnapshot()}
	store := NewOpportunityStore("s1", "tok", client, nil, nil)
	require.NoError(t, store.Refresh(context.Background()))

	client.set(func(f *fakeClient) { f.snapshotErr = errors.New("backend down") })

	require.Error(t, store.Refresh(context.Background()))

	// The stale snapshot stays whole, stamp included.
	snapshot := store.Snapshot()
	assert.Equal(t, "T1", snapshot.LastUpdated)
	assert.Len(t, snapshot.Hackathons, 2)
}

func TestOpportunityStore_ArchiveRoundTrip(t *testing.T) {
	archive := redis.NewSnapshotCache(redis.NewMemoryStore())

	client := &fakeClient{snapshot: sampleSnapshot()}
	store := NewOpportunityStore("s1", "tok", client, nil, archive)
	require.NoError(t, store.Refresh(context.Background()))

	// A new store for the same session seeds from the archive.
	replacement := NewOpportunityStore("s1", "tok", client, nil, archive)
	replacement.Seed(context.Background())

	snapshot := replacement.Snapshot()
	assert.Equal(t, "T1", snapshot.LastUpdated)
	assert.Len(t, snapshot.Jobs, 1)
}

func TestOpportunityStore_SeedWithoutArchiveIsNoop(t *testing.T) {
	store := NewOpportunityStore("s1", "tok", &fakeClient{}, nil, nil)
	store.Seed(context.Background())
	assert.Empty(t, store.Snapshot().Jobs)
}
