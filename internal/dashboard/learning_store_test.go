package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/learning"
	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

func TestLearningStore_RefreshReplacesWholesale(t *testing.T) {
	client := &fakeClient{paths: []*learning.Path{mustPath("Go", 40), mustPath("SQL", 60)}}
	store := NewLearningStore("s1", "tok", client, nil)

	require.NoError(t, store.Refresh(context.Background()))
	assert.Len(t, store.Paths(), 2)
	assert.Equal(t, 50, store.Average())
	assert.False(t, store.Degraded())

	// A local addition disappears on the next successful refresh.
	_, err := store.AddPath("Rust", "systems programming", learning.DifficultyAdvanced)
	require.NoError(t, err)
	assert.Len(t, store.Paths(), 3)

	require.NoError(t, store.Refresh(context.Background()))
	assert.Len(t, store.Paths(), 2)
}

func TestLearningStore_RefreshFailureInstallsFallback(t *testing.T) {
	client := &fakeClient{pathsErr: errors.New("backend down")}
	store := NewLearningStore("s1", "tok", client, nil)

	err := store.Refresh(context.Background())
	require.Error(t, err)

	paths := store.Paths()
	require.Len(t, paths, 1)
	assert.Equal(t, "fallback-1", paths[0].ID)
	assert.Equal(t, 35, paths[0].Progress)
	assert.Equal(t, 35, store.Average())
	assert.True(t, store.Degraded())
}

func TestLearningStore_RecoveryClearsFallback(t *testing.T) {
	client := &fakeClient{pathsErr: errors.New("down")}
	store := NewLearningStore("s1", "tok", client, nil)

	require.Error(t, store.Refresh(context.Background()))
	require.True(t, store.Degraded())

	client.set(func(f *fakeClient) {
		f.pathsErr = nil
		f.paths = []*learning.Path{mustPath("Go", 10)}
	})

	require.NoError(t, store.Refresh(context.Background()))
	assert.False(t, store.Degraded())
	require.Len(t, store.Paths(), 1)
	assert.Equal(t, "Go", store.Paths()[0].Title)
}

func TestLearningStore_AddPathValidation(t *testing.T) {
	store := NewLearningStore("s1", "tok", &fakeClient{}, nil)

	_, err := store.AddPath("   ", "desc", learning.DifficultyBeginner)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = store.AddPath("Title", "", learning.DifficultyBeginner)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestLearningStore_AddPathAppendsAtEnd(t *testing.T) {
	client := &fakeClient{paths: []*learning.Path{mustPath("Go", 100)}}
	store := NewLearningStore("s1", "tok", client, nil)
	require.NoError(t, store.Refresh(context.Background()))

	added, err := store.AddPath("Rust", "systems programming", learning.DifficultyAdvanced)
	require.NoError(t, err)

	paths := store.Paths()
	require.Len(t, paths, 2)
	assert.Equal(t, added.ID, paths[1].ID)
	assert.Equal(t, 0, paths[1].Progress)
	assert.Equal(t, 50, store.Average())
}

func TestLearningStore_Advance(t *testing.T) {
	client := &fakeClient{paths: []*learning.Path{mustPath("Go", 90)}}
	store := NewLearningStore("s1", "tok", client, nil)
	require.NoError(t, store.Refresh(context.Background()))

	id := store.Paths()[0].ID

	path := store.Advance(id)
	require.NotNil(t, path)
	assert.Equal(t, 100, path.Progress)
	assert.Equal(t, learning.StatusCompleted, path.Status())

	// Advancing a completed path changes nothing.
	path = store.Advance(id)
	require.NotNil(t, path)
	assert.Equal(t, 100, path.Progress)

	// Advancing an unknown ID is a no-op.
	assert.Nil(t, store.Advance("nope"))
	assert.Len(t, store.Paths(), 1)
}

func TestLearningStore_PathsAreValueCopies(t *testing.T) {
	client := &fakeClient{paths: []*learning.Path{mustPath("Go", 40)}}
	store := NewLearningStore("s1", "tok", client, nil)
	require.NoError(t, store.Refresh(context.Background()))

	before := store.Paths()
	require.NotNil(t, store.Advance(before[0].ID))

	// A previously returned read must not observe the later mutation.
	assert.Equal(t, 40, before[0].Progress)
	assert.Equal(t, 50, store.Paths()[0].Progress)
}
