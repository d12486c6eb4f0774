package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pupbiscuit/skydash/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "skydash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	snap := &domain.Snapshot{
		Profile: domain.Profile{DID: "did:plc:me", Handle: "me.bsky.social"},
		Events: []domain.Event{{
			Timestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Type:      domain.EventPost,
			PostURI:   "at://p/1",
		}},
		FetchedAt: time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	loaded, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snap.Profile, loaded.Profile)
	require.Len(t, loaded.Events, 1)
	assert.True(t, loaded.FetchedAt.Equal(snap.FetchedAt))
}

func TestStoreKeepsOnlyLatestSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &domain.Snapshot{FetchedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	second := &domain.Snapshot{FetchedAt: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.SaveSnapshot(ctx, first))
	require.NoError(t, store.SaveSnapshot(ctx, second))

	loaded, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.FetchedAt.Equal(second.FetchedAt))
}

func TestStoreCursor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cursor, err := store.GetCursor(ctx, "jetstream")
	require.NoError(t, err)
	assert.EqualValues(t, 0, cursor)

	require.NoError(t, store.UpdateCursor(ctx, "jetstream", 42))
	require.NoError(t, store.UpdateCursor(ctx, "jetstream", 99))

	cursor, err = store.GetCursor(ctx, "jetstream")
	require.NoError(t, err)
	assert.EqualValues(t, 99, cursor)
}
