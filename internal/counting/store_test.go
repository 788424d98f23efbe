package counting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordViewEventDedup(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	isNew, err := store.RecordViewEvent(ctx, "/blogs/1", "2024-06-01", "aaaa")
	require.NoError(t, err)
	assert.True(t, isNew)

	// Same dedup key: conflict is the normal not-new outcome
	isNew, err = store.RecordViewEvent(ctx, "/blogs/1", "2024-06-01", "aaaa")
	require.NoError(t, err)
	assert.False(t, isNew)

	// Different day or fingerprint is a fresh event
	isNew, err = store.RecordViewEvent(ctx, "/blogs/1", "2024-06-02", "aaaa")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.RecordViewEvent(ctx, "/blogs/1", "2024-06-01", "bbbb")
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestRecordReactionEventDedupIncludesReaction(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	isNew, err := store.RecordReactionEvent(ctx, "/notes/3", "like", "2024-06-01", "aaaa")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.RecordReactionEvent(ctx, "/notes/3", "like", "2024-06-01", "aaaa")
	require.NoError(t, err)
	assert.False(t, isNew)

	// Same visitor, different reaction: independent dedup key
	isNew, err = store.RecordReactionEvent(ctx, "/notes/3", "wow", "2024-06-01", "aaaa")
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestIncrementViewCountUpserts(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.IncrementViewCount(ctx, "/blogs/1"))
	count, err := store.ViewCount(ctx, "/blogs/1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.IncrementViewCount(ctx, "/blogs/1"))
	count, err = store.ViewCount(ctx, "/blogs/1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestViewCountDefaultsToZero(t *testing.T) {
	store := NewStore(newTestDB(t))

	count, err := store.ViewCount(context.Background(), "/never-seen")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestViewCountsPreservesOrderAndZeroFills(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.IncrementViewCount(ctx, "/a"))
	require.NoError(t, store.IncrementViewCount(ctx, "/c"))
	require.NoError(t, store.IncrementViewCount(ctx, "/c"))

	rows, err := store.ViewCounts(ctx, []string{"/c", "/b", "/a"})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, PathCount{Path: "/c", Count: 2}, rows[0])
	assert.Equal(t, PathCount{Path: "/b", Count: 0}, rows[1])
	assert.Equal(t, PathCount{Path: "/a", Count: 1}, rows[2])
}

func TestViewCountsEmptyInput(t *testing.T) {
	store := NewStore(newTestDB(t))

	rows, err := store.ViewCounts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReactionCountsSortedByName(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.IncrementReactionCount(ctx, "/notes/3", "wow"))
	require.NoError(t, store.IncrementReactionCount(ctx, "/notes/3", "like"))
	require.NoError(t, store.IncrementReactionCount(ctx, "/notes/3", "like"))
	require.NoError(t, store.IncrementReactionCount(ctx, "/other", "like"))

	rows, err := store.ReactionCounts(ctx, "/notes/3")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, ReactionCount{Reaction: "like", Count: 2}, rows[0])
	assert.Equal(t, ReactionCount{Reaction: "wow", Count: 1}, rows[1])
}
