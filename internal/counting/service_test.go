package counting

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/driftwood-blog/backend/internal/apperrors"
	"github.com/driftwood-blog/backend/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	viewFP, err := fingerprint.NewGenerator([]byte("view-test-secret"))
	require.NoError(t, err)
	reactionFP, err := fingerprint.NewGenerator([]byte("reaction-test-secret"))
	require.NoError(t, err)

	return NewService(db, viewFP, reactionFP), db
}

func TestTrackViewIdempotentWithinDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.TrackView(ctx, "/blogs/1", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	assert.Equal(t, "/blogs/1", first.Path)
	assert.Equal(t, int64(1), first.Count)
	assert.True(t, first.IsNewUnique)

	// Repeats on the same day are no-ops past the dedup insert
	for i := 0; i < 5; i++ {
		repeat, err := svc.TrackView(ctx, "/blogs/1", "203.0.113.7", "Mozilla/5.0")
		require.NoError(t, err)
		assert.Equal(t, int64(1), repeat.Count)
		assert.False(t, repeat.IsNewUnique)
	}
}

func TestTrackViewDistinctVisitors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.TrackView(ctx, "/blogs/1", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Count)
	assert.True(t, first.IsNewUnique)

	second, err := svc.TrackView(ctx, "/blogs/1", "203.0.113.8", "Mozilla/5.0")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Count)
	assert.True(t, second.IsNewUnique)

	// Same IP, different browser is a different visitor
	third, err := svc.TrackView(ctx, "/blogs/1", "203.0.113.7", "curl/8.0")
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.Count)
	assert.True(t, third.IsNewUnique)
}

func TestTrackViewDayRollover(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	first, err := svc.TrackView(ctx, "/blogs/1", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	assert.True(t, first.IsNewUnique)

	// Same visitor, next UTC day: identity resets
	now = now.Add(24 * time.Hour)
	second, err := svc.TrackView(ctx, "/blogs/1", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	assert.True(t, second.IsNewUnique)
	assert.Equal(t, int64(2), second.Count)
}

func TestTrackViewConcurrentDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const n = 16
	var newUniques atomic.Int64
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.TrackView(ctx, "/blogs/race", "203.0.113.7", "Mozilla/5.0")
			if err != nil {
				errs <- err
				return
			}
			if result.IsNewUnique {
				newUniques.Add(1)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Exactly one racer wins regardless of arrival order
	assert.Equal(t, int64(1), newUniques.Load())

	count, err := svc.ViewCount(ctx, "/blogs/race")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTrackViewReadAfterWrite(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.TrackView(ctx, "/blogs/1", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	require.True(t, result.IsNewUnique)

	count, err := svc.ViewCount(ctx, "/blogs/1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, int64(1))
	assert.Equal(t, result.Count, count)
}

func TestTrackViewValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"no leading slash", "blogs/1"},
		{"too long", "/" + strings.Repeat("a", MaxPathLength)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.TrackView(ctx, tc.path, "203.0.113.7", "Mozilla/5.0")
			var apiErr *apperrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, apperrors.ErrBadRequest, apiErr.Code)
		})
	}
}

func TestReactIdempotentWithinDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.React(ctx, "/notes/3", "Lol", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	assert.Equal(t, "/notes/3", first.Path)
	assert.Equal(t, "Lol", first.Reaction)
	assert.Equal(t, int64(1), first.Count)
	assert.True(t, first.IsNewUnique)

	second, err := svc.React(ctx, "/notes/3", "Lol", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	assert.Equal(t, first.Count, second.Count)
	assert.False(t, second.IsNewUnique)
}

func TestReactIsolationBetweenReactions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.React(ctx, "/notes/3", "like", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	_, err = svc.React(ctx, "/notes/3", "like", "203.0.113.8", "Mozilla/5.0")
	require.NoError(t, err)

	wow, err := svc.React(ctx, "/notes/3", "wow", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	assert.Equal(t, int64(1), wow.Count)

	rows, err := svc.Reactions(ctx, "/notes/3")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ReactionCount{Reaction: "like", Count: 2}, rows[0])
	assert.Equal(t, ReactionCount{Reaction: "wow", Count: 1}, rows[1])
}

func TestReactValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.React(ctx, "/notes/3", "", "203.0.113.7", "Mozilla/5.0")
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)

	_, err = svc.React(ctx, "/notes/3", strings.Repeat("x", MaxReactionLength+1), "203.0.113.7", "Mozilla/5.0")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apperrors.ErrBadRequest, apiErr.Code)

	// Exactly at the limit is fine
	_, err = svc.React(ctx, "/notes/3", strings.Repeat("x", MaxReactionLength), "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
}

func TestViewCountsMatchesSequentialGets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.TrackView(ctx, "/p1", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)
	_, err = svc.TrackView(ctx, "/p1", "203.0.113.8", "Mozilla/5.0")
	require.NoError(t, err)
	_, err = svc.TrackView(ctx, "/p3", "203.0.113.7", "Mozilla/5.0")
	require.NoError(t, err)

	paths := []string{"/p1", "/p2", "/p3"}
	rows, err := svc.ViewCounts(ctx, paths)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, p := range paths {
		count, err := svc.ViewCount(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, p, rows[i].Path)
		assert.Equal(t, count, rows[i].Count)
	}
}

func TestViewCountsBatchLimit(t *testing.T) {
	svc, _ := newTestService(t)

	paths := make([]string, MaxBatchPaths+1)
	for i := range paths {
		paths[i] = "/p"
	}

	_, err := svc.ViewCounts(context.Background(), paths)
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apperrors.ErrBadRequest, apiErr.Code)
}

func TestCounterMatchesEventRows(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	visitors := []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"}
	for _, ip := range visitors {
		for i := 0; i < 3; i++ {
			_, err := svc.TrackView(ctx, "/blogs/1", ip, "Mozilla/5.0")
			require.NoError(t, err)
		}
	}

	// The counter must equal the number of event rows for the path
	var eventRows int64
	require.NoError(t, db.Table("unique_view_events").Where("path = ?", "/blogs/1").Count(&eventRows).Error)

	count, err := svc.ViewCount(ctx, "/blogs/1")
	require.NoError(t, err)
	assert.Equal(t, eventRows, count)
	assert.Equal(t, int64(len(visitors)), count)
}
