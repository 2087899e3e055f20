package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ScoreCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return New(rdb, ttl), mr
}

func TestScoreCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	want := domain.ScoreResult{
		OverallScore: 73,
		ProjectEvaluations: []domain.ProjectEvaluation{
			{Title: "Weather App", IsValid: true, Score: 70, RawAIScore: 70},
		},
		Breakdown: domain.ScoreBreakdown{Portfolio: 27, Skills: 12, Achievements: 5, Activity: 4},
		Summary:   "cached",
	}
	require.NoError(t, cache.Set(ctx, "u-1", want))

	got, err := cache.Get(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestScoreCache_MissIsNotFound(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	_, err := cache.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScoreCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "u-1", domain.ScoreResult{OverallScore: 10}))
	mr.FastForward(2 * time.Second)

	_, err := cache.Get(ctx, "u-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
