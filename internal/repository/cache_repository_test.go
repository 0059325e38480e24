package repository

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheRepository(client, nil), server
}

type cachedStats struct {
	CourseID string  `json:"course_id"`
	Mean     float64 `json:"mean"`
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo, server := newCacheRepo(t)
	ctx := context.Background()

	var dest cachedStats
	assert.ErrorIs(t, repo.Get(ctx, "stats:math", &dest), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "stats:math", cachedStats{CourseID: "math", Mean: 14.2}, time.Minute))
	require.NoError(t, repo.Get(ctx, "stats:math", &dest))
	assert.Equal(t, "math", dest.CourseID)
	assert.Equal(t, 14.2, dest.Mean)

	server.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "stats:math", &dest), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDropsCorruptEntries(t *testing.T) {
	repo, server := newCacheRepo(t)
	require.NoError(t, server.Set("stats:bio", "{not json"))

	var dest cachedStats
	assert.ErrorIs(t, repo.Get(context.Background(), "stats:bio", &dest), appErrors.ErrCacheMiss)
	assert.False(t, server.Exists("stats:bio"))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, server := newCacheRepo(t)
	ctx := context.Background()
	for _, key := range []string{"stats:math:course", "stats:math:evaluation:quiz", "stats:bio:course"} {
		require.NoError(t, repo.Set(ctx, key, cachedStats{CourseID: key}, time.Minute))
	}

	require.NoError(t, repo.DeleteByPattern(ctx, "stats:math:*"))
	assert.False(t, server.Exists("stats:math:course"))
	assert.False(t, server.Exists("stats:math:evaluation:quiz"))
	assert.True(t, server.Exists("stats:bio:course"))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest cachedStats
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", dest, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryCounter(t *testing.T) {
	repo, server := newCacheRepo(t)
	ctx := context.Background()

	value, err := repo.Counter(ctx, "stats-gen:math")
	require.NoError(t, err)
	assert.Zero(t, value)

	value, err = repo.Incr(ctx, "stats-gen:math")
	require.NoError(t, err)
	assert.Equal(t, int64(1), value)
	_, err = repo.Incr(ctx, "stats-gen:math")
	require.NoError(t, err)

	value, err = repo.Counter(ctx, "stats-gen:math")
	require.NoError(t, err)
	assert.Equal(t, int64(2), value)

	require.NoError(t, server.Set("stats-gen:bio", "not-a-number"))
	_, err = repo.Counter(ctx, "stats-gen:bio")
	assert.Error(t, err)
}
