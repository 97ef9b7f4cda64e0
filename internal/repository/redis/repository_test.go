// Package redis_test provides tests for the Redis repository
package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/navikt/meetingsview/internal/config"
	"github.com/navikt/meetingsview/internal/models"
	"github.com/navikt/meetingsview/internal/repository/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Repository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{
		Enabled:   true,
		Host:      mr.Host(),
		Port:      mr.Port(),
		KeyPrefix: "test:",
		ViewTTL:   time.Hour,
	}

	repo, err := redis.NewRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo, mr
}

func TestRedisWithURI(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{
		Enabled:   true,
		URI:       fmt.Sprintf("redis://%s:%s", mr.Host(), mr.Port()),
		KeyPrefix: "test:",
		ViewTTL:   time.Hour,
	}

	repo, err := redis.NewRepository(cfg)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.CreateView(ctx, "uri-view"))

	state, err := repo.GetView(ctx, "uri-view")
	require.NoError(t, err)
	assert.Equal(t, "uri-view", state.ID)
}

func TestRedisConnectionFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err = redis.NewRepository(config.RedisConfig{Host: host, Port: port})
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestViewLifecycle(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	meetings := []models.Meeting{
		{ID: "1", Topic: "Sync", Date: "2024-01-01", Summary: "ok"},
		{ID: "2", Topic: "Budget", Date: "2024-01-02"},
	}

	t.Run("CreateView", func(t *testing.T) {
		require.NoError(t, repo.CreateView(ctx, "view1"))

		assert.True(t, mr.Exists("test:views:view1"))
		assert.Equal(t, time.Hour, mr.TTL("test:views:view1"))

		state, err := repo.GetView(ctx, "view1")
		require.NoError(t, err)
		assert.False(t, state.Populated)
		assert.NotNil(t, state.Meetings)
		assert.Empty(t, state.Meetings)
	})

	t.Run("SaveMeetings", func(t *testing.T) {
		require.NoError(t, repo.SaveMeetings(ctx, "view1", meetings))

		state, err := repo.GetView(ctx, "view1")
		require.NoError(t, err)
		assert.True(t, state.Populated)
		assert.Equal(t, meetings, state.Meetings)
	})

	t.Run("CountViews", func(t *testing.T) {
		require.NoError(t, repo.CreateView(ctx, "view2"))

		count, err := repo.CountViews(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("DeleteView", func(t *testing.T) {
		require.NoError(t, repo.DeleteView(ctx, "view1"))

		_, err := repo.GetView(ctx, "view1")
		assert.ErrorIs(t, err, models.ErrViewNotFound)
		assert.ErrorIs(t, repo.DeleteView(ctx, "view1"), models.ErrViewNotFound)
	})
}

func TestSaveMeetingsDoesNotRecreateView(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	err := repo.SaveMeetings(ctx, "never-mounted", []models.Meeting{{ID: "1"}})
	assert.ErrorIs(t, err, models.ErrViewNotFound)
	assert.False(t, mr.Exists("test:views:never-mounted"))
}

func TestViewsExpire(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateView(ctx, "abandoned"))
	mr.FastForward(2 * time.Hour)

	_, err := repo.GetView(ctx, "abandoned")
	assert.ErrorIs(t, err, models.ErrViewNotFound)
}
