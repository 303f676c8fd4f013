package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeen(t *testing.T) (*Seen, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestSeenMarks(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSeen(t)

	seen, err := s.IsSeen(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkSeen(ctx, "abc123", time.Hour))

	seen, err = s.IsSeen(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, seen)

	// Seen and notified marks are independent keyspaces.
	notified, err := s.IsNotified(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, notified)
}

func TestSeenMarkExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestSeen(t)

	require.NoError(t, s.MarkSeen(ctx, "abc123", time.Minute))
	mr.FastForward(2 * time.Minute)

	seen, err := s.IsSeen(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestZeroDurationIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSeen(t)

	require.NoError(t, s.MarkNotified(ctx, "abc123", 0))
	notified, err := s.IsNotified(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, notified)
}
