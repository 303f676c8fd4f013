package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Seen is a redis-backed fast path for cross-scan deduplication. The
// store's unique index on the source id remains the source of truth;
// this cache only saves re-scoring and re-checking posts the scanner
// already handled. Marks expire so the keyspace stays bounded.
type Seen struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Seen {
	return &Seen{rdb: rdb}
}

func seenKey(sourceID string) string {
	return fmt.Sprintf("scout:seen:%s", sourceID)
}

func notifiedKey(sourceID string) string {
	return fmt.Sprintf("scout:notified:%s", sourceID)
}

// IsSeen returns true if the post was handled by a recent scan.
func (s *Seen) IsSeen(ctx context.Context, sourceID string) (bool, error) {
	_, err := s.rdb.Get(ctx, seenKey(sourceID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkSeen records the post for the given duration.
func (s *Seen) MarkSeen(ctx context.Context, sourceID string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, seenKey(sourceID), "1", d).Err()
}

// IsNotified returns true if a notification was already sent for the
// post.
func (s *Seen) IsNotified(ctx context.Context, sourceID string) (bool, error) {
	_, err := s.rdb.Get(ctx, notifiedKey(sourceID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkNotified records that a notification went out for the post.
func (s *Seen) MarkNotified(ctx context.Context, sourceID string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, notifiedKey(sourceID), "1", d).Err()
}
