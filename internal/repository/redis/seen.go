package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"channelwatch/internal/domain/channel"
	"channelwatch/pkg/errors"
)

// Compile-time check
var _ channel.SeenStore = (*SeenStore)(nil)

// SeenStore implements channel.SeenStore on Redis so new-upload de-dup
// survives process restarts. Entries expire after the TTL; a video older
// than that will never pass the timestamp guard anyway.
type SeenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenStore creates a Redis-backed seen store
func NewSeenStore(client *redis.Client, ttl time.Duration) *SeenStore {
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SeenStore{
		client: client,
		ttl:    ttl,
	}
}

// MarkSeen records a video id; returns true if it was not seen before
func (s *SeenStore) MarkSeen(ctx context.Context, videoID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(videoID), "1", s.ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "mark video %s seen", videoID)
	}
	return ok, nil
}

func (s *SeenStore) key(videoID string) string {
	return "seen:video:" + videoID
}
