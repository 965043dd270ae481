package memory

import (
	"context"
	"sync"

	"channelwatch/internal/domain/channel"
)

// Compile-time check
var _ channel.SeenStore = (*SeenStore)(nil)

// SeenStore de-duplicates new-upload notifications for the lifetime of the
// process. After a restart earlier ids are forgotten; hosts that need
// restart-safe de-dup use the Redis-backed store instead.
type SeenStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSeenStore creates an empty in-memory seen store
func NewSeenStore() *SeenStore {
	return &SeenStore{seen: make(map[string]struct{})}
}

// MarkSeen records a video id; returns true if it was not seen before
func (s *SeenStore) MarkSeen(ctx context.Context, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[videoID]; ok {
		return false, nil
	}
	s.seen[videoID] = struct{}{}
	return true, nil
}
