// Package memory provides an in-memory channel.Repository used by tests
// and by hosts running without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"channelwatch/internal/domain/channel"
	"channelwatch/pkg/errors"
)

// Compile-time check
var _ channel.Repository = (*ChannelRepository)(nil)

// ChannelRepository keeps tracked channels in a map guarded by a mutex
type ChannelRepository struct {
	mu       sync.RWMutex
	channels map[string]*channel.Channel
}

// NewChannelRepository creates an empty in-memory repository
func NewChannelRepository() *ChannelRepository {
	return &ChannelRepository{
		channels: make(map[string]*channel.Channel),
	}
}

// GetActive returns all channels eligible for scheduling
func (r *ChannelRepository) GetActive(ctx context.Context) ([]*channel.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*channel.Channel
	for _, ch := range r.channels {
		if ch.IsActive {
			out = append(out, clone(ch))
		}
	}
	return out, nil
}

// GetByID returns a channel or ErrNotFound
func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*channel.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "channel %s", id)
	}
	return clone(ch), nil
}

// Create inserts a new tracked channel
func (r *ChannelRepository) Create(ctx context.Context, ch *channel.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[ch.ID]; ok {
		return errors.Wrapf(errors.ErrAlreadyExists, "channel %s", ch.ID)
	}
	r.channels[ch.ID] = clone(ch)
	return nil
}

// UpdateSnapshot replaces the current snapshot, pushing the previous one
// into the bounded history
func (r *ChannelRepository) UpdateSnapshot(ctx context.Context, id string, snap channel.MetricSnapshot) (*channel.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "channel %s", id)
	}

	ch.PushHistory(ch.Current)
	ch.Current = snap
	ch.UpdatedAt = time.Now()
	return clone(ch), nil
}

// UpdateFields applies a partial update
func (r *ChannelRepository) UpdateFields(ctx context.Context, id string, fields channel.FieldUpdate) (*channel.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "channel %s", id)
	}

	if fields.Title != nil {
		ch.Title = *fields.Title
	}
	if fields.Tier != nil {
		ch.Tier = *fields.Tier
	}
	if fields.IsActive != nil {
		ch.IsActive = *fields.IsActive
	}
	if fields.LastPromotedAt != nil {
		ch.LastPromotedAt = *fields.LastPromotedAt
	}
	if fields.LastPostedAt != nil {
		ch.LastPostedAt = *fields.LastPostedAt
	}
	if fields.LastVideoID != nil {
		ch.Current.LastVideoID = *fields.LastVideoID
	}
	if fields.LastVideoAt != nil {
		ch.Current.LastVideoAt = *fields.LastVideoAt
	}
	ch.UpdatedAt = time.Now()
	return clone(ch), nil
}

// Count returns the number of tracked channels, active or not
func (r *ChannelRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels), nil
}

// clone copies a channel so callers never share history slices with the map
func clone(ch *channel.Channel) *channel.Channel {
	cp := *ch
	cp.History = append([]channel.MetricSnapshot(nil), ch.History...)
	return &cp
}
