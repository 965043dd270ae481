package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelwatch/internal/domain/channel"
	"channelwatch/pkg/errors"
)

func newChannel(id string) *channel.Channel {
	now := time.Now()
	return &channel.Channel{
		ID:             id,
		Title:          "title-" + id,
		Tier:           channel.Tier1,
		IsActive:       true,
		LastPromotedAt: now,
		Current:        channel.MetricSnapshot{Subscribers: 1, CheckedAt: now},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestChannelRepository_CreateAndGet(t *testing.T) {
	repo := NewChannelRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newChannel("a")))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	err = repo.Create(ctx, newChannel("a"))
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestChannelRepository_GetActiveExcludesDeactivated(t *testing.T) {
	repo := NewChannelRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newChannel("a")))
	require.NoError(t, repo.Create(ctx, newChannel("b")))

	inactive := false
	_, err := repo.UpdateFields(ctx, "b", channel.FieldUpdate{IsActive: &inactive})
	require.NoError(t, err)

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)

	// Deactivated channels are retained, not deleted
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestChannelRepository_UpdateSnapshotPushesHistory(t *testing.T) {
	repo := NewChannelRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newChannel("a")))

	updated, err := repo.UpdateSnapshot(ctx, "a", channel.MetricSnapshot{Subscribers: 2})
	require.NoError(t, err)

	assert.EqualValues(t, 2, updated.Current.Subscribers)
	require.Len(t, updated.History, 1)
	assert.EqualValues(t, 1, updated.History[0].Subscribers)
}

func TestChannelRepository_HistoryBounded(t *testing.T) {
	repo := NewChannelRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newChannel("a")))

	var last *channel.Channel
	for i := 1; i <= 1000; i++ {
		var err error
		last, err = repo.UpdateSnapshot(ctx, "a", channel.MetricSnapshot{Subscribers: int64(i)})
		require.NoError(t, err)
	}

	require.Len(t, last.History, channel.HistoryLimit)

	// The 30 most recent previous snapshots survive, in FIFO order.
	// After 1000 updates the history holds snapshots 970..999.
	assert.EqualValues(t, 970, last.History[0].Subscribers)
	assert.EqualValues(t, 999, last.History[channel.HistoryLimit-1].Subscribers)
	assert.EqualValues(t, 1000, last.Current.Subscribers)
}

func TestChannelRepository_CallersDoNotShareState(t *testing.T) {
	repo := NewChannelRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newChannel("a")))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "title-a", again.Title)
}
