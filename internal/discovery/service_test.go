package discovery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelwatch/internal/domain/channel"
	"channelwatch/internal/repository/memory"
)

type stubClient struct {
	trending []channel.Video
	channels map[string]channel.ChannelDetails
}

func (c *stubClient) FetchChannel(ctx context.Context, id string) (*channel.ChannelDetails, error) {
	d, ok := c.channels[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (c *stubClient) FetchRecentVideos(ctx context.Context, channelID string, limit int) ([]channel.Video, error) {
	return nil, nil
}

func (c *stubClient) FetchTrendingVideos(ctx context.Context, region string, limit int) ([]channel.Video, error) {
	return c.trending, nil
}

func (c *stubClient) FetchAggregateLikes(ctx context.Context, channelID string) (int64, error) {
	return 0, nil
}

type recordingPublisher struct {
	mu    sync.Mutex
	posts []channel.PostReason
}

func (p *recordingPublisher) Post(ctx context.Context, text string, reason channel.PostReason) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, reason)
	return true
}

func (p *recordingPublisher) byReason(reason channel.PostReason) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range p.posts {
		if r == reason {
			n++
		}
	}
	return n
}

func TestDiscoverFromLiveSource_TracksTopChannels(t *testing.T) {
	repo := memory.NewChannelRepository()
	pub := &recordingPublisher{}
	client := &stubClient{
		trending: []channel.Video{
			{ID: "v1", ChannelID: "strong"},
			{ID: "v2", ChannelID: "weak"},
			{ID: "v3", ChannelID: "strong"}, // duplicate owner collapses
			{ID: "v4", ChannelID: "gone"},   // details missing, dropped
		},
		channels: map[string]channel.ChannelDetails{
			"strong": {ID: "strong", Title: "Strong", Subscribers: 5_000, TotalViews: 2_000_000, VideoCount: 50},
			"weak":   {ID: "weak", Title: "Weak", Subscribers: 5_000, TotalViews: 10_000, VideoCount: 50},
		},
	}

	svc := NewService(client, repo, pub, Config{Region: "US", TrendingLimit: 10, TopK: 1})

	require.NoError(t, svc.DiscoverFromLiveSource(context.Background()))

	// Only the top-1 channel gets tracked
	got, err := repo.GetByID(context.Background(), "strong")
	require.NoError(t, err)
	assert.Equal(t, channel.Tier1, got.Tier)
	assert.True(t, got.IsActive)
	assert.EqualValues(t, 5_000, got.Current.Subscribers)

	_, err = repo.GetByID(context.Background(), "weak")
	assert.Error(t, err)

	assert.Equal(t, 1, pub.byReason(channel.ReasonNowTracking))
	assert.Equal(t, 1, pub.byReason(channel.ReasonTrending))
}

func TestDiscoverFromLiveSource_RepromotesWithoutAnnouncing(t *testing.T) {
	repo := memory.NewChannelRepository()
	pub := &recordingPublisher{}

	// Already tracked at tier 3 with an old promotion timestamp
	old := time.Now().Add(-5 * 24 * time.Hour)
	require.NoError(t, repo.Create(context.Background(), &channel.Channel{
		ID:             "known",
		Title:          "Known",
		Tier:           channel.Tier3,
		IsActive:       true,
		LastPromotedAt: old,
	}))

	client := &stubClient{
		trending: []channel.Video{{ID: "v1", ChannelID: "known"}},
		channels: map[string]channel.ChannelDetails{
			"known": {ID: "known", Title: "Known", Subscribers: 1_000, TotalViews: 100_000, VideoCount: 10},
		},
	}

	svc := NewService(client, repo, pub, Config{TopK: 5})
	require.NoError(t, svc.DiscoverFromLiveSource(context.Background()))

	got, err := repo.GetByID(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, channel.Tier1, got.Tier)
	assert.True(t, got.LastPromotedAt.After(old))

	// Re-promotion is silent; only the leaderboard is posted
	assert.Equal(t, 0, pub.byReason(channel.ReasonNowTracking))
	assert.Equal(t, 1, pub.byReason(channel.ReasonTrending))
}

func TestDiscoverFromLiveSource_EmptyFeed(t *testing.T) {
	repo := memory.NewChannelRepository()
	pub := &recordingPublisher{}
	svc := NewService(&stubClient{}, repo, pub, Config{})

	require.NoError(t, svc.DiscoverFromLiveSource(context.Background()))
	assert.Empty(t, pub.posts)
}
