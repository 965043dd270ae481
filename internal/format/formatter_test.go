package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"channelwatch/internal/analytics"
	"channelwatch/internal/domain/channel"
)

func TestMetricsUpdate_OnlySignificantLines(t *testing.T) {
	ch := &channel.Channel{
		Title: "SomeCreator",
		Current: channel.MetricSnapshot{
			Subscribers: 10_200,
			TotalViews:  1_000_000,
		},
	}
	verdict := analytics.Verdict{
		Subscribers: analytics.MetricChange{Kind: analytics.KindSubscribers, PercentChange: 2.0, Significant: true},
		Views:       analytics.MetricChange{Kind: analytics.KindViews, PercentChange: 0.01},
		Videos:      analytics.MetricChange{Kind: analytics.KindVideos},
		Any:         true,
	}

	text := MetricsUpdate(ch, verdict)

	assert.Contains(t, text, "SomeCreator")
	assert.Contains(t, text, "Subscribers: +2.0%")
	assert.NotContains(t, text, "Views: +0.0%")
	assert.Contains(t, text, "10,200")
}

func TestMetricsUpdate_NegativeChange(t *testing.T) {
	ch := &channel.Channel{Title: "x"}
	verdict := analytics.Verdict{
		Subscribers: analytics.MetricChange{Kind: analytics.KindSubscribers, PercentChange: -10.0, Significant: true},
		Any:         true,
	}

	assert.Contains(t, MetricsUpdate(ch, verdict), "Subscribers: -10.0%")
}

func TestNewVideo(t *testing.T) {
	ch := &channel.Channel{
		Title:   "SomeCreator",
		Current: channel.MetricSnapshot{Subscribers: 1_234_567},
	}
	video := channel.Video{ID: "v1", Title: "My Best Video Yet"}

	text := NewVideo(ch, video)

	assert.Contains(t, text, "SomeCreator")
	assert.Contains(t, text, "My Best Video Yet")
	assert.Contains(t, text, "1,234,567")
}

func TestNowTracking(t *testing.T) {
	text := NowTracking(channel.ChannelDetails{
		Title:       "Newcomer",
		Subscribers: 900,
		TotalViews:  50_000,
		VideoCount:  12,
	})

	assert.Contains(t, text, "Newcomer")
	assert.Contains(t, text, "900 subscribers")
	assert.Contains(t, text, "12 videos")
}

func TestTrendingLeaderboard_Order(t *testing.T) {
	text := TrendingLeaderboard([]LeaderboardEntry{
		{Title: "first", Subscribers: 100},
		{Title: "second", Subscribers: 200},
	})

	assert.Less(t, strings.Index(text, "first"), strings.Index(text, "second"))
	assert.Contains(t, text, "1. first")
	assert.Contains(t, text, "2. second")
}
