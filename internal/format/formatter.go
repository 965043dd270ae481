// Package format renders human-readable notification text. Pure string
// building: no I/O, no randomness.
package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"channelwatch/internal/analytics"
	"channelwatch/internal/domain/channel"
)

// LeaderboardEntry is one row of a trending leaderboard post
type LeaderboardEntry struct {
	Title       string
	Subscribers int64
	Score       float64
}

// NewVideo renders a new-upload notification
func NewVideo(ch *channel.Channel, video channel.Video) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎬 New upload from %s\n", ch.Title)
	fmt.Fprintf(&b, "“%s”\n", video.Title)
	fmt.Fprintf(&b, "Channel: %s subscribers", humanize.Comma(ch.Current.Subscribers))
	return b.String()
}

// MetricsUpdate renders a significant-change notification. Only metrics
// flagged significant get a change line; the current counters are always
// shown.
func MetricsUpdate(ch *channel.Channel, verdict analytics.Verdict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 %s is moving\n", ch.Title)

	for _, c := range verdict.Changes() {
		if !c.Significant {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", metricLabel(c.Kind), signedPercent(c.PercentChange))
	}

	fmt.Fprintf(&b, "Now at %s subscribers, %s total views",
		humanize.Comma(ch.Current.Subscribers),
		humanize.Comma(ch.Current.TotalViews),
	)
	return b.String()
}

// NowTracking renders the announcement for a newly tracked channel
func NowTracking(details channel.ChannelDetails) string {
	return fmt.Sprintf("👀 Now tracking %s\n%s subscribers, %s views across %s videos",
		details.Title,
		humanize.Comma(details.Subscribers),
		humanize.Comma(details.TotalViews),
		humanize.Comma(details.VideoCount),
	)
}

// TrendingLeaderboard renders the ranked discovery result
func TrendingLeaderboard(entries []LeaderboardEntry) string {
	var b strings.Builder
	b.WriteString("🔥 Trending channels right now\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s (%s subscribers)\n", i+1, e.Title, humanize.Comma(e.Subscribers))
	}
	return strings.TrimRight(b.String(), "\n")
}

func metricLabel(kind analytics.MetricKind) string {
	switch kind {
	case analytics.KindSubscribers:
		return "Subscribers"
	case analytics.KindViews:
		return "Views"
	case analytics.KindVideos:
		return "Videos"
	default:
		return string(kind)
	}
}

func signedPercent(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}
