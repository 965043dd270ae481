package channel

import (
	"context"
	"time"
)

// ChannelDetails is the external source's view of a channel
type ChannelDetails struct {
	ID          string
	Title       string
	Subscribers int64
	TotalViews  int64
	VideoCount  int64
}

// Video is a single uploaded item on the external source
type Video struct {
	ID           string
	ChannelID    string
	ChannelTitle string
	Title        string
	PublishedAt  time.Time
	Views        int64
}

// MetricsClient is the external metrics source. Implementations retry across
// a pool of API keys internally and return nil/empty once every key is
// exhausted rather than an error.
type MetricsClient interface {
	FetchChannel(ctx context.Context, id string) (*ChannelDetails, error)
	FetchRecentVideos(ctx context.Context, channelID string, limit int) ([]Video, error)
	FetchTrendingVideos(ctx context.Context, region string, limit int) ([]Video, error)
	FetchAggregateLikes(ctx context.Context, channelID string) (int64, error)
}

// PostReason tags an outbound notification with the event that produced it
type PostReason string

const (
	ReasonNewVideo      PostReason = "new_video"
	ReasonMetricsUpdate PostReason = "metrics_update"
	ReasonTrending      PostReason = "trending"
	ReasonNowTracking   PostReason = "now_tracking"
)

// Publisher emits human-readable notifications. Implementations must not
// return an error on transient failure; they report false instead.
type Publisher interface {
	Post(ctx context.Context, text string, reason PostReason) bool
}

// SeenStore de-duplicates "new video" notifications across checks. The
// in-memory implementation resets on restart; the Redis-backed one survives
// it.
type SeenStore interface {
	// MarkSeen records a video id; returns true if it was not seen before
	MarkSeen(ctx context.Context, videoID string) (bool, error)
}

// Notification is one delivered (or attempted) outbound post
type Notification struct {
	ID       string     `db:"id"`
	Reason   PostReason `db:"reason"`
	Text     string     `db:"text"`
	Success  bool       `db:"success"`
	PostedAt time.Time  `db:"posted_at"`
}

// NotificationLog is an audit trail of outbound posts. Appends are
// best-effort; a failed append never blocks delivery.
type NotificationLog interface {
	Append(ctx context.Context, n Notification) error
}
