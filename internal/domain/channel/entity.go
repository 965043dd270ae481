package channel

import (
	"time"
)

// HistoryLimit bounds the per-channel metric history. Oldest snapshots are
// evicted first once the limit is reached.
const HistoryLimit = 30

// Tier defines how frequently a tracked channel is re-checked.
// Tier 1 channels are checked on every metrics cycle, tier 2 every other
// hour, tier 3 once a day.
type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
)

// Valid checks if the tier is a known bucket
func (t Tier) Valid() bool {
	return t >= Tier1 && t <= Tier3
}

// TierFor derives the tier bucket from elapsed time since the channel last
// qualified as trending: tier 1 within a day, tier 2 within three days,
// tier 3 afterwards.
func TierFor(sincePromotion time.Duration) Tier {
	days := sincePromotion.Hours() / 24
	switch {
	case days < 1:
		return Tier1
	case days < 3:
		return Tier2
	default:
		return Tier3
	}
}

// MetricSnapshot is one observation of a channel's public counters
type MetricSnapshot struct {
	Subscribers int64     `db:"subscribers" json:"subscribers"`
	TotalViews  int64     `db:"total_views" json:"total_views"`
	VideoCount  int64     `db:"video_count" json:"video_count"`
	LastVideoID string    `db:"last_video_id" json:"last_video_id"`
	LastVideoAt time.Time `db:"last_video_at" json:"last_video_at"`
	CheckedAt   time.Time `db:"checked_at" json:"checked_at"`
}

// Channel is a tracked creator channel
type Channel struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`

	Tier     Tier `db:"tier" json:"tier"`
	IsActive bool `db:"is_active" json:"is_active"`

	// LastPromotedAt is the most recent time the channel qualified as
	// trending; tier assignment and retention are derived from it.
	LastPromotedAt time.Time `db:"last_promoted_at" json:"last_promoted_at"`

	// LastPostedAt rate-limits outbound metric notifications per channel
	LastPostedAt time.Time `db:"last_posted_at" json:"last_posted_at"`

	Current MetricSnapshot   `db:"-" json:"current"`
	History []MetricSnapshot `db:"-" json:"history"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PushHistory appends a snapshot to the bounded history, evicting the oldest
// entries beyond HistoryLimit. Order is append-only, never reshuffled.
func (c *Channel) PushHistory(snap MetricSnapshot) {
	c.History = append(c.History, snap)
	if n := len(c.History); n > HistoryLimit {
		c.History = c.History[n-HistoryLimit:]
	}
}

// DaysSincePromotion returns fractional days elapsed since the channel was
// last promoted as trending
func (c *Channel) DaysSincePromotion(now time.Time) float64 {
	return now.Sub(c.LastPromotedAt).Hours() / 24
}
