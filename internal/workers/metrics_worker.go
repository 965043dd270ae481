package workers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"channelwatch/internal/analytics"
	"channelwatch/internal/domain/channel"
	"channelwatch/internal/format"
	"channelwatch/internal/metrics"
	"channelwatch/pkg/errors"
)

// MetricsWorkerConfig tunes the per-cycle check policy. The exact constants
// are heuristics; the tier frequency ratios (every cycle / 2h / 24h) and the
// post-gap ratios are the contract.
type MetricsWorkerConfig struct {
	// InterChannelDelay spaces out consecutive channel checks to respect
	// source API rate limits
	InterChannelDelay time.Duration

	// RetentionDays deactivates channels not promoted for this many days
	RetentionDays int

	// Minimum wall-clock gap between metric posts per tier
	MinPostGapTier1 time.Duration
	MinPostGapTier2 time.Duration
	MinPostGapTier3 time.Duration

	// Post-gap scaling band edges on subscriber count
	SmallChannelBelow int64 // gap x1.25 under this
	VeryLargeAbove    int64 // gap x0.75 at or above this
}

// DefaultMetricsWorkerConfig returns the standard tuning
func DefaultMetricsWorkerConfig() MetricsWorkerConfig {
	return MetricsWorkerConfig{
		InterChannelDelay: time.Second,
		RetentionDays:     7,
		MinPostGapTier1:   4 * time.Hour,
		MinPostGapTier2:   6 * time.Hour,
		MinPostGapTier3:   12 * time.Hour,
		SmallChannelBelow: 10_000,
		VeryLargeAbove:    1_000_000,
	}
}

// MetricsWorker drives the periodic re-check of all tracked channels.
// Tier 1 channels are checked on every firing, tier 2 only on even
// wall-clock hours, tier 3 only at hour 0, preserving the 1:2h:24h
// frequency ratio at the default 20-minute interval.
type MetricsWorker struct {
	*BaseWorker

	repo      channel.Repository
	client    channel.MetricsClient
	publisher channel.Publisher
	detector  *analytics.Detector
	seen      channel.SeenStore
	cfg       MetricsWorkerConfig

	// now is swapped in tests to pin the wall-clock hour
	now func() time.Time
}

// NewMetricsWorker creates the metrics loop worker
func NewMetricsWorker(
	repo channel.Repository,
	client channel.MetricsClient,
	publisher channel.Publisher,
	detector *analytics.Detector,
	seen channel.SeenStore,
	interval time.Duration,
	cfg MetricsWorkerConfig,
) *MetricsWorker {
	return &MetricsWorker{
		BaseWorker: NewBaseWorker("metrics", interval, true),
		repo:       repo,
		client:     client,
		publisher:  publisher,
		detector:   detector,
		seen:       seen,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Run executes one metrics cycle: check all due channels, then run the
// re-tiering sweep. A store failure loading the batch aborts this iteration
// only; the next tick retries.
func (w *MetricsWorker) Run(ctx context.Context) error {
	start := w.now()

	active, err := w.repo.GetActive(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrStoreUnavailable, err.Error())
	}

	due := w.dueChannels(active, start)
	w.Log().Infow("Metrics cycle started",
		"active", len(active),
		"due", len(due),
		"hour", start.Hour(),
	)

	var failed int
	for i, ch := range due {
		if err := w.checkChannel(ctx, ch); err != nil {
			failed++
			w.Log().Errorw("Channel check failed",
				"channel_id", ch.ID,
				"error", err,
			)
		}

		// Backpressure valve between channels in the same batch
		if i < len(due)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.cfg.InterChannelDelay):
			}
		}
	}

	if err := w.retierSweep(ctx); err != nil {
		w.Log().Errorw("Re-tiering sweep failed", "error", err)
	}

	w.Log().Infow("Metrics cycle complete",
		"checked", len(due),
		"failed", failed,
		"duration", time.Since(start),
	)
	return nil
}

// dueChannels partitions active channels by tier and keeps the ones due at
// the current wall-clock hour
func (w *MetricsWorker) dueChannels(active []*channel.Channel, now time.Time) []*channel.Channel {
	hour := now.Hour()

	var due []*channel.Channel
	for _, ch := range active {
		switch ch.Tier {
		case channel.Tier1:
			due = append(due, ch)
		case channel.Tier2:
			if hour%2 == 0 {
				due = append(due, ch)
			}
		case channel.Tier3:
			if hour == 0 {
				due = append(due, ch)
			}
		}
	}
	return due
}

// checkChannel runs the full per-channel procedure. Any panic or error is
// contained here and never aborts the batch.
func (w *MetricsWorker) checkChannel(ctx context.Context, ch *channel.Channel) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("channel check panicked: %v", r)
		}
	}()

	tierLabel := strconv.Itoa(int(ch.Tier))

	// 1. Fetch fresh metrics; on failure skip the channel, keeping old
	// data and an unchanged check timestamp
	details, err := w.client.FetchChannel(ctx, ch.ID)
	if err != nil || details == nil {
		metrics.RecordChannelCheck(tierLabel, "fetch_failed")
		if err == nil {
			err = errors.Wrapf(errors.ErrFetchFailed, "channel %s", ch.ID)
		}
		return err
	}

	fresh := channel.MetricSnapshot{
		Subscribers: details.Subscribers,
		TotalViews:  details.TotalViews,
		VideoCount:  details.VideoCount,
		// Video pointers advance only through the new-upload path
		LastVideoID: ch.Current.LastVideoID,
		LastVideoAt: ch.Current.LastVideoAt,
		CheckedAt:   w.now(),
	}

	// 2. Compare stored vs fresh
	verdict := w.detector.Detect(ch.Current, fresh)

	// 3. Persist unconditionally; this is what keeps history populated
	updated, err := w.repo.UpdateSnapshot(ctx, ch.ID, fresh)
	if err != nil {
		metrics.RecordChannelCheck(tierLabel, "store_failed")
		return errors.Wrapf(err, "persist snapshot for %s", ch.ID)
	}

	// 4. Post if significant and the per-channel gap has elapsed
	if verdict.Any {
		w.recordSignificant(verdict)
		if w.postGapElapsed(ch) {
			w.postMetricsUpdate(ctx, updated, verdict)
		} else {
			w.Log().Debugw("Significant change within post gap, suppressed",
				"channel_id", ch.ID,
			)
		}
	}

	// 5. Independent new-upload check
	w.checkNewUpload(ctx, updated)

	metrics.RecordChannelCheck(tierLabel, "success")
	return nil
}

func (w *MetricsWorker) recordSignificant(verdict analytics.Verdict) {
	for _, c := range verdict.Changes() {
		if c.Significant {
			metrics.SignificantChanges.WithLabelValues(string(c.Kind)).Inc()
		}
	}
}

// postGapElapsed applies the tiered minimum gap between metric posts,
// stretched x1.25 for small channels and shrunk x0.75 for very large ones
func (w *MetricsWorker) postGapElapsed(ch *channel.Channel) bool {
	var gap time.Duration
	switch ch.Tier {
	case channel.Tier1:
		gap = w.cfg.MinPostGapTier1
	case channel.Tier2:
		gap = w.cfg.MinPostGapTier2
	default:
		gap = w.cfg.MinPostGapTier3
	}

	switch {
	case ch.Current.Subscribers < w.cfg.SmallChannelBelow:
		gap = time.Duration(float64(gap) * 1.25)
	case ch.Current.Subscribers >= w.cfg.VeryLargeAbove:
		gap = time.Duration(float64(gap) * 0.75)
	}

	return w.now().Sub(ch.LastPostedAt) >= gap
}

func (w *MetricsWorker) postMetricsUpdate(ctx context.Context, ch *channel.Channel, verdict analytics.Verdict) {
	ok := w.publisher.Post(ctx, format.MetricsUpdate(ch, verdict), channel.ReasonMetricsUpdate)
	if !ok {
		w.Log().Warnw("Metrics update post failed", "channel_id", ch.ID)
		return
	}

	now := w.now()
	if _, err := w.repo.UpdateFields(ctx, ch.ID, channel.FieldUpdate{LastPostedAt: &now}); err != nil {
		w.Log().Errorw("Failed to record post time", "channel_id", ch.ID, "error", err)
	}
}

// checkNewUpload fires a new-upload notification at most once per distinct
// video id. The video pointer only advances forward: the candidate must
// differ from the stored id and be published after the stored timestamp.
func (w *MetricsWorker) checkNewUpload(ctx context.Context, ch *channel.Channel) {
	videos, err := w.client.FetchRecentVideos(ctx, ch.ID, 1)
	if err != nil || len(videos) == 0 {
		return
	}
	latest := videos[0]

	// First observation of a channel seeds the pointer silently; a
	// channel's existing back catalog is not news
	if ch.Current.LastVideoID == "" {
		w.advanceVideoPointer(ctx, ch.ID, latest)
		return
	}

	if latest.ID == ch.Current.LastVideoID || !latest.PublishedAt.After(ch.Current.LastVideoAt) {
		return
	}

	firstSeen, err := w.seen.MarkSeen(ctx, latest.ID)
	if err != nil {
		w.Log().Warnw("Seen-store check failed", "video_id", latest.ID, "error", err)
		return
	}
	if firstSeen {
		w.publisher.Post(ctx, format.NewVideo(ch, latest), channel.ReasonNewVideo)
	}

	w.advanceVideoPointer(ctx, ch.ID, latest)
}

func (w *MetricsWorker) advanceVideoPointer(ctx context.Context, channelID string, latest channel.Video) {
	if _, err := w.repo.UpdateFields(ctx, channelID, channel.FieldUpdate{
		LastVideoID: &latest.ID,
		LastVideoAt: &latest.PublishedAt,
	}); err != nil {
		w.Log().Errorw("Failed to advance video pointer", "channel_id", channelID, "error", err)
	}
}

// retierSweep runs after a full pass: recompute every active channel's tier
// from promotion recency and deactivate those past the retention window.
// Deactivated channels are kept for audit, never deleted.
func (w *MetricsWorker) retierSweep(ctx context.Context) error {
	active, err := w.repo.GetActive(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrStoreUnavailable, err.Error())
	}

	now := w.now()
	perTier := map[channel.Tier]int{}

	for _, ch := range active {
		days := ch.DaysSincePromotion(now)

		if days > float64(w.cfg.RetentionDays) {
			inactive := false
			if _, err := w.repo.UpdateFields(ctx, ch.ID, channel.FieldUpdate{IsActive: &inactive}); err != nil {
				w.Log().Errorw("Failed to deactivate channel", "channel_id", ch.ID, "error", err)
				continue
			}
			w.Log().Infow("Channel deactivated after retention window",
				"channel_id", ch.ID,
				"days_since_promotion", fmt.Sprintf("%.1f", days),
			)
			continue
		}

		tier := channel.TierFor(now.Sub(ch.LastPromotedAt))
		perTier[tier]++
		if tier == ch.Tier {
			continue
		}
		if _, err := w.repo.UpdateFields(ctx, ch.ID, channel.FieldUpdate{Tier: &tier}); err != nil {
			w.Log().Errorw("Failed to re-tier channel", "channel_id", ch.ID, "error", err)
			continue
		}
		w.Log().Infow("Channel re-tiered",
			"channel_id", ch.ID,
			"from", int(ch.Tier),
			"to", int(tier),
		)
	}

	for tier, count := range perTier {
		metrics.ActiveChannels.WithLabelValues(strconv.Itoa(int(tier))).Set(float64(count))
	}
	return nil
}
