package discovery

import (
	"context"
	"time"

	"channelwatch/internal/domain/channel"
	"channelwatch/internal/format"
	"channelwatch/internal/metrics"
	"channelwatch/pkg/errors"
	"channelwatch/pkg/logger"
)

// Config tunes the discovery pass
type Config struct {
	Region        string
	TrendingLimit int
	TopK          int
}

// Service finds currently trending channels and promotes the best-ranked
// ones into the tracked set
type Service struct {
	client    channel.MetricsClient
	repo      channel.Repository
	publisher channel.Publisher
	cfg       Config
	log       *logger.Logger
}

// NewService constructs a discovery service
func NewService(client channel.MetricsClient, repo channel.Repository, publisher channel.Publisher, cfg Config) *Service {
	if cfg.TrendingLimit == 0 {
		cfg.TrendingLimit = 50
	}
	if cfg.TopK == 0 {
		cfg.TopK = 5
	}
	return &Service{
		client:    client,
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		log:       logger.Get().With("component", "discovery"),
	}
}

// DiscoverFromLiveSource pulls the current trending videos, ranks their
// owning channels, and promotes the top K. Missing channel details are
// dropped, not fatal.
func (s *Service) DiscoverFromLiveSource(ctx context.Context) error {
	videos, err := s.client.FetchTrendingVideos(ctx, s.cfg.Region, s.cfg.TrendingLimit)
	if err != nil {
		return errors.Wrap(err, "fetch trending videos")
	}
	if len(videos) == 0 {
		s.log.Warn("Trending feed returned no videos")
		return nil
	}

	// Distinct owning channels, first-seen order preserved for the
	// stable-sort tie-break
	seen := make(map[string]struct{}, len(videos))
	var ids []string
	for _, v := range videos {
		if _, ok := seen[v.ChannelID]; ok {
			continue
		}
		seen[v.ChannelID] = struct{}{}
		ids = append(ids, v.ChannelID)
	}

	details := make([]channel.ChannelDetails, 0, len(ids))
	for _, id := range ids {
		d, err := s.client.FetchChannel(ctx, id)
		if err != nil || d == nil {
			s.log.Warnw("Skipping channel without details", "channel_id", id, "error", err)
			continue
		}
		details = append(details, *d)
	}

	return s.promote(ctx, RankGivenChannels(details))
}

// RankGivenChannels ranks an already-fetched channel list. Split from
// DiscoverFromLiveSource so callers with their own candidate set never go
// through the live trending feed.
func RankGivenChannels(details []channel.ChannelDetails) []Scored {
	return Rank(details)
}

// promote takes the top K ranked channels into the tracked set. New
// channels start at tier 1 with current metrics as baseline and get
// announced; already-tracked ones are re-promoted silently.
func (s *Service) promote(ctx context.Context, ranked []Scored) error {
	top := ranked
	if len(top) > s.cfg.TopK {
		top = top[:s.cfg.TopK]
	}

	now := time.Now()
	var leaderboard []format.LeaderboardEntry

	for _, sc := range top {
		leaderboard = append(leaderboard, format.LeaderboardEntry{
			Title:       sc.Details.Title,
			Subscribers: sc.Details.Subscribers,
			Score:       sc.Score,
		})

		existing, err := s.repo.GetByID(ctx, sc.Details.ID)
		switch {
		case err == nil && existing != nil:
			s.repromote(ctx, existing, now)
		case errors.Is(err, errors.ErrNotFound):
			s.track(ctx, sc.Details, now)
		default:
			s.log.Errorw("Store lookup failed during discovery", "channel_id", sc.Details.ID, "error", err)
		}
	}

	if len(leaderboard) > 0 {
		if ok := s.publisher.Post(ctx, format.TrendingLeaderboard(leaderboard), channel.ReasonTrending); !ok {
			s.log.Warn("Trending leaderboard post failed")
		}
	}

	s.log.Infow("Discovery pass complete", "candidates", len(ranked), "promoted", len(top))
	return nil
}

func (s *Service) track(ctx context.Context, d channel.ChannelDetails, now time.Time) {
	ch := &channel.Channel{
		ID:             d.ID,
		Title:          d.Title,
		Tier:           channel.Tier1,
		IsActive:       true,
		LastPromotedAt: now,
		Current: channel.MetricSnapshot{
			Subscribers: d.Subscribers,
			TotalViews:  d.TotalViews,
			VideoCount:  d.VideoCount,
			CheckedAt:   now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, ch); err != nil {
		s.log.Errorw("Failed to track discovered channel", "channel_id", d.ID, "error", err)
		return
	}

	metrics.ChannelsDiscovered.Inc()
	s.log.Infow("Now tracking channel", "channel_id", d.ID, "title", d.Title)

	if ok := s.publisher.Post(ctx, format.NowTracking(d), channel.ReasonNowTracking); !ok {
		s.log.Warnw("Now-tracking post failed", "channel_id", d.ID)
	}
}

// repromote refreshes the promotion timestamp and forces tier 1 without
// re-announcing
func (s *Service) repromote(ctx context.Context, ch *channel.Channel, now time.Time) {
	tier := channel.Tier1
	active := true
	if _, err := s.repo.UpdateFields(ctx, ch.ID, channel.FieldUpdate{
		Tier:           &tier,
		IsActive:       &active,
		LastPromotedAt: &now,
	}); err != nil {
		s.log.Errorw("Failed to re-promote channel", "channel_id", ch.ID, "error", err)
		return
	}

	s.log.Infow("Channel re-promoted to tier 1", "channel_id", ch.ID)
}
