package discovery

import (
	"sort"

	"channelwatch/internal/domain/channel"
)

// Weighting of the two engagement components: per-video efficiency and
// audience loyalty (views per subscriber)
const (
	perVideoWeight = 0.4
	loyaltyWeight  = 0.6
)

// sizeBand maps a subscriber magnitude range to a normalization factor.
// Raw view totals let mega channels dominate trending permanently; the
// factor boosts small channels and dampens the largest ones.
type sizeBand struct {
	upTo   int64 // exclusive; 0 means unbounded
	factor float64
}

var sizeBands = []sizeBand{
	{upTo: 1_000, factor: 2.0},
	{upTo: 10_000, factor: 1.6},
	{upTo: 100_000, factor: 1.3},
	{upTo: 1_000_000, factor: 1.0},
	{upTo: 10_000_000, factor: 0.8},
	{upTo: 0, factor: 0.6},
}

// Scored pairs a channel with its engagement score
type Scored struct {
	Details channel.ChannelDetails
	Score   float64
}

// EngagementScore computes the size-normalized composite ranking metric.
// Zero-division guards: a channel with no videos or no subscribers simply
// contributes nothing on that component.
func EngagementScore(d channel.ChannelDetails) float64 {
	var perVideo, loyalty float64
	if d.VideoCount > 0 {
		perVideo = float64(d.TotalViews) / float64(d.VideoCount)
	}
	if d.Subscribers > 0 {
		loyalty = float64(d.TotalViews) / float64(d.Subscribers)
	}

	raw := perVideo*perVideoWeight + loyalty*loyaltyWeight
	return raw * sizeFactor(d.Subscribers)
}

// Rank scores and sorts channels descending by engagement. The sort is
// stable: ties keep their original discovery order.
func Rank(details []channel.ChannelDetails) []Scored {
	scored := make([]Scored, 0, len(details))
	for _, d := range details {
		scored = append(scored, Scored{Details: d, Score: EngagementScore(d)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func sizeFactor(subscribers int64) float64 {
	for _, b := range sizeBands {
		if b.upTo == 0 || subscribers < b.upTo {
			return b.factor
		}
	}
	return 1.0
}
