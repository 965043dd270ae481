package analytics

// MetricKind names a tracked counter
type MetricKind string

const (
	KindSubscribers MetricKind = "subscribers"
	KindViews       MetricKind = "views"
	KindVideos      MetricKind = "videos"
)

// band is a magnitude bucket with a sensitivity multiplier. Channels span
// four orders of magnitude, so a flat percentage threshold either floods
// small channels with noise or never fires on huge ones; the multiplier
// makes small channels more sensitive and very large ones less.
type band struct {
	upTo       int64 // exclusive upper edge; 0 means unbounded
	multiplier float64
}

// kindProfile holds the base significance fraction and magnitude bands for
// one metric kind
type kindProfile struct {
	base  float64
	bands []band
}

// Thresholds maps (metric kind, magnitude) to a significance threshold.
// Zero value is unusable; construct with DefaultThresholds.
type Thresholds struct {
	profiles map[MetricKind]kindProfile
	fallback float64
}

// DefaultThresholds returns the standard tuning: subscriber bands sit one
// order of magnitude below view bands, and every kind gets x2 sensitivity
// at the small end down to x0.5 at the very large end.
func DefaultThresholds() Thresholds {
	return Thresholds{
		fallback: 0.01,
		profiles: map[MetricKind]kindProfile{
			KindSubscribers: {
				base: 0.002,
				bands: []band{
					{upTo: 10_000, multiplier: 2.0},
					{upTo: 100_000, multiplier: 1.5},
					{upTo: 1_000_000, multiplier: 1.0},
					{upTo: 0, multiplier: 0.5},
				},
			},
			KindViews: {
				base: 0.001,
				bands: []band{
					{upTo: 100_000, multiplier: 2.0},
					{upTo: 1_000_000, multiplier: 1.5},
					{upTo: 10_000_000, multiplier: 1.0},
					{upTo: 0, multiplier: 0.5},
				},
			},
			KindVideos: {
				base: 0.002,
				bands: []band{
					{upTo: 100, multiplier: 2.0},
					{upTo: 1_000, multiplier: 1.5},
					{upTo: 10_000, multiplier: 1.0},
					{upTo: 0, multiplier: 0.5},
				},
			},
		},
	}
}

// Threshold returns the significance fraction for a metric at the given
// magnitude. Always in (0, 1); unknown kinds fall back to a flat 1%.
func (t Thresholds) Threshold(kind MetricKind, magnitude int64) float64 {
	profile, ok := t.profiles[kind]
	if !ok {
		return t.fallback
	}

	for _, b := range profile.bands {
		if b.upTo == 0 || magnitude < b.upTo {
			return profile.base * b.multiplier
		}
	}
	return profile.base
}
