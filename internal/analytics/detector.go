package analytics

import (
	"math"

	"channelwatch/internal/domain/channel"
)

// MetricChange is the per-metric part of a verdict. PercentChange is in
// percent units (2.0 means +2%).
type MetricChange struct {
	Kind          MetricKind
	PercentChange float64
	Significant   bool
}

// Verdict is the structured result of comparing two snapshots
type Verdict struct {
	Subscribers MetricChange
	Views       MetricChange
	Videos      MetricChange
	Any         bool
}

// Changes returns the per-metric results in a fixed order
func (v Verdict) Changes() []MetricChange {
	return []MetricChange{v.Subscribers, v.Views, v.Videos}
}

// Detector compares metric snapshots against adaptive thresholds. Pure:
// no I/O, no mutation of its inputs.
type Detector struct {
	thresholds Thresholds
}

// NewDetector creates a detector with the given threshold tuning
func NewDetector(thresholds Thresholds) *Detector {
	return &Detector{thresholds: thresholds}
}

// Detect compares an old and new snapshot metric by metric. A metric is
// significant when the magnitude-relative change exceeds its adaptive
// threshold. The aggregate Any is true if any metric is significant.
func (d *Detector) Detect(old, fresh channel.MetricSnapshot) Verdict {
	v := Verdict{
		Subscribers: d.compare(KindSubscribers, old.Subscribers, fresh.Subscribers),
		Views:       d.compare(KindViews, old.TotalViews, fresh.TotalViews),
		Videos:      d.compare(KindVideos, old.VideoCount, fresh.VideoCount),
	}
	v.Any = v.Subscribers.Significant || v.Views.Significant || v.Videos.Significant
	return v
}

// compare computes the relative change of one counter. A previously-zero
// counter yields zero change, except the explicit zero-to-positive rule:
// going from 0 to any positive value is treated as maximally significant
// (reported as +100%).
func (d *Detector) compare(kind MetricKind, old, fresh int64) MetricChange {
	change := MetricChange{Kind: kind}

	if old == 0 {
		if fresh > 0 {
			change.PercentChange = 100
			change.Significant = true
		}
		return change
	}

	fraction := float64(fresh-old) / float64(old)
	change.PercentChange = fraction * 100
	change.Significant = math.Abs(fraction) > d.thresholds.Threshold(kind, fresh)
	return change
}
