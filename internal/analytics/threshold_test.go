package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreshold_AlwaysPositive(t *testing.T) {
	th := DefaultThresholds()

	kinds := []MetricKind{KindSubscribers, KindViews, KindVideos, MetricKind("unknown")}
	magnitudes := []int64{0, 1, 500, 9_999, 10_000, 99_999, 500_000, 1_000_000, 50_000_000}

	for _, kind := range kinds {
		for _, mag := range magnitudes {
			got := th.Threshold(kind, mag)
			assert.Greater(t, got, 0.0, "kind=%s magnitude=%d", kind, mag)
			assert.Less(t, got, 1.0, "kind=%s magnitude=%d", kind, mag)
		}
	}
}

func TestThreshold_NonIncreasingAcrossBands(t *testing.T) {
	th := DefaultThresholds()

	// Sample one magnitude inside each subscriber band, ascending
	magnitudes := []int64{500, 50_000, 500_000, 5_000_000}

	prev := th.Threshold(KindSubscribers, magnitudes[0])
	for _, mag := range magnitudes[1:] {
		cur := th.Threshold(KindSubscribers, mag)
		assert.LessOrEqual(t, cur, prev, "threshold must not increase at magnitude %d", mag)
		prev = cur
	}
}

func TestThreshold_BandMultipliers(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name      string
		kind      MetricKind
		magnitude int64
		want      float64
	}{
		{"small subscribers x2", KindSubscribers, 5_000, 0.004},
		{"mid subscribers x1.5", KindSubscribers, 50_000, 0.003},
		{"large subscribers x1", KindSubscribers, 500_000, 0.002},
		{"very large subscribers x0.5", KindSubscribers, 5_000_000, 0.001},
		{"small views x2", KindViews, 50_000, 0.002},
		{"very large views x0.5", KindViews, 50_000_000, 0.0005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, th.Threshold(tt.kind, tt.magnitude), 1e-9)
		})
	}
}

func TestThreshold_UnknownKindFallback(t *testing.T) {
	th := DefaultThresholds()

	assert.InDelta(t, 0.01, th.Threshold(MetricKind("likes"), 123), 1e-9)
	assert.InDelta(t, 0.01, th.Threshold(MetricKind("likes"), 99_999_999), 1e-9)
}
