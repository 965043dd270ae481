package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"channelwatch/internal/domain/channel"
)

func snapshot(subs, views, videos int64) channel.MetricSnapshot {
	return channel.MetricSnapshot{
		Subscribers: subs,
		TotalViews:  views,
		VideoCount:  videos,
		CheckedAt:   time.Now(),
	}
}

func TestDetect_IdenticalSnapshots(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	tests := []struct {
		name string
		snap channel.MetricSnapshot
	}{
		{"typical channel", snapshot(10_000, 1_000_000, 150)},
		{"all zeros", snapshot(0, 0, 0)},
		{"mega channel", snapshot(50_000_000, 9_000_000_000, 4_000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := d.Detect(tt.snap, tt.snap)
			assert.False(t, v.Any)
			for _, c := range v.Changes() {
				assert.False(t, c.Significant, "kind %s", c.Kind)
				assert.Zero(t, c.PercentChange, "kind %s", c.Kind)
			}
		})
	}
}

func TestDetect_LargeSubscriberJump(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	// 30% jump, far above the sub-1% threshold at this magnitude
	v := d.Detect(snapshot(1_000, 0, 0), snapshot(1_300, 0, 0))

	assert.True(t, v.Subscribers.Significant)
	assert.InDelta(t, 30.0, v.Subscribers.PercentChange, 1e-9)
	assert.True(t, v.Any)
}

func TestDetect_SmallChangeBelowThreshold(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	// +0.01% at 1M subscribers, threshold there is 0.1% (0.002 * 0.5)
	v := d.Detect(snapshot(1_000_000, 0, 0), snapshot(1_000_100, 0, 0))

	assert.False(t, v.Subscribers.Significant)
	assert.False(t, v.Any)
}

func TestDetect_ZeroToPositiveIsMaximallySignificant(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	v := d.Detect(snapshot(0, 0, 0), snapshot(5, 0, 0))

	assert.True(t, v.Subscribers.Significant)
	assert.InDelta(t, 100.0, v.Subscribers.PercentChange, 1e-9)
	assert.True(t, v.Any)

	// Views and videos stayed at zero; they must not fire
	assert.False(t, v.Views.Significant)
	assert.False(t, v.Videos.Significant)
}

func TestDetect_DropIsSignificantByAbsoluteValue(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	v := d.Detect(snapshot(10_000, 0, 0), snapshot(9_000, 0, 0))

	assert.True(t, v.Subscribers.Significant)
	assert.InDelta(t, -10.0, v.Subscribers.PercentChange, 1e-9)
}

func TestDetect_TwoPercentAtTenThousand(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	// The end-to-end scenario: 10,000 -> 10,200 subscribers
	v := d.Detect(snapshot(10_000, 1_000_000, 0), snapshot(10_200, 1_000_000, 0))

	assert.True(t, v.Subscribers.Significant)
	assert.InDelta(t, 2.0, v.Subscribers.PercentChange, 1e-9)
	assert.False(t, v.Views.Significant)
	assert.True(t, v.Any)
}
