package workers

import (
	"context"
	"time"

	"channelwatch/internal/discovery"
)

// DiscoveryWorker runs the trending discovery pass on its own, much longer
// interval. Its lifecycle is independent of the metrics loop.
type DiscoveryWorker struct {
	*BaseWorker
	svc *discovery.Service
}

// NewDiscoveryWorker creates the discovery loop worker
func NewDiscoveryWorker(svc *discovery.Service, interval time.Duration) *DiscoveryWorker {
	return &DiscoveryWorker{
		BaseWorker: NewBaseWorker("discovery", interval, true),
		svc:        svc,
	}
}

// Run executes one discovery pass
func (w *DiscoveryWorker) Run(ctx context.Context) error {
	return w.svc.DiscoverFromLiveSource(ctx)
}
