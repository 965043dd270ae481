package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Mock worker for testing
type mockWorker struct {
	*BaseWorker
	runCount int32
	runFunc  func(ctx context.Context) error
}

func newMockWorker(name string, interval time.Duration, enabled bool) *mockWorker {
	return &mockWorker{
		BaseWorker: NewBaseWorker(name, interval, enabled),
		runFunc:    func(ctx context.Context) error { return nil },
	}
}

func (m *mockWorker) Run(ctx context.Context) error {
	atomic.AddInt32(&m.runCount, 1)
	if m.runFunc != nil {
		return m.runFunc(ctx)
	}
	return nil
}

func (m *mockWorker) GetRunCount() int {
	return int(atomic.LoadInt32(&m.runCount))
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler()

	worker1 := newMockWorker("test-worker-1", 100*time.Millisecond, true)
	scheduler.RegisterWorker(worker1)

	scheduler.Start(context.Background())
	assert.True(t, scheduler.IsRunning())

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())

	// Worker should have run at least 2 times (immediate + ticks)
	assert.GreaterOrEqual(t, worker1.GetRunCount(), 2)
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	scheduler := NewScheduler()

	worker := newMockWorker("test-worker", 100*time.Millisecond, true)
	scheduler.RegisterWorker(worker)

	ctx := context.Background()
	scheduler.Start(ctx)

	// Second start is a no-op: no duplicate worker goroutines
	scheduler.Start(ctx)
	assert.True(t, scheduler.IsRunning())

	time.Sleep(120 * time.Millisecond)
	scheduler.Stop()

	// immediate run + ~1 tick; a doubled start would roughly double this
	assert.LessOrEqual(t, worker.GetRunCount(), 3)
}

func TestScheduler_StopWhenNotRunningIsNoop(t *testing.T) {
	scheduler := NewScheduler()

	// Must not panic or block
	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())
}

func TestScheduler_OneWorkerFailingDoesNotStopAnother(t *testing.T) {
	scheduler := NewScheduler()

	failing := newMockWorker("failing", 50*time.Millisecond, true)
	failing.runFunc = func(ctx context.Context) error {
		panic("boom")
	}
	healthy := newMockWorker("healthy", 50*time.Millisecond, true)

	scheduler.RegisterWorker(failing)
	scheduler.RegisterWorker(healthy)

	scheduler.Start(context.Background())
	time.Sleep(200 * time.Millisecond)
	scheduler.Stop()

	assert.GreaterOrEqual(t, healthy.GetRunCount(), 2)
	assert.GreaterOrEqual(t, failing.GetRunCount(), 2, "panicking worker keeps being scheduled")
}

func TestScheduler_ContextCancellation(t *testing.T) {
	scheduler := NewScheduler()

	worker := newMockWorker("test-worker", 100*time.Millisecond, true)
	scheduler.RegisterWorker(worker)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	cancel()
	time.Sleep(200 * time.Millisecond)

	// Stop still works after context cancellation
	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())
}

func TestScheduler_DisabledWorker(t *testing.T) {
	scheduler := NewScheduler()

	enabledWorker := newMockWorker("enabled-worker", 100*time.Millisecond, true)
	disabledWorker := newMockWorker("disabled-worker", 100*time.Millisecond, false)

	scheduler.RegisterWorker(enabledWorker)
	scheduler.RegisterWorker(disabledWorker)

	scheduler.Start(context.Background())
	time.Sleep(250 * time.Millisecond)
	scheduler.Stop()

	assert.Greater(t, enabledWorker.GetRunCount(), 0)
	assert.Equal(t, 0, disabledWorker.GetRunCount())
}

func TestScheduler_GetStatus(t *testing.T) {
	scheduler := NewScheduler()

	worker := newMockWorker("status-worker", 50*time.Millisecond, true)
	scheduler.RegisterWorker(worker)

	scheduler.Start(context.Background())
	time.Sleep(120 * time.Millisecond)
	scheduler.Stop()

	status := scheduler.GetStatus()
	assert.Contains(t, status, "status-worker")
	assert.True(t, status["status-worker"].Enabled)
}

func TestScheduler_GetWorkers(t *testing.T) {
	scheduler := NewScheduler()

	worker1 := newMockWorker("worker-1", 100*time.Millisecond, true)
	worker2 := newMockWorker("worker-2", 200*time.Millisecond, false)

	scheduler.RegisterWorker(worker1)
	scheduler.RegisterWorker(worker2)

	workers := scheduler.GetWorkers()
	assert.Len(t, workers, 2)
	assert.Equal(t, "worker-1", workers[0].Name())
	assert.Equal(t, "worker-2", workers[1].Name())
}
