package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelwatch_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "channelwatch_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channelwatch_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Channel check metrics
	ChannelChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelwatch_channel_checks_total",
			Help: "Total number of per-channel metric checks",
		},
		[]string{"tier", "status"}, // status: success|fetch_failed|store_failed
	)

	SignificantChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelwatch_significant_changes_total",
			Help: "Total number of significant metric changes detected",
		},
		[]string{"metric"},
	)

	ActiveChannels = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channelwatch_active_channels",
			Help: "Current number of actively tracked channels",
		},
		[]string{"tier"},
	)

	ChannelsDiscovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "channelwatch_channels_discovered_total",
			Help: "Total number of channels added by discovery",
		},
	)

	// Notification metrics
	NotificationsPosted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelwatch_notifications_posted_total",
			Help: "Total number of outbound notifications",
		},
		[]string{"reason", "status"}, // status: success|error
	)

	// External source metrics
	SourceAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelwatch_source_api_calls_total",
			Help: "Total number of metrics source API calls",
		},
		[]string{"endpoint", "status"}, // status: success|error|rate_limited
	)

	SourceKeyRotations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "channelwatch_source_key_rotations_total",
			Help: "Total number of API key rotations after quota errors",
		},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(ChannelChecks)
	prometheus.MustRegister(SignificantChanges)
	prometheus.MustRegister(ActiveChannels)
	prometheus.MustRegister(ChannelsDiscovered)

	prometheus.MustRegister(NotificationsPosted)

	prometheus.MustRegister(SourceAPICalls)
	prometheus.MustRegister(SourceKeyRotations)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordChannelCheck records one per-channel check outcome
func RecordChannelCheck(tier string, status string) {
	ChannelChecks.WithLabelValues(tier, status).Inc()
}

// RecordPost records an outbound notification attempt
func RecordPost(reason string, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	NotificationsPosted.WithLabelValues(reason, status).Inc()
}

// RecordSourceAPICall records a metrics source API call
func RecordSourceAPICall(endpoint string, status string) {
	SourceAPICalls.WithLabelValues(endpoint, status).Inc()
}
