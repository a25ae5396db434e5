package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Job catalog metrics
	JobsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scale_jobs_total",
			Help: "Total number of jobs in the catalog by status",
		},
		[]string{"status"},
	)

	// Raft metrics (the job catalog's replicated-write path)
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scale_raft_is_leader",
			Help: "Whether this node is the Raft leader (1 = leader, 0 = follower)",
		},
	)

	RaftPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scale_raft_peers_total",
			Help: "Total number of Raft peers in the cluster",
		},
	)

	RaftLogIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scale_raft_log_index",
			Help: "Current Raft log index",
		},
	)

	RaftAppliedIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scale_raft_applied_index",
			Help: "Last applied Raft log index",
		},
	)

	RaftApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scale_raft_apply_duration_seconds",
			Help:    "Time taken to apply a Raft log entry in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RaftCommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scale_raft_commit_duration_seconds",
			Help:    "Time taken to commit a Raft log entry in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Scheduling metrics
	SchedulingOffersAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scale_scheduling_offers_accepted_total",
			Help: "Total number of resource offers a node accepted, by category",
		},
		[]string{"node_id", "category"}, // category: queued (the only category recorded)
	)

	SchedulingOffersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scale_scheduling_offers_rejected_total",
			Help: "Total number of resource offers a node rejected, by reason",
		},
		[]string{"node_id", "reason"}, // reason: insufficient_resources, not_ready
	)

	SchedulingReservationScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scale_scheduling_reservation_score",
			Help:    "Distribution of ScoreJobExeForScheduling results observed during scheduling ticks",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	SchedulingTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scale_scheduling_tick_duration_seconds",
			Help:    "Time taken for one scheduling tick across all nodes",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Execution-configuration metrics
	ExecConfigBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scale_execconfig_build_duration_seconds",
			Help:    "Time taken to build an execution configuration, by phase",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"}, // phase: queued, scheduled
	)

	// Bulk cancel metrics
	BulkCancelBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scale_bulk_cancel_batches_total",
			Help: "Total number of CancelJobsBulkMessage batches executed",
		},
	)

	BulkCancelJobsCanceledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scale_bulk_cancel_jobs_canceled_total",
			Help: "Total number of jobs emitted to the cancel consumer by bulk cancel",
		},
	)

	// Cleanup task metrics
	CleanupTasksCreatedTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scale_cleanup_tasks_created_total",
			Help: "Current value of the process-global cleanup task id counter",
		},
	)
)

func init() {
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftPeers)
	prometheus.MustRegister(RaftLogIndex)
	prometheus.MustRegister(RaftAppliedIndex)
	prometheus.MustRegister(RaftApplyDuration)
	prometheus.MustRegister(RaftCommitDuration)
	prometheus.MustRegister(SchedulingOffersAccepted)
	prometheus.MustRegister(SchedulingOffersRejected)
	prometheus.MustRegister(SchedulingReservationScore)
	prometheus.MustRegister(SchedulingTickDuration)
	prometheus.MustRegister(ExecConfigBuildDuration)
	prometheus.MustRegister(BulkCancelBatchesTotal)
	prometheus.MustRegister(BulkCancelJobsCanceledTotal)
	prometheus.MustRegister(CleanupTasksCreatedTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
