/*
Package metrics provides Prometheus metrics collection and exposition for
scaled.

The metrics package defines and registers every scaled metric using the
Prometheus client library, providing observability into the job catalog,
the scheduling state machine, execution-configuration builds, bulk cancel,
and the cleanup task planner. Metrics are exposed via an HTTP endpoint for
scraping by Prometheus servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  │  - Automatic Go runtime metrics             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Types                   │          │
	│  │                                              │          │
	│  │  Gauge: Instant values (jobs by status)     │          │
	│  │  Counter: Monotonic increases (offers)      │          │
	│  │  Histogram: Distributions (scores, latency) │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Collection Points                  │          │
	│  │                                              │          │
	│  │  Collector: periodic catalog/Raft sampling  │          │
	│  │  Direct updates: scheduler, execconfig,     │          │
	│  │    bulk cancel, cleanup planner             │          │
	│  └──────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────────┘

# Metric Catalog

scale_jobs_total{status}:
  - Type: Gauge
  - Description: Number of jobs in the catalog by status
  - Labels: status (PENDING, BLOCKED, QUEUED, RUNNING, FAILED, COMPLETED, CANCELED)

scale_raft_is_leader / scale_raft_peers_total / scale_raft_log_index /
scale_raft_applied_index:
  - Type: Gauge
  - Description: Raft cluster state backing the replicated job catalog

scale_raft_apply_duration_seconds / scale_raft_commit_duration_seconds:
  - Type: Histogram
  - Description: Latency of applying/committing a Raft log entry

scale_scheduling_offers_accepted_total{node_id, category}:
  - Type: Counter
  - Description: Queued job executions a SchedulingNode accepted during a
    tick; "queued" is the only category recorded

scale_scheduling_offers_rejected_total{node_id, reason}:
  - Type: Counter
  - Description: Queued job executions rejected during a tick, by reason
    (insufficient_resources, not_ready)

scale_scheduling_reservation_score:
  - Type: Histogram
  - Description: Distribution of ScoreJobExeForScheduling results observed
    in each tick's placement loop

scale_scheduling_tick_duration_seconds:
  - Type: Histogram
  - Description: Wall-clock time for one scheduling tick across all nodes

scale_execconfig_build_duration_seconds{phase}:
  - Type: Histogram
  - Description: Time to build an execution configuration, by phase (queued,
    scheduled)

scale_bulk_cancel_batches_total / scale_bulk_cancel_jobs_canceled_total:
  - Type: Counter
  - Description: CancelJobsBulkMessage batches executed, and jobs emitted to
    the cancel consumer

scale_cleanup_tasks_created_total:
  - Type: Gauge
  - Description: Current value of the cleanup task id counter

# Usage

Updating Gauge Metrics:

	import "github.com/cuemby/warren/pkg/metrics"

	metrics.JobsTotal.WithLabelValues("RUNNING").Set(12)
	metrics.CleanupTasksCreatedTotal.Set(float64(count))

Updating Counter Metrics:

	metrics.SchedulingOffersAccepted.WithLabelValues(nodeID, "queued").Inc()
	metrics.BulkCancelJobsCanceledTotal.Add(float64(len(cancels)))

Recording Histogram Observations:

	metrics.SchedulingReservationScore.Observe(float64(score))

	timer := metrics.NewTimer()
	cfg, err := configurator.ConfigureQueuedJob(j)
	timer.ObserveDurationVec(metrics.ExecConfigBuildDuration, "queued")

Exposing the endpoint:

	http.Handle("/metrics", metrics.Handler())
	http.ListenAndServe(":9090", nil)
*/
package metrics
