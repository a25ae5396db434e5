package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/resources"
	"github.com/rs/zerolog"
)

// AgentSnapshot is one agent's state as of the start of a scheduling tick:
// its node view, the resource offers it granted this tick, the tasks and
// job executions it already carries from prior ticks, and its registered
// watermark capacity.
type AgentSnapshot struct {
	AgentID        string
	Node           NodeView
	Offers         []Offer
	CurrentTasks   []ResourceBearer
	CurrentJobExes []RunningJobExecution
	Watermark      resources.Resources
}

// scoredJobExecution is an optional extension QueuedJobExecution
// implementations may satisfy to drive reservation-aware scoring; without
// it, a job execution is scored against its own required resources as a
// single candidate shape.
type scoredJobExecution interface {
	QueuedJobExecution
	ScoringCandidates() []resources.Resources
}

func candidatesFor(jobExe QueuedJobExecution) []resources.Resources {
	if scored, ok := jobExe.(scoredJobExecution); ok {
		return scored.ScoringCandidates()
	}
	return []resources.Resources{jobExe.RequiredResources()}
}

// TickResult is one agent's outcome from a single scheduling tick.
type TickResult struct {
	AgentID                string
	AllocatedTasks         []ResourceBearer
	AllocatedQueuedJobExes []QueuedJobExecution
	RemainingResources     resources.Resources
}

// Source supplies one tick's worth of agent state and pending queued job
// executions. Constructing it from the job catalog and the live offer feed
// is the caller's responsibility; the tick loop itself only needs this
// narrow view.
type Source interface {
	AgentSnapshots() ([]AgentSnapshot, error)
	QueuedJobExecutions() ([]QueuedJobExecution, error)
}

// Runner drives the scheduling tick on a fixed interval, matching the
// ticker-driven Start/Stop loop warren's container Scheduler uses,
// generalized from per-service container placement to per-node job
// execution placement across all agents in one pass (spec.md §5: one loop
// constructs every SchedulingNode from the latest offer snapshot, feeds
// them priority-ordered queued executions, then commits; nodes are
// independent of each other within a tick).
type Runner struct {
	source Source
	logger zerolog.Logger
	stopCh chan struct{}
}

// NewRunner creates a Runner over source.
func NewRunner(source Source) *Runner {
	return &Runner{
		source: source,
		logger: log.WithComponent("scheduler"),
		stopCh: make(chan struct{}),
	}
}

// Start begins the tick loop on the given interval.
func (r *Runner) Start(interval time.Duration) {
	go r.run(interval)
}

// Stop stops the tick loop.
func (r *Runner) Stop() {
	close(r.stopCh)
}

func (r *Runner) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.Tick(time.Now()); err != nil {
				r.logger.Error().Err(err).Msg("scheduling tick failed")
			}
		case <-r.stopCh:
			return
		}
	}
}

// Tick runs one scheduling pass: every agent accepts its maintenance tasks
// and in-progress job executions' next tasks first, then priority-ordered
// queued job executions are placed greedily across agents, then every
// agent commits its tick against the offers it was actually granted.
func (r *Runner) Tick(now time.Time) ([]TickResult, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SchedulingTickDuration)

	snapshots, err := r.source.AgentSnapshots()
	if err != nil {
		return nil, fmt.Errorf("failed to list agent snapshots: %w", err)
	}
	queued, err := r.source.QueuedJobExecutions()
	if err != nil {
		return nil, fmt.Errorf("failed to list queued job executions: %w", err)
	}

	nodes := make([]*SchedulingNode, len(snapshots))
	nodeOffers := make([][]Offer, len(snapshots))
	var waiting []ResourceBearer
	for i, snap := range snapshots {
		resourceSet := NewResourceSet(sumOffers(snap.Offers), sumBearers(snap.CurrentTasks), snap.Watermark)
		node := NewSchedulingNode(snap.AgentID, snap.Node, snap.CurrentTasks, snap.CurrentJobExes, resourceSet)
		nodes[i] = node
		nodeOffers[i] = snap.Offers

		node.AcceptNodeTasks(now, &waiting)
		for _, jobExe := range snap.CurrentJobExes {
			node.AcceptJobExeNextTask(jobExe, &waiting)
		}
	}

	sort.SliceStable(queued, func(i, j int) bool { return queued[i].Priority() < queued[j].Priority() })

	for _, jobExe := range queued {
		candidates := candidatesFor(jobExe)
		best := -1
		bestScore := -1
		for i, node := range nodes {
			score := node.ScoreJobExeForScheduling(jobExe, candidates)
			if score == nil {
				continue
			}
			metrics.SchedulingReservationScore.Observe(float64(*score))
			if *score > bestScore {
				bestScore = *score
				best = i
			}
		}
		if best == -1 {
			metrics.SchedulingOffersRejected.WithLabelValues("", "insufficient_resources").Inc()
			continue
		}
		if nodes[best].AcceptNewJobExe(jobExe) {
			metrics.SchedulingOffersAccepted.WithLabelValues(nodes[best].AgentID, "queued").Inc()
		} else {
			metrics.SchedulingOffersRejected.WithLabelValues(nodes[best].AgentID, "not_ready").Inc()
		}
	}

	results := make([]TickResult, len(nodes))
	for i, node := range nodes {
		node.AddAllocatedOffers(nodeOffers[i]) // reconcile the shed cascade against the offers actually granted
		node.StartJobExeTasks()

		results[i] = TickResult{
			AgentID:                node.AgentID,
			AllocatedTasks:         node.AllocatedTasks(),
			AllocatedQueuedJobExes: node.AllocatedQueuedJobExecutions(),
			RemainingResources:     node.RemainingResources(),
		}
	}

	return results, nil
}

func sumBearers(bearers []ResourceBearer) resources.Resources {
	total := resources.Resources{}
	for _, b := range bearers {
		total = total.Add(b.GetResources())
	}
	return total
}
