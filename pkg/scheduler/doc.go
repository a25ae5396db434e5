/*
Package scheduler assigns queued job executions to cluster agents.

Scheduling runs as a series of independent ticks. Each tick, the Runner
builds one SchedulingNode per agent from that agent's current resource
offers, then feeds every node the same three passes: first the node's own
maintenance tasks, then the next task of every job execution already
running on it, then every queued job execution in priority order. Nodes do
not share state with each other during a tick, so placement across agents
can be parallelized; only the objects a single node mutates are not safe
for concurrent use.

# Architecture

	┌──────────────────────── SCHEDULING TICK ─────────────────────────┐
	│                                                                    │
	│  1. Build a SchedulingNode per agent from its offered resources   │
	│  2. AcceptNodeTasks   — maintenance work (health checks, etc.)    │
	│  3. AcceptJobExeNextTask — next task of each running execution   │
	│  4. AcceptNewJobExe   — queued executions, priority order         │
	│  5. AddAllocatedOffers — reconcile against granted offers,        │
	│     shedding lowest-value work first if offers fall short         │
	│  6. StartJobExeTasks  — promote accepted next-tasks to real tasks │
	└────────────────────────────────────────────────────────────────────┘

# Core Components

SchedulingNode: accumulates one tick's placement decisions for a single
agent, given its offered, already-committed, and total watermark
resources (node.go).

Runner: drives the tick loop on a fixed interval, pulling agent snapshots
and queued job executions from a Source and reporting what was placed
(tick.go).

ResourceSet / Offer: the three resource quantities a node's decisions are
weighed against — offered, already-running, and watermark capacity
(resourceset.go, offer.go).

# Scoring

ScoreJobExeForScheduling reports how many of a job execution's candidate
resource shapes would fit right now, after this tick's already-accepted
work. ScoreJobExeForReservation asks the same question against the node's
full watermark capacity, set aside from higher-priority work only — used
to judge whether a node is a good long-term home for an execution even
when its resources are fully booked this tick.

# Resource Shedding

When granted offers fall short of what a node accepted earlier in the
tick, AddAllocatedOffers sheds in least-valuable-first order: newly queued
executions go first, then in-progress executions' next tasks, and
maintenance tasks are kept until nothing else is left to shed.

# Usage

	runner := scheduler.NewRunner(source)
	runner.Start(5 * time.Second)
	defer runner.Stop()

	// or drive a single tick directly, e.g. from a CLI subcommand:
	results, err := runner.Tick(time.Now())
*/
package scheduler
